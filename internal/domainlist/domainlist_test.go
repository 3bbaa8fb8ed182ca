package domainlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestList_Contains(t *testing.T) {
	l := New("scam", DefaultScamTokens, []string{" Heartbreakers ", "", "scam"}, zap.NewNop())

	tests := []struct {
		domain string
		want   bool
	}{
		{"romancescam.org", true},
		{"FraudWatch.com", true},
		{"heartbreakers-registry.org", true},
		{"example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Contains(tt.domain))
		})
	}
	assert.Equal(t, "scam", l.Name())
}

func TestList_Count(t *testing.T) {
	l := New("stock", DefaultStockTokens, nil, nil)

	n := l.Count([]string{"shutterstock.com", "gettyimages.com", "blog.example.com", "pexels.com"})

	assert.Equal(t, 3, n)
}
