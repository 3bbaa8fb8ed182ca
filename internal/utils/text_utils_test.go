package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.TruncateText("short", 10))
	assert.Equal(t, "no limit", tp.TruncateText("no limit", 0))

	out := tp.TruncateText("héllo wörld", 2)
	assert.Equal(t, "h"+TruncationMarker, out)
	assert.True(t, utf8.ValidString(out))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "ok", tp.SanitizeUTF8("ok"))
	assert.Equal(t, "money", tp.SanitizeUTF8("mo\xffney"))
}

func TestNormalize(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "money 120", tp.Normalize("mo\u200bney １２０"))
	assert.Equal(t, "a\nb\nc", tp.Normalize("a\r\nb\rc"))
}

func TestPrepareChat(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	out := tp.PrepareChat(strings.Repeat("send money ", 100), 20)
	assert.True(t, strings.HasPrefix(out, "send money send mone"))
	assert.True(t, strings.HasSuffix(out, TruncationMarker))
}
