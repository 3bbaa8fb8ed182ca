package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEntity_Names(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string
	}{
		{"self introduction", []string{"Hi dear, my name is olivia and I am from Ghana"}, "Olivia"},
		{"stopwords skipped", []string{"I am so happy today, I am Grace"}, "Grace"},
		{"call me", []string{"you can call me Danny"}, "Danny"},
		{"speaker label", []string{"Olivia: good morning my love\nMe: hi"}, "Olivia"},
		{"speaker with timestamp", []string{"Olivia [10:32 PM]: hello handsome"}, "Olivia"},
		{"x here", []string{"James here, how are you"}, "James"},
		{"introduction beats speaker label", []string{"Me: who is this?\nKate: my name is Anna"}, "Anna"},
		{"capitalized fallback", []string{"Thank you Sarah for the flowers"}, "Sarah"},
		{"earlier text wins within a pattern", []string{"my name is Olivia", "my name is Grace"}, "Olivia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity := ExtractEntity(tt.texts)
			require.NotNil(t, entity.CandidateName)
			assert.Equal(t, tt.want, *entity.CandidateName)
		})
	}
}

func TestExtractEntity_NoName(t *testing.T) {
	entity := ExtractEntity([]string{"ok see you tomorrow"})
	assert.Nil(t, entity.CandidateName)
	assert.Empty(t, entity.SocialHandles)
	assert.Empty(t, entity.Handles)

	entity = ExtractEntity([]string{"Account not verified\nEdit Profile\nFollow Message"})
	assert.Nil(t, entity.CandidateName)

	entity = ExtractEntity(nil)
	assert.Nil(t, entity.CandidateName)
	assert.NotNil(t, entity.SocialHandles)
}

func TestExtractEntity_Deterministic(t *testing.T) {
	texts := []string{"Kate: hi\nmy name is Anna, instagram: @anna_b", "call me Lisa @lisa"}
	first := ExtractEntity(texts)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ExtractEntity(texts))
	}
}

func TestExtractEntity_Handles(t *testing.T) {
	entity := ExtractEntity([]string{
		"find me on instagram: @olivia_s or whatsapp +2348012345678",
		"also @olivia_s and @gracie, mail olivia@gmail.com",
	})

	assert.Equal(t, map[string]string{
		"instagram": "olivia_s",
		"whatsapp":  "+2348012345678",
		"other":     "gracie",
	}, entity.SocialHandles)
	assert.Equal(t, []SocialHandle{
		{Platform: "instagram", Handle: "olivia_s"},
		{Platform: "whatsapp", Handle: "+2348012345678"},
		{Platform: "other", Handle: "gracie"},
	}, entity.Handles)
}

func TestExtractEntity_HandlePhrasing(t *testing.T) {
	entity := ExtractEntity([]string{"my instagram is jenny.rose and my snapchat handle is jen_r"})

	assert.Equal(t, "jenny", entity.SocialHandles["instagram"])
	assert.Equal(t, "jen_r", entity.SocialHandles["snapchat"])
}

func TestExtractEntity_KeepsAllDistinctHandles(t *testing.T) {
	entity := ExtractEntity([]string{"instagram: first_acc\ninstagram: second_acc"})

	assert.Equal(t, "first_acc", entity.SocialHandles["instagram"])
	assert.Len(t, entity.Handles, 2)
}

func TestExtractEntity_ProfileURLsFirst(t *testing.T) {
	entity := ExtractEntity(
		[]string{"instagram: other_account"},
		SocialProfileURL{URL: "https://www.instagram.com/olivia.smith92/"},
	)

	assert.Equal(t, "olivia.smith92", entity.SocialHandles["instagram"])
	assert.Equal(t, []SocialHandle{
		{Platform: "instagram", Handle: "olivia.smith92"},
		{Platform: "instagram", Handle: "other_account"},
	}, entity.Handles)
}
