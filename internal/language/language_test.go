package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"English", "en", true},
		{"french", "fr", true},
		{" German ", "de", true},
		{"Turkish", "tr", true},
		{"es", "es", true},
		{"pt-BR", "pt", true},
		{"pt_BR", "pt", true},
		{"", "", false},
		{"not a language", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Code(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "French", Name("fr"))
	assert.Equal(t, "Italian", Name("italian"))
	assert.Equal(t, "Spanish", Name("Spanish"))
	assert.Equal(t, "Klingonese", Name("Klingonese"))
}

func TestSame(t *testing.T) {
	assert.True(t, Same("English", "en"))
	assert.True(t, Same("de", "German"))
	assert.False(t, Same("English", "French"))
	assert.True(t, Same("Elvish", "elvish"))
}

func TestDetect(t *testing.T) {
	lines := []string{
		"Il était une fois une petite fille qui vivait dans un village près de la forêt.",
		"Elle portait toujours un chaperon rouge que sa grand-mère lui avait donné.",
		"Un jour, sa mère lui demanda d'apporter une galette à sa grand-mère malade.",
	}

	name, ok := Detect(lines)
	assert.True(t, ok)
	assert.Equal(t, "French", name)
}

func TestDetectNothingReliable(t *testing.T) {
	_, ok := Detect([]string{"", "  "})
	assert.False(t, ok)
}
