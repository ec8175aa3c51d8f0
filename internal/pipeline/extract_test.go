package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		transcript Transcript
		want       string
		wantClean  bool
	}{
		{
			name: "markers",
			transcript: Transcript{
				{Name: RoleTranslator, Content: "draft"},
				{Name: RoleFormatter, Content: "FORMATTED_SUBTITLES:\n1\n00:00:01,000 --> 00:00:02,000\nHola\nEND_OF_SUBTITLES\nTERMINATE"},
			},
			want:      "1\n00:00:01,000 --> 00:00:02,000\nHola",
			wantClean: true,
		},
		{
			name: "last formatter message wins",
			transcript: Transcript{
				{Name: RoleFormatter, Content: "FORMATTED_SUBTITLES:\nold\nEND_OF_SUBTITLES"},
				{Name: RoleUserProxy, Content: "please fix"},
				{Name: RoleFormatter, Content: "FORMATTED_SUBTITLES:\nnew\nEND_OF_SUBTITLES"},
			},
			want:      "new",
			wantClean: true,
		},
		{
			name: "code fences and chatter around markers",
			transcript: Transcript{
				{Name: RoleFormatter, Content: "Here you go.\nFORMATTED_SUBTITLES:\n```srt\n1\n00:00:01,000 --> 00:00:02,000\nHola\n```\nEND_OF_SUBTITLES\n\nTERMINATE"},
			},
			want:      "1\n00:00:01,000 --> 00:00:02,000\nHola",
			wantClean: true,
		},
		{
			name: "only the start marker",
			transcript: Transcript{
				{Name: RoleFormatter, Content: "FORMATTED_SUBTITLES:\ntext\nTERMINATE"},
			},
			want:      "text",
			wantClean: true,
		},
		{
			name: "only the end marker",
			transcript: Transcript{
				{Name: RoleFormatter, Content: "text\nEND_OF_SUBTITLES"},
			},
			want:      "text",
			wantClean: true,
		},
		{
			name: "only the end marker with commentary first",
			transcript: Transcript{
				{Name: RoleFormatter, Content: "Sure, here are the reflowed subtitles:\n\n1\n00:00:01,000 --> 00:00:02,000\nHola\n\n2\n00:00:03,000 --> 00:00:04,000\nAdiós\nEND_OF_SUBTITLES\nTERMINATE"},
			},
			want:      "1\n00:00:01,000 --> 00:00:02,000\nHola\n\n2\n00:00:03,000 --> 00:00:04,000\nAdiós",
			wantClean: true,
		},
		{
			name: "markers from other roles are ignored",
			transcript: Transcript{
				{Name: RoleTranslator, Content: "translated"},
				{Name: RoleUserProxy, Content: "Begin with FORMATTED_SUBTITLES: please"},
			},
			want:      "translated",
			wantClean: false,
		},
		{
			name: "fallback skips lookup requests",
			transcript: Transcript{
				{Name: RoleTranslator, Content: "translated"},
				{Name: RoleTranslator, Content: "LOOKUP: word"},
				{Name: RoleFormatter, Content: "no markers here"},
			},
			want:      "translated",
			wantClean: false,
		},
		{
			name: "empty marked output falls through",
			transcript: Transcript{
				{Name: RoleTranslator, Content: "```\ntranslated\n```"},
				{Name: RoleFormatter, Content: "FORMATTED_SUBTITLES:\nEND_OF_SUBTITLES"},
			},
			want:      "translated",
			wantClean: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clean, err := Extract(tt.transcript)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantClean, clean)
		})
	}
}

func TestExtractNoContent(t *testing.T) {
	_, _, err := Extract(Transcript{
		{Name: RoleUserProxy, Content: "task"},
		{Name: RoleTranslator, Content: "   "},
		{Name: RoleReviewer, Content: "reviewed"},
	})
	assert.ErrorIs(t, err, ErrNoContent)

	_, _, err = Extract(nil)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestParseLookup(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"LOOKUP: serendipity, gumption", []string{"serendipity", "gumption"}},
		{"lookup: \"word\" , 'other',", []string{"word", "other"}},
		{"```\nLOOKUP: fenced\n```", []string{"fenced"}},
		{"1\n00:00:01,000 --> 00:00:02,000\nLOOKUP: not a request", nil},
		{"LOOKUP:", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLookup(tt.input))
		})
	}
}
