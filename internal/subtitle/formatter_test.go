package subtitle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterLongLineExample(t *testing.T) {
	f := NewFormatter(2, 10)
	chunk := "1\n00:00:01,000 --> 00:00:02,000\nHello world this is a long line of subtitle text\n\n"

	result, err := f.Format(chunk)
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalSubtitles)

	lines := strings.Split(result.Subtitles[0].Text, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Hello", lines[0])
	assert.Equal(t, "world this is a long line of subtitle text", lines[1])

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Subtitle 1 has a line longer than 10 characters")
}

func TestFormatterBreakableText(t *testing.T) {
	f := NewFormatter(2, 11)

	assert.Equal(t, "Hello world\nagain", f.Wrap("Hello world again"))
	assert.Equal(t, "", f.Wrap(""))
}

func TestFormatterKeepsIntentionalBreaks(t *testing.T) {
	text := "Where are you going tonight?\nHome."

	got := NewFormatter(3, 20).Wrap(text)
	assert.Equal(t, "Where are you going\ntonight?\nHome.", got)

	// too many lines when wrapped line by line: fall back to greedy wrapping
	got = NewFormatter(2, 20).Wrap(text)
	assert.Equal(t, "Where are you going\ntonight? Home.", got)
}

func TestFormatterIdempotent(t *testing.T) {
	f := NewFormatter(DefaultMaxLines, DefaultMaxLineLength)
	chunk := "1\n00:00:01,000 --> 00:00:02,000\nShort line\nSecond line\n\n" +
		"2\n00:00:03,000 --> 00:00:04,000\n<i>Already wrapped</i>\n\n"

	first, err := f.Format(chunk)
	require.NoError(t, err)
	assert.Empty(t, first.Warnings)
	assert.Equal(t, "Short line\nSecond line", first.Subtitles[0].Text)
	assert.Equal(t, "<i>Already wrapped</i>", first.Subtitles[1].Text)

	second, err := f.Format(first.Text)
	require.NoError(t, err)
	assert.Empty(t, second.Warnings)
	assert.Equal(t, first.Text, second.Text)
}

func TestFormatterPreservesStructureAndMarkup(t *testing.T) {
	f := NewFormatter(2, 20)
	chunk := "7\n00:01:01,000 --> 00:01:03,250\n<i>Hello there my friend, how are you today?</i>\n\n" +
		"8\n00:01:04,000 --> 00:01:05,000\n{\\an8}Top line\n\n"

	result, err := f.Format(chunk)
	require.NoError(t, err)
	require.Equal(t, 2, result.TotalSubtitles)

	require.NotNil(t, result.First)
	require.NotNil(t, result.Last)
	assert.Equal(t, 7, result.First.Index)
	assert.Equal(t, "00:01:01,000", result.First.StartTime)
	assert.Equal(t, "00:01:03,250", result.First.EndTime)
	assert.Equal(t, 8, result.Last.Index)
	assert.Equal(t, "{\\an8}Top line", result.Last.Text)

	text := result.Subtitles[0].Text
	assert.True(t, strings.HasPrefix(text, "<i>"))
	assert.True(t, strings.HasSuffix(text, "</i>"))
	assert.Len(t, strings.Split(text, "\n"), 2)
}

func TestFormatterReportsTooManyLines(t *testing.T) {
	f := NewFormatter(2, 50)
	subs := []Subtitle{{Index: 4, StartTime: "a", EndTime: "b", Text: "one\ntwo\nthree"}}

	warnings := f.Check(subs)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Subtitle 4 has more than 2 lines")
}

func TestFormatterEmptyChunk(t *testing.T) {
	result, err := NewFormatter(0, 0).Format("")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalSubtitles)
	assert.Nil(t, result.First)
	assert.Nil(t, result.Last)
}

func TestFormatterParseError(t *testing.T) {
	_, err := NewFormatter(2, 50).Format("not an srt block")
	assert.Error(t, err)
}

func TestVisibleLength(t *testing.T) {
	assert.Equal(t, 5, VisibleLength("<b>Hello</b>"))
	assert.Equal(t, 3, VisibleLength("{\\an8}Top"))
	assert.Equal(t, 4, VisibleLength("çava"))
}

func TestFormatterKeepsTagsWithAttributesWhole(t *testing.T) {
	f := NewFormatter(2, 20)
	text := `<font color="#ffff00">Where are you going tonight my friend?</font>`

	got := f.Wrap(text)
	assert.Equal(t, "<font color=\"#ffff00\">Where are you going\ntonight my friend?</font>", got)

	chunk := "1\n00:00:01,000 --> 00:00:02,000\n" + text + "\n\n"
	result, err := f.Format(chunk)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, got, result.Subtitles[0].Text)
	for _, issue := range Stats(chunk, result.Text, 20) {
		assert.NotContains(t, issue, "Exceeds")
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain", "Hello  world\tagain", []string{"Hello", "world", "again"}},
		{"tag with attributes", `<font face="Arial" color="red">Hi</font> there`, []string{`<font face="Arial" color="red">Hi</font>`, "there"}},
		{"override block with spaces", `{\pos(10, 20)}Top line`, []string{`{\pos(10, 20)}Top`, "line"}},
		{"unclosed bracket", "a < b", []string{"a", "<", "b"}},
		{"brace without backslash", "{a b}", []string{"{a", "b}"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitWords(tt.text))
		})
	}
}
