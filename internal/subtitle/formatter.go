package subtitle

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// inline markup that takes no room on screen: <i>, </font>, {\an8}
var markupRegex = regexp.MustCompile(`<[^>]*>|\{\\[^}]*\}`)

// Formatter re-wraps cue text into at most MaxLines lines of at most
// MaxLineLength visible characters.
type Formatter struct {
	MaxLines      int
	MaxLineLength int
}

func NewFormatter(maxLines, maxLineLength int) *Formatter {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	if maxLineLength <= 0 {
		maxLineLength = DefaultMaxLineLength
	}
	return &Formatter{
		MaxLines:      maxLines,
		MaxLineLength: maxLineLength,
	}
}

// Format reflows every cue of a chunk. Index and timestamps pass through
// untouched; limit violations are reported as warnings, never as errors.
func (f *Formatter) Format(chunk string) (*FormattingResult, error) {
	subs, err := Parse(chunk)
	if err != nil {
		return nil, err
	}

	formatted := make([]Subtitle, len(subs))
	for i, sub := range subs {
		sub.Text = f.Wrap(sub.Text)
		formatted[i] = sub
	}

	result := &FormattingResult{
		TotalSubtitles: len(formatted),
		Warnings:       f.Check(formatted),
		Subtitles:      formatted,
		Text:           Serialize(formatted),
	}
	if len(formatted) > 0 {
		first := formatted[0]
		last := formatted[len(formatted)-1]
		result.First = &first
		result.Last = &last
	}
	return result, nil
}

// Wrap returns text unchanged when it already satisfies the limits.
// Otherwise each existing line is wrapped on its own so intentional breaks
// survive; if that needs too many lines the whole text is wrapped greedily
// and the overflow lands on the last line.
func (f *Formatter) Wrap(text string) string {
	if f.fits(text) {
		return text
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, f.greedy(splitWords(line), 0)...)
	}
	if len(lines) <= f.MaxLines {
		return strings.Join(lines, "\n")
	}

	return strings.Join(f.greedy(splitWords(text), f.MaxLines), "\n")
}

// Check lists cues that break the line count or line length limits.
func (f *Formatter) Check(subs []Subtitle) []string {
	var warnings []string
	for _, sub := range subs {
		if sub.Text == "" {
			continue
		}
		lines := strings.Split(sub.Text, "\n")
		if len(lines) > f.MaxLines {
			warnings = append(warnings, fmt.Sprintf(
				"Subtitle %d has more than %d lines: %s",
				sub.Index,
				f.MaxLines,
				sub.Text,
			))
		}
		for _, line := range lines {
			if VisibleLength(line) > f.MaxLineLength {
				warnings = append(warnings, fmt.Sprintf(
					"Subtitle %d has a line longer than %d characters: %s",
					sub.Index,
					f.MaxLineLength,
					line,
				))
			}
		}
	}
	return warnings
}

func (f *Formatter) fits(text string) bool {
	lines := strings.Split(text, "\n")
	if len(lines) > f.MaxLines {
		return false
	}
	for _, line := range lines {
		if VisibleLength(line) > f.MaxLineLength {
			return false
		}
	}
	return true
}

// greedy packs words onto lines of at most MaxLineLength. maxLines <= 0
// means unbounded; otherwise words that do not fit once the last line is
// reached are appended to it anyway.
func (f *Formatter) greedy(words []string, maxLines int) []string {
	var lines []string
	current := ""
	currentLen := 0

	for _, word := range words {
		wordLen := VisibleLength(word)
		switch {
		case current == "":
			current = word
			currentLen = wordLen
		case currentLen+1+wordLen <= f.MaxLineLength,
			maxLines > 0 && len(lines) == maxLines-1:
			current += " " + word
			currentLen += 1 + wordLen
		default:
			lines = append(lines, current)
			current = word
			currentLen = wordLen
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// splitWords splits text on whitespace outside inline markup, so a tag such
// as <font color="#ffff00"> always stays inside one word. An opening bracket
// without its closer is plain text.
func splitWords(text string) []string {
	var words []string
	var sb strings.Builder
	var closer rune

	for i, r := range text {
		switch {
		case closer != 0:
			if r == closer {
				closer = 0
			}
		case r == '<' && strings.ContainsRune(text[i+1:], '>'):
			closer = '>'
		case r == '{' && strings.HasPrefix(text[i+1:], `\`) && strings.ContainsRune(text[i+1:], '}'):
			closer = '}'
		case unicode.IsSpace(r):
			if sb.Len() > 0 {
				words = append(words, sb.String())
				sb.Reset()
			}
			continue
		}
		sb.WriteRune(r)
	}
	if sb.Len() > 0 {
		words = append(words, sb.String())
	}
	return words
}

// VisibleLength counts the characters of a line that are displayed,
// ignoring inline markup tags.
func VisibleLength(line string) int {
	return utf8.RuneCountInString(markupRegex.ReplaceAllString(strings.TrimSpace(line), ""))
}
