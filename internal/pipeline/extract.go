package pipeline

import (
	"strconv"
	"strings"

	"github.com/mgpai22/subtrans/internal/translate"
)

// Message is one entry of a chunk's exchange transcript.
type Message struct {
	Name    Role   `json:"name"`
	Stage   Stage  `json:"stage"`
	Content string `json:"content"`
}

type Transcript []Message

// Extract pulls the final chunk text out of a transcript.
//
// The last formatter message carrying a sentinel marker wins; the text
// between the markers is returned with fences and the termination keyword
// stripped, and clean is true. With only the end marker present, text before
// the first "index / timestamp" pair is treated as commentary and dropped. Without such a message the last translator
// reply that is not a lookup request is returned with clean false. When
// neither exists ErrNoContent is returned.
func Extract(transcript Transcript) (text string, clean bool, err error) {
	for i := len(transcript) - 1; i >= 0; i-- {
		m := transcript[i]
		if m.Name != RoleFormatter || !hasMarker(m.Content) {
			continue
		}
		if out := extractFormatted(m.Content); out != "" {
			return out, true, nil
		}
	}

	for i := len(transcript) - 1; i >= 0; i-- {
		m := transcript[i]
		if m.Name != RoleTranslator || isLookupRequest(m.Content) {
			continue
		}
		if out := translate.CleanResponse(m.Content); out != "" {
			return out, false, nil
		}
	}

	return "", false, ErrNoContent
}

func hasMarker(s string) bool {
	return strings.Contains(s, StartMarker) || strings.Contains(s, EndMarker)
}

// extractFormatted returns the content between the last start marker and
// the end marker that follows it. With only the start marker the rest of the
// reply is used; with only the end marker everything before it, starting at
// the first subtitle block.
func extractFormatted(s string) string {
	start := strings.LastIndex(s, StartMarker)
	if start >= 0 {
		rest := s[start+len(StartMarker):]
		if end := strings.Index(rest, EndMarker); end >= 0 {
			return cleanFormatted(rest[:end])
		}
		return cleanFormatted(rest)
	}
	if end := strings.LastIndex(s, EndMarker); end >= 0 {
		return fromFirstBlock(cleanFormatted(s[:end]))
	}
	return cleanFormatted(s)
}

func cleanFormatted(s string) string {
	s = strings.ReplaceAll(s, StartMarker, "")
	s = strings.ReplaceAll(s, EndMarker, "")
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, TerminationKeyword))
	return translate.CleanResponse(s)
}

// fromFirstBlock drops lines before the first index line that is followed by
// a timestamp line. s is returned as is when there is no such pair.
func fromFirstBlock(s string) string {
	lines := strings.Split(s, "\n")
	for i := 0; i+1 < len(lines); i++ {
		if _, err := strconv.Atoi(strings.TrimSpace(lines[i])); err != nil {
			continue
		}
		if strings.Contains(lines[i+1], "-->") {
			return strings.Join(lines[i:], "\n")
		}
	}
	return s
}

// parseLookup returns the words of a "LOOKUP: a, b" reply, or nil when the
// reply is not a lookup request.
func parseLookup(s string) []string {
	line := firstLine(s)
	if !hasLookupPrefix(line) {
		return nil
	}

	var words []string
	for _, w := range strings.Split(line[len(LookupDirective):], ",") {
		w = strings.Trim(strings.TrimSpace(w), `"'`+"`")
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func isLookupRequest(s string) bool {
	return hasLookupPrefix(firstLine(s))
}

func hasLookupPrefix(line string) bool {
	return len(line) >= len(LookupDirective) &&
		strings.EqualFold(line[:len(LookupDirective)], LookupDirective)
}

func firstLine(s string) string {
	s = translate.CleanResponse(s)
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
