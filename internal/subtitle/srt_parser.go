package subtitle

import (
	"regexp"
	"strconv"
	"strings"
)

// one or more blank (or whitespace only) lines
var blockSeparator = regexp.MustCompile(`\n(?:[ \t]*\n)+`)

// Blocks splits raw SRT text into blank-line delimited blocks. Line endings
// are normalised, a leading BOM is dropped and the text is trimmed first.
func Blocks(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSpace(RemoveBOM(strings.TrimSpace(content)))
	if content == "" {
		return nil
	}

	raw := blockSeparator.Split(content, -1)
	blocks := make([]string, 0, len(raw))
	for _, block := range raw {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// Parse converts raw SRT text into ordered subtitles.
func Parse(content string) ([]Subtitle, error) {
	blocks := Blocks(content)
	subs := make([]Subtitle, 0, len(blocks))
	for i, block := range blocks {
		sub, err := parseBlock(i+1, block)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func parseBlock(position int, block string) (Subtitle, error) {
	lines := strings.Split(block, "\n")
	if len(lines) < 2 {
		return Subtitle{}, &ParseError{
			Block:  position,
			Reason: "expected an index line and a timestamp line",
			Input:  block,
		}
	}

	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Subtitle{}, &ParseError{
			Block:  position,
			Reason: "index line is not an integer",
			Input:  block,
		}
	}

	start, end, ok := strings.Cut(lines[1], TimestampSeparator)
	if !ok {
		// tolerate missing spaces around the arrow
		start, end, ok = strings.Cut(lines[1], "-->")
	}
	if !ok {
		return Subtitle{}, &ParseError{
			Block:  position,
			Reason: "timestamp line has no '-->' separator",
			Input:  block,
		}
	}

	return Subtitle{
		Index:     index,
		StartTime: strings.TrimSpace(start),
		EndTime:   strings.TrimSpace(end),
		Text:      strings.Join(lines[2:], "\n"),
	}, nil
}

// Serialize renders subtitles back to SRT text, blocks separated by a blank
// line and terminated by a newline.
func Serialize(subs []Subtitle) string {
	if len(subs) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, sub := range subs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(sub.String())
	}
	sb.WriteString("\n")
	return sb.String()
}

func HasBOM(content string) bool {
	return strings.HasPrefix(content, BOM)
}

// RemoveBOM strips every leading byte-order marker.
func RemoveBOM(content string) string {
	return strings.TrimLeft(content, BOM)
}

// EnsureBOM prefixes content with exactly one byte-order marker.
func EnsureBOM(content string) string {
	if HasBOM(content) {
		return content
	}
	return BOM + content
}
