package subtitle

import (
	"fmt"
	"strings"
)

// Stats cross-checks a whole original document against its translation and
// returns human readable issues. It never fails; malformed blocks simply
// produce more issues.
func Stats(original, translated string, maxLineLength int) []string {
	if maxLineLength <= 0 {
		maxLineLength = DefaultMaxLineLength
	}

	origBlocks := Blocks(original)
	transBlocks := Blocks(translated)
	issues := []string{}

	if len(origBlocks) != len(transBlocks) {
		issues = append(issues, fmt.Sprintf(
			"Mismatch in number of subtitles: Original has %d, Translated has %d",
			len(origBlocks),
			len(transBlocks),
		))
	}

	n := len(origBlocks)
	if len(transBlocks) < n {
		n = len(transBlocks)
	}

	for i := 0; i < n; i++ {
		pos := i + 1
		origLines := strings.Split(origBlocks[i], "\n")
		transLines := strings.Split(transBlocks[i], "\n")

		if strings.TrimSpace(origLines[0]) != strings.TrimSpace(transLines[0]) {
			issues = append(issues, fmt.Sprintf(
				"Subtitle %d: Index mismatch (Original: %s, Translated: %s)",
				pos,
				origLines[0],
				transLines[0],
			))
		}

		if len(origLines) > 1 && len(transLines) > 1 &&
			strings.TrimSpace(origLines[1]) != strings.TrimSpace(transLines[1]) {
			issues = append(issues, fmt.Sprintf(
				"Subtitle %d: Timestamp mismatch (Original: %s, Translated: %s)",
				pos,
				origLines[1],
				transLines[1],
			))
		}

		origText := textLines(origLines)
		transText := textLines(transLines)
		if len(origText) != len(transText) {
			issues = append(issues, fmt.Sprintf("Subtitle %d: Line count mismatch", pos))
		}

		for j, line := range transText {
			if length := VisibleLength(line); length > maxLineLength {
				issues = append(issues, fmt.Sprintf(
					"Subtitle %d, Line %d: Exceeds %d characters (%d)",
					pos,
					j+1,
					maxLineLength,
					length,
				))
			}
		}
	}

	return issues
}

func textLines(lines []string) []string {
	if len(lines) <= 2 {
		return nil
	}
	return lines[2:]
}
