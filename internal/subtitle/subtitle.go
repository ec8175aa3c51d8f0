package subtitle

import (
	"fmt"
	"strconv"
)

// byte-order marker prefixed to every merged document
const BOM = "\ufeff"

const (
	DefaultChunkSize     = 30
	DefaultMaxLines      = 2
	DefaultMaxLineLength = 50

	// separates start and end time on the timestamp line
	TimestampSeparator = " --> "
)

// represents single SRT cue. Timestamps are kept as the exact strings found
// in the source so they can be compared byte for byte after translation.
type Subtitle struct {
	Index     int    `json:"index"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Text      string `json:"text"`
}

// Timestamp returns the "start --> end" line.
func (s Subtitle) Timestamp() string {
	return s.StartTime + TimestampSeparator + s.EndTime
}

// String renders the cue as an SRT block without the trailing blank line.
func (s Subtitle) String() string {
	block := strconv.Itoa(s.Index) + "\n" + s.Timestamp()
	if s.Text != "" {
		block += "\n" + s.Text
	}
	return block
}

// outcome of reflowing one chunk
type FormattingResult struct {
	TotalSubtitles int        `json:"total_subtitles"`
	First          *Subtitle  `json:"first_subtitle,omitempty"`
	Last           *Subtitle  `json:"last_subtitle,omitempty"`
	Warnings       []string   `json:"warnings"`
	Subtitles      []Subtitle `json:"-"`
	Text           string     `json:"-"`
}

// outcome of comparing an original chunk with its processed counterpart
type AlignmentResult struct {
	Aligned           bool  `json:"is_aligned"`
	MisalignedIndices []int `json:"misaligned_indices"`
	OriginalCount     int   `json:"original_count"`
	ProcessedCount    int   `json:"processed_count"`
	LengthMismatch    bool  `json:"length_mismatch"`
}

// ParseError reports a malformed SRT block. Block is 1-based.
type ParseError struct {
	Block  int
	Reason string
	Input  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf(
		"malformed SRT block %d: %s (block: %q)",
		e.Block,
		e.Reason,
		truncate(e.Input, 80),
	)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
