package subtitle

import "fmt"

// Verify compares two chunks position by position (not by index value) and
// reports every position whose index or timestamps differ. A length
// mismatch is always a misalignment: positions present in only one of the
// chunks are reported too.
func Verify(original, processed string) (*AlignmentResult, error) {
	orig, err := Parse(original)
	if err != nil {
		return nil, fmt.Errorf("failed to parse original chunk: %w", err)
	}
	proc, err := Parse(processed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse processed chunk: %w", err)
	}
	return Compare(orig, proc), nil
}

// Compare is Verify over already parsed subtitles.
func Compare(original, processed []Subtitle) *AlignmentResult {
	shorter, longer := len(original), len(processed)
	if shorter > longer {
		shorter, longer = longer, shorter
	}

	misaligned := []int{}
	for i := 0; i < shorter; i++ {
		o, p := original[i], processed[i]
		if o.Index != p.Index ||
			o.StartTime != p.StartTime ||
			o.EndTime != p.EndTime {
			misaligned = append(misaligned, i)
		}
	}
	for i := shorter; i < longer; i++ {
		misaligned = append(misaligned, i)
	}

	return &AlignmentResult{
		Aligned:           len(misaligned) == 0,
		MisalignedIndices: misaligned,
		OriginalCount:     len(original),
		ProcessedCount:    len(processed),
		LengthMismatch:    len(original) != len(processed),
	}
}
