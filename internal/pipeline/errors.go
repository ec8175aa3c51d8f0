package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContent means neither the formatter nor the translator produced
	// anything usable for a chunk.
	ErrNoContent = errors.New("failed to obtain translated content")

	ErrEmptyDocument = errors.New("document contains no subtitles")

	errRoundLimit = errors.New("round limit reached")
)

// ChunkError is returned by the document driver when a chunk still fails
// after all retries. Index is 1-based.
type ChunkError struct {
	Index    int
	Total    int
	Attempts int
	Err      error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d of %d failed after %d attempt(s): %v", e.Index, e.Total, e.Attempts, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
