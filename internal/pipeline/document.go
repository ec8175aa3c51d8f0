package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/subtrans/internal/logging"
	"github.com/mgpai22/subtrans/internal/subtitle"
)

const DefaultChunkRetries = 1

// DocumentOptions is the request object for a whole-document translation.
type DocumentOptions struct {
	SourceLanguage string
	TargetLanguage string
	ChunkSize      int
	MaxRounds      int
	ChunkRetries   int
	MaxLineLength  int

	// Progress, when set, is called after every finished chunk.
	Progress func(done, total int)
}

// ChunkReport summarises one translated chunk.
type ChunkReport struct {
	Index             int                       `json:"index"`
	Subtitles         int                       `json:"subtitles"`
	Attempts          int                       `json:"attempts"`
	Rounds            int                       `json:"rounds"`
	TerminatedCleanly bool                      `json:"terminated_cleanly"`
	Alignment         *subtitle.AlignmentResult `json:"alignment,omitempty"`
	Warnings          []string                  `json:"warnings"`
}

type DocumentResult struct {
	Content  string        `json:"content"`
	Chunks   []ChunkReport `json:"chunks"`
	Warnings []string      `json:"warnings"`
	Issues   []string      `json:"issues"`
}

// TranslateDocument splits content into chunks, translates them one after
// another through oracle and merges the results. A chunk that still fails
// after ChunkRetries retries aborts the whole document with a *ChunkError.
func TranslateDocument(
	ctx context.Context,
	oracle Oracle,
	content string,
	opts DocumentOptions,
	logger *logging.Logger,
) (*DocumentResult, error) {
	logger = logging.OrNop(logger)
	if opts.ChunkSize == 0 {
		opts.ChunkSize = subtitle.DefaultChunkSize
	}
	if opts.ChunkRetries < 0 {
		opts.ChunkRetries = 0
	}
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = subtitle.DefaultMaxLineLength
	}

	if _, err := subtitle.Parse(content); err != nil {
		return nil, fmt.Errorf("failed to parse subtitles: %w", err)
	}

	chunks, err := subtitle.Split(content, opts.ChunkSize)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	logger.Infow("Translating subtitles",
		"subtitles", subtitle.CountBlocks(content),
		"chunks", len(chunks),
		"source", opts.SourceLanguage,
		"target", opts.TargetLanguage,
	)

	start := time.Now()
	result := &DocumentResult{}
	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		chunkLogger := logger.With("chunk", i+1, "of", len(chunks))
		chunkLogger.Infow("Translating chunk")

		res, attempts, err := translateWithRetry(ctx, oracle, chunk, opts, chunkLogger)
		if err != nil {
			return nil, &ChunkError{Index: i + 1, Total: len(chunks), Attempts: attempts, Err: err}
		}

		translated = append(translated, res.Text)
		result.Chunks = append(result.Chunks, ChunkReport{
			Index:             i + 1,
			Subtitles:         subtitle.CountBlocks(chunk),
			Attempts:          attempts,
			Rounds:            res.Rounds,
			TerminatedCleanly: res.TerminatedCleanly,
			Alignment:         res.Alignment,
			Warnings:          res.Warnings,
		})
		for _, w := range res.Warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("chunk %d: %s", i+1, w))
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(chunks))
		}
	}

	result.Content = subtitle.Merge(translated)
	result.Issues = subtitle.Stats(content, result.Content, opts.MaxLineLength)

	logger.Infow("Translation finished",
		"chunks", len(chunks),
		"warnings", len(result.Warnings),
		"issues", len(result.Issues),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

func translateWithRetry(
	ctx context.Context,
	oracle Oracle,
	chunk string,
	opts DocumentOptions,
	logger *logging.Logger,
) (*Result, int, error) {
	var lastErr error
	attempts := 0
	for attempts <= opts.ChunkRetries {
		attempts++
		res, err := oracle.TranslateChunk(ctx, chunk, opts.SourceLanguage, opts.TargetLanguage, opts.MaxRounds)
		if err == nil {
			return res, attempts, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		logger.Warnw("Chunk attempt failed", "attempt", attempts, "error", err)
	}
	return nil, attempts, lastErr
}
