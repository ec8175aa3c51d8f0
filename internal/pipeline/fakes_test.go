package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mgpai22/subtrans/internal/lookup"
	"github.com/mgpai22/subtrans/internal/translate"
)

const (
	testChunk = "1\n00:00:01,000 --> 00:00:02,000\nHello there\n\n" +
		"2\n00:00:03,000 --> 00:00:04,000\nHow are you?\n\n"

	testTranslation = "1\n00:00:01,000 --> 00:00:02,000\nHola\n\n" +
		"2\n00:00:03,000 --> 00:00:04,000\n¿Cómo estás?"
)

func formatted(body string) string {
	return StartMarker + "\n" + body + "\n" + EndMarker + "\n" + TerminationKeyword
}

// scriptedModel answers requests with a fixed list of replies.
type scriptedModel struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []translate.Request
}

func (m *scriptedModel) Complete(ctx context.Context, req translate.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

type fakeLookup struct {
	calls    [][]string
	language string
}

func (f *fakeLookup) Lookup(ctx context.Context, words []string, language string, maxAttempts, maxWords int) *lookup.Result {
	f.calls = append(f.calls, words)
	f.language = language
	res := &lookup.Result{}
	for _, w := range words {
		if w == "serendipity" {
			res.Definitions = append(res.Definitions, lookup.Definition{
				Word: w, Definition: "a happy accident", Language: language,
			})
			continue
		}
		res.NotFound = append(res.NotFound, w)
	}
	return res
}

// echoOracle returns every chunk unchanged and can fail selected calls.
type echoOracle struct {
	mu     sync.Mutex
	calls  int
	failOn map[int]bool
	err    error
}

func (o *echoOracle) TranslateChunk(ctx context.Context, chunk, sourceLang, targetLang string, roundLimit int) (*Result, error) {
	o.mu.Lock()
	o.calls++
	call := o.calls
	o.mu.Unlock()

	if o.err != nil {
		return nil, o.err
	}
	if o.failOn[call] {
		return nil, fmt.Errorf("call %d: %w", call, ErrNoContent)
	}
	return &Result{
		Text:              strings.TrimSpace(chunk),
		TerminatedCleanly: true,
		Rounds:            3,
	}, nil
}

func makeDocument(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d\n00:%02d:%02d,000 --> 00:%02d:%02d,500\nLine number %d\n\n", i, i/60, i%60, i/60, i%60, i)
	}
	return b.String()
}
