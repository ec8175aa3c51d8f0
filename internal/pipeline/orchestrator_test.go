package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/mgpai22/subtrans/internal/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roles(t Transcript) []Role {
	out := make([]Role, len(t))
	for i, m := range t {
		out[i] = m.Name
	}
	return out
}

func TestTranslateChunkHappyPath(t *testing.T) {
	model := &scriptedModel{replies: []string{
		"```srt\n" + testTranslation + "\n```",
		testTranslation,
		formatted(testTranslation),
	}}
	o := NewOrchestrator(model, nil, DefaultOptions(), nil)

	res, err := o.TranslateChunk(context.Background(), testChunk, "English", "es", 0)
	require.NoError(t, err)

	assert.Equal(t, testTranslation, res.Text)
	assert.True(t, res.TerminatedCleanly)
	assert.Equal(t, 3, res.Rounds)
	assert.Empty(t, res.Warnings)
	require.NotNil(t, res.Alignment)
	assert.True(t, res.Alignment.Aligned)
	require.NotNil(t, res.Formatting)
	assert.Equal(t, 2, res.Formatting.TotalSubtitles)

	assert.Equal(t, []Role{
		RoleUserProxy, RoleTranslator,
		RoleUserProxy, RoleReviewer,
		RoleUserProxy, RoleFormatter,
	}, roles(res.Transcript))

	require.Len(t, model.requests, 3)
	assert.Contains(t, model.requests[0].System, "You are the Subtitle_Translator")
	assert.Contains(t, model.requests[0].System, "from English to Spanish")
	assert.Contains(t, model.requests[1].System, "You are the Translation_Reviewer")
	assert.Contains(t, model.requests[1].Messages[0].Content, "¿Cómo estás?")
	assert.Contains(t, model.requests[2].System, "maximum of 2 lines")
	assert.Contains(t, model.requests[2].System, "maximum of 50 characters")
}

func TestTranslateChunkResolvesLookups(t *testing.T) {
	model := &scriptedModel{replies: []string{
		"LOOKUP: serendipity, blorp",
		testTranslation,
		testTranslation,
		formatted(testTranslation),
	}}
	dict := &fakeLookup{}
	o := NewOrchestrator(model, dict, DefaultOptions(), nil)

	res, err := o.TranslateChunk(context.Background(), testChunk, "English", "Spanish", 0)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Rounds)
	require.Len(t, dict.calls, 1)
	assert.Equal(t, []string{"serendipity", "blorp"}, dict.calls[0])
	assert.Equal(t, "en", dict.language)

	second := model.requests[1]
	require.Len(t, second.Messages, 3)
	assert.Equal(t, translate.RoleAssistant, second.Messages[1].Role)
	assert.Contains(t, second.Messages[2].Content, "serendipity: a happy accident")
	assert.Contains(t, second.Messages[2].Content, "Not found: blorp")
	assert.Equal(t, testTranslation, res.Text)
}

func TestTranslateChunkLookupWithoutService(t *testing.T) {
	model := &scriptedModel{replies: []string{
		"LOOKUP: serendipity",
		testTranslation,
		testTranslation,
		formatted(testTranslation),
	}}
	o := NewOrchestrator(model, nil, DefaultOptions(), nil)

	res, err := o.TranslateChunk(context.Background(), testChunk, "English", "Spanish", 0)
	require.NoError(t, err)
	assert.Contains(t, model.requests[1].Messages[2].Content, "Not found: serendipity")
	assert.True(t, res.TerminatedCleanly)
}

func TestTranslateChunkReturnsToFormatterOnDrift(t *testing.T) {
	drifted := "1\n00:00:01,000 --> 00:00:02,000\nHola\n\n" +
		"2\n00:00:03,500 --> 00:00:04,000\n¿Cómo estás?"
	model := &scriptedModel{replies: []string{
		testTranslation,
		testTranslation,
		formatted(drifted),
		formatted(testTranslation),
	}}
	o := NewOrchestrator(model, nil, DefaultOptions(), nil)

	res, err := o.TranslateChunk(context.Background(), testChunk, "English", "Spanish", 0)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Rounds)
	assert.Equal(t, testTranslation, res.Text)
	assert.True(t, res.Alignment.Aligned)

	last := model.requests[3]
	require.Len(t, last.Messages, 3)
	assert.Contains(t, last.Messages[2].Content, "positions 2")

	var verifying int
	for _, m := range res.Transcript {
		if m.Stage == StageVerifying {
			verifying++
			assert.Equal(t, RoleUserProxy, m.Name)
		}
	}
	assert.Equal(t, 1, verifying)
}

func TestTranslateChunkReportsUnresolvedDrift(t *testing.T) {
	short := "1\n00:00:01,000 --> 00:00:02,000\nHola"
	model := &scriptedModel{replies: []string{
		testTranslation,
		testTranslation,
		formatted(short),
		formatted(short),
	}}
	opts := DefaultOptions()
	opts.MaxFormatAttempts = 2
	o := NewOrchestrator(model, nil, opts, nil)

	res, err := o.TranslateChunk(context.Background(), testChunk, "English", "Spanish", 0)
	require.NoError(t, err)

	assert.True(t, res.TerminatedCleanly)
	assert.False(t, res.Alignment.Aligned)
	assert.True(t, res.Alignment.LengthMismatch)
	assert.Equal(t, []int{1}, res.Alignment.MisalignedIndices)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "alignment drift")
}

func TestTranslateChunkFallsBackToTranslator(t *testing.T) {
	model := &scriptedModel{replies: []string{
		testTranslation,
		testTranslation,
		"Looks fine to me.",
		"Still fine.",
	}}
	opts := DefaultOptions()
	opts.MaxFormatAttempts = 2
	o := NewOrchestrator(model, nil, opts, nil)

	res, err := o.TranslateChunk(context.Background(), testChunk, "English", "Spanish", 0)
	require.NoError(t, err)

	assert.False(t, res.TerminatedCleanly)
	assert.Equal(t, 4, res.Rounds)
	assert.Equal(t, testTranslation, res.Text)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "translator's output was used")
}

func TestTranslateChunkRoundLimit(t *testing.T) {
	model := &scriptedModel{replies: []string{
		testTranslation,
		testTranslation,
		formatted(testTranslation),
	}}
	o := NewOrchestrator(model, nil, DefaultOptions(), nil)

	res, err := o.TranslateChunk(context.Background(), testChunk, "English", "Spanish", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Rounds)
	assert.Len(t, model.requests, 2)
	assert.False(t, res.TerminatedCleanly)
	assert.Contains(t, res.Warnings, "round limit of 2 reached during formatting")
}

func TestTranslateChunkReviewerRetryOnUnparsableOutput(t *testing.T) {
	model := &scriptedModel{replies: []string{
		testTranslation,
		"The translation looks good overall.",
		testTranslation,
		formatted(testTranslation),
	}}
	o := NewOrchestrator(model, nil, DefaultOptions(), nil)

	res, err := o.TranslateChunk(context.Background(), testChunk, "English", "Spanish", 0)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Rounds)
	assert.Empty(t, res.Warnings)
	assert.Contains(t, model.requests[2].Messages[2].Content, "could not be parsed")
}

func TestTranslateChunkNoContent(t *testing.T) {
	modelErr := errors.New("provider unavailable")
	model := &scriptedModel{err: modelErr}
	o := NewOrchestrator(model, nil, DefaultOptions(), nil)

	res, err := o.TranslateChunk(context.Background(), testChunk, "English", "Spanish", 0)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoContent)
	assert.ErrorIs(t, err, modelErr)
}

func TestTranslateChunkRejectsMalformedChunk(t *testing.T) {
	model := &scriptedModel{}
	o := NewOrchestrator(model, nil, DefaultOptions(), nil)

	_, err := o.TranslateChunk(context.Background(), "one\n00:00:01,000 --> 00:00:02,000\nHi", "en", "es", 0)

	var perr *subtitle.ParseError
	assert.ErrorAs(t, err, &perr)
	assert.Empty(t, model.requests)
}

func TestTranslateChunkCancelledContext(t *testing.T) {
	model := &scriptedModel{replies: []string{testTranslation}}
	o := NewOrchestrator(model, nil, DefaultOptions(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.TranslateChunk(ctx, testChunk, "en", "es", 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "translating", StageTranslating.String())
	assert.Equal(t, "verifying", StageVerifying.String())
	assert.Equal(t, "unknown", Stage(42).String())
	assert.True(t, StageDone.Terminal())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StageFormatting.Terminal())
}
