package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mgpai22/subtrans/internal/language"
	"github.com/mgpai22/subtrans/internal/logging"
	"github.com/mgpai22/subtrans/internal/lookup"
	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/mgpai22/subtrans/internal/translate"
)

const (
	DefaultMaxRounds         = 50
	DefaultMaxFormatAttempts = 3
	DefaultMaxLookupRounds   = 2
)

// Oracle translates one chunk of SRT text.
type Oracle interface {
	TranslateChunk(ctx context.Context, chunk, sourceLang, targetLang string, roundLimit int) (*Result, error)
}

// Result is the outcome of one chunk.
type Result struct {
	Text              string
	TerminatedCleanly bool
	Rounds            int
	Warnings          []string
	Alignment         *subtitle.AlignmentResult
	Formatting        *subtitle.FormattingResult
	Transcript        Transcript
}

type Options struct {
	MaxRounds         int
	MaxLines          int
	MaxLineLength     int
	MaxFormatAttempts int
	MaxLookupRounds   int
	LookupMaxAttempts int
	LookupMaxWords    int
}

func DefaultOptions() Options {
	return Options{
		MaxRounds:         DefaultMaxRounds,
		MaxLines:          subtitle.DefaultMaxLines,
		MaxLineLength:     subtitle.DefaultMaxLineLength,
		MaxFormatAttempts: DefaultMaxFormatAttempts,
		MaxLookupRounds:   DefaultMaxLookupRounds,
		LookupMaxAttempts: lookup.DefaultMaxAttempts,
		LookupMaxWords:    lookup.DefaultMaxWords,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxRounds <= 0 {
		o.MaxRounds = d.MaxRounds
	}
	if o.MaxLines <= 0 {
		o.MaxLines = d.MaxLines
	}
	if o.MaxLineLength <= 0 {
		o.MaxLineLength = d.MaxLineLength
	}
	if o.MaxFormatAttempts <= 0 {
		o.MaxFormatAttempts = d.MaxFormatAttempts
	}
	if o.MaxLookupRounds < 0 {
		o.MaxLookupRounds = 0
	}
	if o.LookupMaxAttempts <= 0 {
		o.LookupMaxAttempts = d.LookupMaxAttempts
	}
	if o.LookupMaxWords <= 0 {
		o.LookupMaxWords = d.LookupMaxWords
	}
	return o
}

// Orchestrator drives the translate, review, format and verify stages of a
// chunk through a language model. It implements Oracle.
type Orchestrator struct {
	model     translate.Model
	lookup    lookup.Service
	formatter *subtitle.Formatter
	opts      Options
	logger    *logging.Logger
}

// NewOrchestrator creates an orchestrator. lookupService may be nil, in
// which case lookup requests are answered with "not found".
func NewOrchestrator(
	model translate.Model,
	lookupService lookup.Service,
	opts Options,
	logger *logging.Logger,
) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		model:     model,
		lookup:    lookupService,
		formatter: subtitle.NewFormatter(opts.MaxLines, opts.MaxLineLength),
		opts:      opts,
		logger:    logging.OrNop(logger),
	}
}

// run is the per-chunk state threaded through the stages.
type run struct {
	original   []subtitle.Subtitle
	data       promptData
	lookupLang string
	limit      int

	rounds         int
	transcript     Transcript
	warnings       []string
	candidate      string
	reviewed       string
	formatMsgs     []translate.Message
	formatAttempts int

	logger *logging.Logger
}

func (r *run) record(name Role, stage Stage, content string) {
	r.transcript = append(r.transcript, Message{Name: name, Stage: stage, Content: content})
}

func (r *run) warn(format string, args ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *run) roundsLeft() bool {
	return r.rounds < r.limit
}

// TranslateChunk runs the stage machine for one chunk. roundLimit <= 0 uses
// the configured MaxRounds. A malformed chunk is rejected with a
// *subtitle.ParseError before any model call.
func (o *Orchestrator) TranslateChunk(
	ctx context.Context,
	chunk, sourceLang, targetLang string,
	roundLimit int,
) (*Result, error) {
	original, err := subtitle.Parse(chunk)
	if err != nil {
		return nil, err
	}
	if len(original) == 0 {
		return nil, ErrEmptyDocument
	}
	if roundLimit <= 0 {
		roundLimit = o.opts.MaxRounds
	}

	lookupLang, ok := language.Code(sourceLang)
	if !ok {
		lookupLang = lookup.DefaultLanguage
	}

	r := &run{
		original:   original,
		lookupLang: lookupLang,
		limit:      roundLimit,
		data: promptData{
			SourceLanguage: language.Name(sourceLang),
			TargetLanguage: language.Name(targetLang),
			MaxLines:       o.opts.MaxLines,
			MaxLineLength:  o.opts.MaxLineLength,
			MaxLookupWords: o.opts.LookupMaxWords,
			Original:       strings.TrimSpace(subtitle.RemoveBOM(chunk)),
			StartMarker:    StartMarker,
			EndMarker:      EndMarker,
			Termination:    TerminationKeyword,
			Lookup:         LookupDirective,
		},
		logger: o.logger.With("first", original[0].Index, "last", original[len(original)-1].Index),
	}

	var cause error
	stage := StageTranslating
	for !stage.Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var next Stage
		switch stage {
		case StageTranslating:
			next, err = o.translate(ctx, r)
		case StageReviewing:
			next, err = o.review(ctx, r)
		case StageFormatting:
			next, err = o.format(ctx, r)
		case StageVerifying:
			next, err = o.verify(r)
		}

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, errRoundLimit) {
				r.logger.Warnw("Round limit reached", "stage", stage, "rounds", r.rounds)
				r.warn("round limit of %d reached during %s", r.limit, stage)
			} else {
				r.logger.Warnw("Stage failed", "stage", stage, "error", err)
				r.warn("%s stage failed: %v", stage, err)
				cause = err
			}
			next = StageDone
		}

		r.logger.Debugw("Stage transition", "from", stage, "to", next, "rounds", r.rounds)
		stage = next
	}

	return o.finish(r, cause)
}

// call performs one model round for role and records the reply.
func (o *Orchestrator) call(
	ctx context.Context,
	r *run,
	role Role,
	stage Stage,
	system string,
	messages []translate.Message,
) (string, error) {
	if !r.roundsLeft() {
		return "", errRoundLimit
	}
	r.rounds++

	reply, err := o.model.Complete(ctx, translate.Request{System: system, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("%s: %w", role, err)
	}
	r.record(role, stage, reply)
	return reply, nil
}

func (o *Orchestrator) translate(ctx context.Context, r *run) (Stage, error) {
	system := render("translator_system", r.data)
	task := render("translator_task", r.data)
	r.record(RoleUserProxy, StageTranslating, task)

	messages := []translate.Message{{Role: translate.RoleUser, Content: task}}
	for lookups := 0; ; lookups++ {
		reply, err := o.call(ctx, r, RoleTranslator, StageTranslating, system, messages)
		if err != nil {
			return StageFailed, err
		}

		words := parseLookup(reply)
		if len(words) == 0 {
			r.candidate = translate.CleanResponse(reply)
			return StageReviewing, nil
		}
		if lookups >= o.opts.MaxLookupRounds {
			// the model keeps asking; insist on the translation
			words = nil
		}

		answer := o.answerLookup(ctx, r, words)
		r.record(RoleUserProxy, StageTranslating, answer)
		messages = append(messages,
			translate.Message{Role: translate.RoleAssistant, Content: reply},
			translate.Message{Role: translate.RoleUser, Content: answer},
		)
	}
}

func (o *Orchestrator) answerLookup(ctx context.Context, r *run, words []string) string {
	data := r.data
	switch {
	case len(words) == 0:
		data.Feedback = "No more dictionary lookups are available."
	case o.lookup == nil:
		data.Feedback = (&lookup.Result{NotFound: words}).Context()
	default:
		r.logger.Infow("Looking up words", "words", words, "language", r.lookupLang)
		res := o.lookup.Lookup(ctx, words, r.lookupLang, o.opts.LookupMaxAttempts, o.opts.LookupMaxWords)
		data.Feedback = res.Context()
	}
	return render("lookup_reply", data)
}

func (o *Orchestrator) review(ctx context.Context, r *run) (Stage, error) {
	data := r.data
	data.Translated = r.candidate
	system := render("reviewer_system", data)
	task := render("reviewer_task", data)
	r.record(RoleUserProxy, StageReviewing, task)

	messages := []translate.Message{{Role: translate.RoleUser, Content: task}}
	reply, err := o.call(ctx, r, RoleReviewer, StageReviewing, system, messages)
	if err != nil {
		return StageFailed, err
	}
	reviewed := translate.CleanResponse(reply)

	if _, perr := subtitle.Parse(reviewed); perr != nil && r.roundsLeft() {
		data.Feedback = perr.Error()
		feedback := render("unparsable_feedback", data)
		r.record(RoleUserProxy, StageReviewing, feedback)
		messages = append(messages,
			translate.Message{Role: translate.RoleAssistant, Content: reply},
			translate.Message{Role: translate.RoleUser, Content: feedback},
		)
		reply, err = o.call(ctx, r, RoleReviewer, StageReviewing, system, messages)
		if err != nil {
			return StageFailed, err
		}
		reviewed = translate.CleanResponse(reply)
	}

	if _, perr := subtitle.Parse(reviewed); perr != nil {
		r.logger.Warnw("Reviewed subtitles unparsable, keeping the translation", "error", perr)
		r.warn("review output discarded: %v", perr)
		reviewed = r.candidate
	}
	r.reviewed = reviewed
	return StageFormatting, nil
}

func (o *Orchestrator) format(ctx context.Context, r *run) (Stage, error) {
	data := r.data
	if r.formatMsgs == nil {
		data.Translated = r.reviewed
		if res, err := o.formatter.Format(r.reviewed); err != nil {
			r.logger.Warnw("Local formatting skipped", "error", err)
		} else {
			data.Translated = strings.TrimSpace(res.Text)
			for _, w := range res.Warnings {
				r.logger.Warnw("Formatting warning", "warning", w)
			}
		}

		task := render("formatter_task", data)
		r.record(RoleUserProxy, StageFormatting, task)
		r.formatMsgs = []translate.Message{{Role: translate.RoleUser, Content: task}}
	}

	r.formatAttempts++
	reply, err := o.call(ctx, r, RoleFormatter, StageFormatting, render("formatter_system", data), r.formatMsgs)
	if err != nil {
		return StageFailed, err
	}
	r.formatMsgs = append(r.formatMsgs, translate.Message{Role: translate.RoleAssistant, Content: reply})
	return StageVerifying, nil
}

func (o *Orchestrator) verify(r *run) (Stage, error) {
	reply := r.formatMsgs[len(r.formatMsgs)-1].Content
	data := r.data

	var feedback string
	if !hasMarker(reply) {
		feedback = render("missing_markers_feedback", data)
	} else {
		processed, err := subtitle.Parse(extractFormatted(reply))
		if err != nil {
			data.Feedback = err.Error()
			feedback = render("unparsable_feedback", data)
		} else if alignment := subtitle.Compare(r.original, processed); !alignment.Aligned {
			data.Feedback = describeMisalignment(alignment)
			feedback = render("alignment_feedback", data)
		} else {
			return StageDone, nil
		}
	}

	if r.formatAttempts >= o.opts.MaxFormatAttempts || !r.roundsLeft() {
		r.logger.Warnw("Formatter output still invalid", "attempts", r.formatAttempts)
		return StageDone, nil
	}

	r.logger.Debugw("Returning to formatter", "attempt", r.formatAttempts)
	r.record(RoleUserProxy, StageVerifying, feedback)
	r.formatMsgs = append(r.formatMsgs, translate.Message{Role: translate.RoleUser, Content: feedback})
	return StageFormatting, nil
}

// finish extracts the chunk text and re-checks it locally.
func (o *Orchestrator) finish(r *run, cause error) (*Result, error) {
	text, clean, err := Extract(r.transcript)
	if err != nil {
		if cause != nil {
			err = fmt.Errorf("%w: %w", err, cause)
		}
		r.logger.Errorw("No content found from any stage", "stage", StageFailed, "rounds", r.rounds, "error", err)
		return nil, err
	}
	if !clean {
		r.logger.Warnw("No properly formatted output from the formatter, using the translator's output")
		r.warn("formatter produced no marked output; the translator's output was used")
	}

	result := &Result{
		Text:              text,
		TerminatedCleanly: clean,
		Rounds:            r.rounds,
		Transcript:        r.transcript,
	}

	formatted, err := o.formatter.Format(text)
	if err != nil {
		r.logger.Warnw("Translated chunk could not be parsed", "error", err)
		r.warn("translated chunk could not be parsed: %v", err)
	} else {
		result.Text = strings.TrimSpace(formatted.Text)
		result.Formatting = formatted
		r.warnings = append(r.warnings, formatted.Warnings...)

		result.Alignment = subtitle.Compare(r.original, formatted.Subtitles)
		if !result.Alignment.Aligned {
			r.logger.Warnw("Alignment drift", "positions", result.Alignment.MisalignedIndices)
			r.warn("alignment drift: %s", describeMisalignment(result.Alignment))
		}
	}

	result.Warnings = r.warnings
	r.logger.Infow("Chunk finished",
		"rounds", r.rounds,
		"clean", clean,
		"warnings", len(r.warnings),
	)
	return result, nil
}

func describeMisalignment(a *subtitle.AlignmentResult) string {
	positions := make([]string, len(a.MisalignedIndices))
	for i, p := range a.MisalignedIndices {
		positions[i] = strconv.Itoa(p + 1)
	}
	msg := fmt.Sprintf("subtitles at positions %s differ in index or timestamps", strings.Join(positions, ", "))
	if a.LengthMismatch {
		msg += fmt.Sprintf(" (original has %d subtitles, processed has %d)", a.OriginalCount, a.ProcessedCount)
	}
	return msg
}
