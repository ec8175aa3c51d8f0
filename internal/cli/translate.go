package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/mgpai22/subtrans/internal/language"
	"github.com/mgpai22/subtrans/internal/pipeline"
	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Translate an SRT file to another language",
	Long: `Translate an SRT subtitle file with a language model.

The file is split into chunks of subtitles. Every chunk is translated,
reviewed, reflowed to the line limits and checked against the original so
that indices and timestamps are never changed. Unknown words can be looked
up in Wiktionary during translation.

The source language is detected from the subtitle text when it is not given.
The result is written next to the input as <name>-tr.srt unless -o is set.

Examples:
  subtrans translate movie.srt --target-language spanish
  subtrans translate movie.srt -s en -t ja --provider openai --model gpt-5-mini
  subtrans translate movie.srt -t french --provider ollama --model llama3.1
  subtrans translate movie.srt -t de --chunk-size 20 --lookup=false -o out/movie.de.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("source-language", "s", "", "Language of the input subtitles (detected when empty)")
	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required, or set in config)")
	addProviderFlags(translateCmd)
	addPipelineFlags(translateCmd)
	addLookupFlags(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}

	logger.Infow("Parsing subtitle file", "input", subtitlePath)
	file, err := subtitle.Open(subtitlePath)
	if err != nil {
		return err
	}
	if len(file.Subtitles) == 0 {
		return fmt.Errorf("subtitle file contains no subtitles")
	}

	opts := documentOptions(cfg)
	if opts.TargetLanguage == "" {
		return fmt.Errorf("target language is required")
	}
	if opts.SourceLanguage == "" {
		detected, ok := language.Detect(subtitleTexts(file.Subtitles))
		if !ok {
			return fmt.Errorf("could not detect the source language: use --source-language")
		}
		logger.Infow("Detected source language", "language", detected)
		opts.SourceLanguage = detected
	}
	if language.Same(opts.SourceLanguage, opts.TargetLanguage) {
		return fmt.Errorf(
			"source language %q and target language %q cannot be the same",
			opts.SourceLanguage,
			opts.TargetLanguage,
		)
	}
	opts.SourceLanguage = language.Name(opts.SourceLanguage)
	opts.TargetLanguage = language.Name(opts.TargetLanguage)
	opts.Progress = func(done, total int) {
		logger.Infow("Chunk finished", "done", done, "total", total)
	}

	if outputPath == "" {
		outputPath = subtitle.TranslatedPath(subtitlePath, "", "tr")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	oracle, _, err := newOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"output", outputPath,
		"source_language", opts.SourceLanguage,
		"target_language", opts.TargetLanguage,
		"provider", cfg.Provider.Name,
		"model", cfg.Provider.Model,
	)

	start := time.Now()
	result, err := pipeline.TranslateDocument(ctx, oracle, file.Content, opts, logger)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	logger.Infow("Writing output file")
	if err := subtitle.WriteFile(outputPath, result.Content); err != nil {
		return err
	}

	printTranslationSummary(cmd, outputPath, len(file.Subtitles), opts, result, time.Since(start))
	return nil
}

func printTranslationSummary(
	cmd *cobra.Command,
	outputPath string,
	subtitles int,
	opts pipeline.DocumentOptions,
	result *pipeline.DocumentResult,
	elapsed time.Duration,
) {
	out := cmd.OutOrStdout()
	absOutput, _ := filepath.Abs(outputPath)

	fmt.Fprintf(out, "Subtitles translated successfully: %s\n", absOutput)
	fmt.Fprintf(out, "  Subtitles: %d\n", subtitles)
	fmt.Fprintf(out, "  Chunks: %d\n", len(result.Chunks))
	fmt.Fprintf(out, "  Languages: %s -> %s\n", opts.SourceLanguage, opts.TargetLanguage)
	fmt.Fprintf(out, "  Duration: %s\n", elapsed.Round(time.Second))

	if len(result.Warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
	printIssues(cmd, result.Issues)
}

func printIssues(cmd *cobra.Command, issues []string) {
	out := cmd.OutOrStdout()
	if len(issues) == 0 {
		fmt.Fprintln(out, "No issues found")
		return
	}
	fmt.Fprintf(out, "\nIssues (%d):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(out, "  - %s\n", issue)
	}
}

func subtitleTexts(subs []subtitle.Subtitle) []string {
	texts := make([]string, len(subs))
	for i, sub := range subs {
		texts[i] = sub.Text
	}
	return texts
}
