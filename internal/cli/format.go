package cli

import (
	"fmt"

	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format [subtitle_file]",
	Short: "Reflow subtitle text to the line limits",
	Long: `Re-wrap the text of every subtitle so it fits the configured number of
lines and characters per line. Indices and timestamps are kept as they are.

Without -o the result is printed to stdout. Subtitles that still exceed the
limits are reported as warnings.

Examples:
  subtrans format movie-tr.srt
  subtrans format movie-tr.srt --max-lines 2 --max-line-length 42 -o movie-fixed.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runFormat,
}

func init() {
	rootCmd.AddCommand(formatCmd)
	addFormatFlags(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	maxLines, _ := cmd.Flags().GetInt("max-lines")
	maxLineLength, _ := cmd.Flags().GetInt("max-line-length")
	outputPath, _ := cmd.Flags().GetString("output")

	if maxLines <= 0 || maxLineLength <= 0 {
		return fmt.Errorf("max-lines and max-line-length must be positive")
	}

	content, err := subtitle.ReadFile(args[0])
	if err != nil {
		return err
	}

	result, err := subtitle.NewFormatter(maxLines, maxLineLength).Format(content)
	if err != nil {
		return fmt.Errorf("failed to format subtitles: %w", err)
	}
	for _, w := range result.Warnings {
		logger.Warnw("Formatting warning", "warning", w)
	}

	if outputPath == "" {
		fmt.Fprint(cmd.OutOrStdout(), result.Text)
		return nil
	}
	if err := subtitle.WriteFile(outputPath, result.Text); err != nil {
		return err
	}
	logger.Infow("Formatted subtitles written",
		"output", outputPath,
		"subtitles", result.TotalSubtitles,
		"warnings", len(result.Warnings),
	)
	return nil
}
