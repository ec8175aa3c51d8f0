package cli

import (
	"fmt"

	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [original_file] [translated_file]",
	Short: "Compare a translation against its original",
	Long: `Cross-check a translated SRT file against the original and list
subtitle count, index, timestamp, line count and line length problems.

Examples:
  subtrans stats movie.srt movie-tr.srt
  subtrans stats movie.srt movie-tr.srt --max-line-length 42`,
	Args: cobra.ExactArgs(2),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().
		Int("max-line-length", subtitle.DefaultMaxLineLength, "Maximum characters per subtitle line")
}

func runStats(cmd *cobra.Command, args []string) error {
	maxLineLength, _ := cmd.Flags().GetInt("max-line-length")
	if maxLineLength <= 0 {
		return fmt.Errorf("max-line-length must be positive, got %d", maxLineLength)
	}

	original, err := subtitle.ReadFile(args[0])
	if err != nil {
		return err
	}
	translated, err := subtitle.ReadFile(args[1])
	if err != nil {
		return err
	}

	printIssues(cmd, subtitle.Stats(original, translated, maxLineLength))
	return nil
}
