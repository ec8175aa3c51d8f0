package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [original_file] [processed_file]",
	Short: "Check that indices and timestamps survived processing",
	Long: `Compare two SRT files subtitle by subtitle and report every position
whose index or timestamps differ, as well as a difference in length.

Examples:
  subtrans verify movie.srt movie-tr.srt`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	original, err := subtitle.ReadFile(args[0])
	if err != nil {
		return err
	}
	processed, err := subtitle.ReadFile(args[1])
	if err != nil {
		return err
	}

	result, err := subtitle.Verify(original, processed)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Aligned {
		fmt.Fprintf(out, "Subtitles are aligned (%d subtitles)\n", result.OriginalCount)
		return nil
	}

	fmt.Fprintln(out, "Subtitles are misaligned")
	if result.LengthMismatch {
		fmt.Fprintf(out, "  Original has %d subtitles, processed has %d\n",
			result.OriginalCount,
			result.ProcessedCount,
		)
	}
	positions := make([]string, len(result.MisalignedIndices))
	for i, idx := range result.MisalignedIndices {
		positions[i] = strconv.Itoa(idx + 1)
	}
	fmt.Fprintf(out, "  Positions: %s\n", strings.Join(positions, ", "))
	return nil
}
