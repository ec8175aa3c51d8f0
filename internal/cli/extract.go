package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subtrans/internal/media"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract an embedded subtitle track from a video file",
	Long: `Extract a subtitle stream from a video container and save it as SRT so
it can be translated.

Use --list to see the subtitle streams of a file first. Requires ffmpeg and
ffprobe on PATH (or SUBTRANS_FFMPEG_PATH / SUBTRANS_FFPROBE_PATH).

Examples:
  subtrans extract movie.mkv --list
  subtrans extract movie.mkv
  subtrans extract movie.mkv --stream 1 -o movie.en.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		Int("stream", 0, "Subtitle stream to extract (0 = first subtitle stream)")
	extractCmd.Flags().
		Bool("list", false, "List subtitle streams instead of extracting")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	stream, _ := cmd.Flags().GetInt("stream")
	list, _ := cmd.Flags().GetBool("list")
	outputPath, _ := cmd.Flags().GetString("output")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if list {
		streams, err := media.SubtitleStreams(ctx, videoPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(streams) == 0 {
			fmt.Fprintln(out, "No subtitle streams found")
			return nil
		}
		for _, s := range streams {
			fmt.Fprintf(out, "%d: %s", s.Index, s.Codec)
			if s.Language != "" {
				fmt.Fprintf(out, " [%s]", s.Language)
			}
			if s.Title != "" {
				fmt.Fprintf(out, " %q", s.Title)
			}
			fmt.Fprintln(out)
		}
		return nil
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
	}

	logger.Infow("Extracting subtitles",
		"video", videoPath,
		"output", outputPath,
		"stream", stream,
	)

	if err := media.ExtractSubtitles(ctx, videoPath, outputPath, stream); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles extracted successfully: %s\n", absOutput)
	return nil
}
