// Package media pulls embedded subtitle tracks out of video containers.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Stream describes one subtitle stream of a container.
type Stream struct {
	Index    int    // position among the subtitle streams, for ExtractSubtitles
	Codec    string
	Language string
	Title    string
}

type ffprobeOutput struct {
	Streams []struct {
		CodecName string            `json:"codec_name"`
		Tags      map[string]string `json:"tags"`
	} `json:"streams"`
}

// SubtitleStreams lists the subtitle streams of a video file.
func SubtitleStreams(ctx context.Context, videoPath string) ([]Stream, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	ffprobePath, err := FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "s",
		videoPath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseStreams(out.Bytes())
}

func parseStreams(data []byte) ([]Stream, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	streams := make([]Stream, len(probe.Streams))
	for i, s := range probe.Streams {
		streams[i] = Stream{
			Index:    i,
			Codec:    s.CodecName,
			Language: s.Tags["language"],
			Title:    s.Tags["title"],
		}
	}
	return streams, nil
}

// ExtractSubtitles converts the stream-th subtitle stream of a video file
// to SRT at outputPath.
func ExtractSubtitles(ctx context.Context, videoPath, outputPath string, stream int) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if stream < 0 {
		return fmt.Errorf("stream index must not be negative, got %d", stream)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := FFmpegPath()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := extractCommand(videoPath, outputPath, stream, ffmpegPath).Run(); err != nil {
		return fmt.Errorf("subtitle extraction failed: %w", err)
	}
	return nil
}

func extractCommand(videoPath, outputPath string, stream int, ffmpegPath string) *ffmpeg.Stream {
	kwargs := ffmpeg.KwArgs{
		"map": "0:s:" + strconv.Itoa(stream),
		"c:s": "srt",
	}
	return ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath)
}
