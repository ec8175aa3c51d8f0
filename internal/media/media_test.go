package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStreams(t *testing.T) {
	data := []byte(`{
  "streams": [
    {"index": 2, "codec_name": "subrip", "tags": {"language": "eng", "title": "English"}},
    {"index": 3, "codec_name": "ass", "tags": {"language": "fre"}},
    {"index": 4, "codec_name": "mov_text"}
  ]
}`)

	streams, err := parseStreams(data)
	require.NoError(t, err)
	require.Len(t, streams, 3)

	assert.Equal(t, Stream{Index: 0, Codec: "subrip", Language: "eng", Title: "English"}, streams[0])
	assert.Equal(t, Stream{Index: 1, Codec: "ass", Language: "fre"}, streams[1])
	assert.Equal(t, 2, streams[2].Index)
	assert.Empty(t, streams[2].Language)
}

func TestParseStreamsInvalidJSON(t *testing.T) {
	_, err := parseStreams([]byte("not json"))
	assert.Error(t, err)
}

func TestExtractCommandArgs(t *testing.T) {
	args := extractCommand("in.mkv", "out.srt", 1, "/usr/bin/ffmpeg").GetArgs()

	assert.Contains(t, args, "in.mkv")
	assert.Contains(t, args, "out.srt")
	assert.Contains(t, args, "-y")

	mapIdx := indexOf(args, "-map")
	require.GreaterOrEqual(t, mapIdx, 0)
	assert.Equal(t, "0:s:1", args[mapIdx+1])

	codecIdx := indexOf(args, "-c:s")
	require.GreaterOrEqual(t, codecIdx, 0)
	assert.Equal(t, "srt", args[codecIdx+1])
}

func TestExtractSubtitlesMissingVideo(t *testing.T) {
	err := ExtractSubtitles(context.Background(), filepath.Join(t.TempDir(), "missing.mkv"), "out.srt", 0)
	assert.ErrorContains(t, err, "video file not found")
}

func TestExtractSubtitlesNegativeStream(t *testing.T) {
	video := filepath.Join(t.TempDir(), "video.mkv")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o644))

	err := ExtractSubtitles(context.Background(), video, filepath.Join(t.TempDir(), "out.srt"), -1)
	assert.Error(t, err)
}

func TestResolveFromEnv(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))

	t.Setenv("SUBTRANS_TEST_FFMPEG", bin)
	path, err := resolve("SUBTRANS_TEST_FFMPEG", "ffmpeg")
	require.NoError(t, err)
	assert.Equal(t, bin, path)

	t.Setenv("SUBTRANS_TEST_FFMPEG", filepath.Join(t.TempDir(), "nope"))
	_, err = resolve("SUBTRANS_TEST_FFMPEG", "ffmpeg")
	assert.Error(t, err)
}

func TestResolveNotOnPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := resolve("SUBTRANS_TEST_UNSET", "definitely-not-a-binary")
	assert.Error(t, err)
}

func indexOf(args []string, s string) int {
	for i, a := range args {
		if a == s {
			return i
		}
	}
	return -1
}
