package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// loaded SRT document: raw text plus its parsed cues
type File struct {
	Path      string
	Content   string
	Subtitles []Subtitle
}

// Open reads and parses an SRT file.
func Open(path string) (*File, error) {
	content, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	subs, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &File{
		Path:      path,
		Content:   content,
		Subtitles: subs,
	}, nil
}

// ReadFile returns the text of an SRT file. UTF-16 files with a BOM are
// decoded; the UTF-8 BOM is removed.
func ReadFile(path string) (string, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".srt" {
		return "", fmt.Errorf("unsupported subtitle format %q: only .srt files are supported", ext)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read subtitle file: %w", err)
	}
	return Decode(raw)
}

// Decode converts raw subtitle bytes to text without a BOM.
func Decode(raw []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode subtitle file: %w", err)
	}
	return RemoveBOM(string(decoded)), nil
}
