package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteFile stores a document as UTF-8 with a single leading BOM, creating
// parent directories as needed.
func WriteFile(path, content string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	content = EnsureBOM(RemoveBOM(content))
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return nil
}

// TranslatedPath derives "<dir>/<stem>-<suffix>.srt" for a source file.
// dir == "" keeps the source directory.
func TranslatedPath(source, dir, suffix string) string {
	if dir == "" {
		dir = filepath.Dir(source)
	}
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, fmt.Sprintf("%s-%s.srt", stem, suffix))
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
