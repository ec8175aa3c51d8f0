package subtitle

import (
	"fmt"
	"strings"
)

// Split groups the blocks of a document into chunks of size consecutive
// blocks; the last chunk holds the remainder. Chunks stay raw text so the
// timestamps and markup are never re-serialised here.
func Split(content string, size int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}

	blocks := Blocks(content)
	chunks := make([]string, 0, (len(blocks)+size-1)/size)
	for i := 0; i < len(blocks); i += size {
		end := i + size
		if end > len(blocks) {
			end = len(blocks)
		}
		chunks = append(chunks, strings.Join(blocks[i:end], "\n\n")+"\n\n")
	}
	return chunks, nil
}

// Merge concatenates translated chunks in order and prefixes the document
// with a single BOM. Indices are not renumbered.
func Merge(chunks []string) string {
	var sb strings.Builder
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(RemoveBOM(strings.TrimSpace(chunk)))
		if chunk == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(chunk)
	}
	return BOM + sb.String()
}

// CountBlocks returns the number of blank-line delimited blocks.
func CountBlocks(content string) int {
	return len(Blocks(content))
}
