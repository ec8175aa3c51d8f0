package subtitle

import (
	"fmt"
	"strings"
)

// makeDocument builds a well-formed SRT document with n cues.
func makeDocument(n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%d\n00:00:%02d,000 --> 00:00:%02d,500\nLine number %d", i, i%60, i%60, i)
	}
	sb.WriteString("\n")
	return sb.String()
}
