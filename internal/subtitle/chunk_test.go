package subtitle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSizes(t *testing.T) {
	tests := []struct {
		name      string
		cues      int
		size      int
		wantSizes []int
	}{
		{"remainder chunk", 65, 30, []int{30, 30, 5}},
		{"exact multiple", 60, 30, []int{30, 30}},
		{"smaller than chunk", 7, 30, []int{7}},
		{"chunk of one", 3, 1, []int{1, 1, 1}},
		{"empty document", 0, 30, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(makeDocument(tt.cues), tt.size)
			require.NoError(t, err)

			sizes := make([]int, len(chunks))
			for i, chunk := range chunks {
				sizes[i] = CountBlocks(chunk)
				assert.True(t, strings.HasSuffix(chunk, "\n\n"))
			}
			assert.Equal(t, tt.wantSizes, sizes)
		})
	}
}

func TestSplitRejectsInvalidSize(t *testing.T) {
	_, err := Split(makeDocument(3), 0)
	assert.Error(t, err)
}

func TestSplitStripsBOM(t *testing.T) {
	chunks, err := Split(BOM+makeDocument(2), 30)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.False(t, HasBOM(chunks[0]))
}

func TestSplitMergePreservesBlocks(t *testing.T) {
	for _, size := range []int{1, 7, 30, 100} {
		doc := makeDocument(65)

		chunks, err := Split(doc, size)
		require.NoError(t, err)

		merged := Merge(chunks)
		require.True(t, HasBOM(merged))
		assert.Equal(t, 1, strings.Count(merged, BOM), "BOM must appear once")
		assert.Equal(t, Blocks(doc), Blocks(merged))
	}
}

func TestMergeSkipsEmptyChunksAndInnerBOM(t *testing.T) {
	merged := Merge([]string{
		"1\n00:00:01,000 --> 00:00:02,000\nA\n\n",
		"   ",
		BOM + "2\n00:00:03,000 --> 00:00:04,000\nB\n",
	})

	assert.Equal(t,
		BOM+"1\n00:00:01,000 --> 00:00:02,000\nA\n\n2\n00:00:03,000 --> 00:00:04,000\nB",
		merged,
	)
}
