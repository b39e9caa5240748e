package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_DescendingByScore(t *testing.T) {
	docs := []ScoredDocument{
		{Filename: "low.txt", Score: 1},
		{Filename: "high.txt", Score: 9},
		{Filename: "mid.txt", Score: 5},
	}

	out := Rank(docs, 10)

	require.Len(t, out, 3)
	assert.Equal(t, "high.txt", out[0].Filename)
	assert.Equal(t, "mid.txt", out[1].Filename)
	assert.Equal(t, "low.txt", out[2].Filename)
}

func TestRank_StableTies(t *testing.T) {
	docs := []ScoredDocument{
		{Filename: "first.txt", Score: 3},
		{Filename: "second.txt", Score: 3},
		{Filename: "third.txt", Score: 3},
	}

	out := Rank(docs, 10)

	require.Len(t, out, 3)
	assert.Equal(t, "first.txt", out[0].Filename, "equal scores keep input order")
	assert.Equal(t, "second.txt", out[1].Filename)
	assert.Equal(t, "third.txt", out[2].Filename)
}

func TestRank_DeduplicatesBeforeTruncation(t *testing.T) {
	docs := []ScoredDocument{
		{Filename: "a.txt", Score: 9},
		{Filename: "a.txt", Score: 8},
		{Filename: "b.txt", Score: 7},
		{Filename: "c.txt", Score: 6},
	}

	out := Rank(docs, 3)

	require.Len(t, out, 3)
	assert.Equal(t, "a.txt", out[0].Filename)
	assert.Equal(t, 9.0, out[0].Score)
	assert.Equal(t, "b.txt", out[1].Filename)
	assert.Equal(t, "c.txt", out[2].Filename)
}

func TestRank_NoDuplicateFilenames(t *testing.T) {
	docs := []ScoredDocument{
		{Filename: "a.txt", Score: 1},
		{Filename: "b.txt", Score: 2},
		{Filename: "a.txt", Score: 3},
		{Filename: "b.txt", Score: 4},
	}

	out := Rank(docs, 10)

	seen := make(map[string]bool)
	for _, d := range out {
		assert.False(t, seen[d.Filename], "duplicate filename %s", d.Filename)
		seen[d.Filename] = true
	}
}

func TestRank_TopKCutoff(t *testing.T) {
	docs := []ScoredDocument{
		{Filename: "a.txt", Score: 3},
		{Filename: "b.txt", Score: 2},
		{Filename: "c.txt", Score: 1},
	}

	assert.Len(t, Rank(docs, 2), 2)
	assert.Len(t, Rank(docs, 0), 3, "topK 0 means no cutoff")
}

func TestRank_InputNotMutated(t *testing.T) {
	docs := []ScoredDocument{
		{Filename: "low.txt", Score: 1},
		{Filename: "high.txt", Score: 2},
	}

	_ = Rank(docs, 10)

	assert.Equal(t, "low.txt", docs[0].Filename, "caller slice order preserved")
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil, 5))
}
