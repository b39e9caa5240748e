package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
)

func TestQuickView_RanksSentencesByHits(t *testing.T) {
	e, _ := newTestEngine(t)

	view, err := e.QuickView(context.Background(), "9001-02.txt", "Halawa grading")

	require.NoError(t, err)
	assert.Equal(t, "9001-02.txt", view.Filename)
	require.Len(t, view.Snippets, 2)
	// "Halawa stream grading permit" has two term hits and ranks ahead
	// of the single-hit flood channel sentence.
	assert.Contains(t, view.Snippets[0], "<mark>grading</mark> permit")
	assert.Contains(t, view.Snippets[0], "<mark>Halawa</mark>")
	assert.Contains(t, view.Snippets[1], "flood channel")
}

func TestQuickView_UnknownFile(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.QuickView(context.Background(), "nope.txt", "Halawa")

	require.Error(t, err)
	assert.Equal(t, seekerrors.ErrCodeFileNotFound, seekerrors.GetCode(err))
}

func TestQuickView_EmptyQuery(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.QuickView(context.Background(), "9001-02.txt", "  ")

	require.Error(t, err)
	assert.Equal(t, seekerrors.ErrCodeInvalidQuery, seekerrors.GetCode(err))
}

func TestQuickView_NoMatches(t *testing.T) {
	e, _ := newTestEngine(t)

	view, err := e.QuickView(context.Background(), "9001-02.txt", "volcano")

	require.NoError(t, err)
	assert.Empty(t, view.Snippets)
}
