package search

import (
	"context"
	"sort"
	"strings"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
	"github.com/reportseek/reportseek/internal/scorer"
	"github.com/reportseek/reportseek/internal/snippet"
)

// FileView is a per-file snippet listing for one query.
type FileView struct {
	Filename string   `json:"filename"`
	Snippets []string `json:"snippets"`
}

// maxViewSnippets caps the sentences returned by a quick view.
const maxViewSnippets = 10

// QuickView returns the sentences of a single document that match the
// query's terms, ordered by total term hits. Unlike Search it looks at
// one named file and returns every matching sentence up to the cap,
// not a trimmed snippet.
func (e *Engine) QuickView(ctx context.Context, filename, rawQuery string) (*FileView, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, seekerrors.InvalidQuery("query is empty")
	}

	doc, err := e.store.Get(ctx, filename)
	if err != nil {
		return nil, err
	}

	terms := e.termsFor(Request{Query: rawQuery})
	view := &FileView{Filename: filename, Snippets: []string{}}
	if len(terms) == 0 {
		return view, nil
	}

	type hitSentence struct {
		text string
		hits int
	}
	var matched []hitSentence
	for _, sentence := range strings.Split(doc.Content, ".") {
		trimmed := strings.TrimSpace(sentence)
		if trimmed == "" {
			continue
		}
		if hits := scorer.CountAll(trimmed, terms); hits > 0 {
			matched = append(matched, hitSentence{text: trimmed, hits: hits})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].hits > matched[j].hits
	})
	if len(matched) > maxViewSnippets {
		matched = matched[:maxViewSnippets]
	}

	for _, m := range matched {
		text := m.text
		for _, t := range terms {
			text = snippet.Highlight(text, t)
		}
		view.Snippets = append(view.Snippets, text)
	}
	return view, nil
}
