// Package query builds backend-specific search queries from extracted
// terms. User-supplied text never reaches the backend unescaped: LIKE
// predicates are parameterized and MATCH expressions are sanitized to
// a safe character set.
package query

import (
	"fmt"
	"strings"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
	"github.com/reportseek/reportseek/internal/keywords"
)

// Mode selects the backend query flavor.
type Mode int

const (
	// ModeMatch emits a native full-text MATCH expression.
	ModeMatch Mode = iota
	// ModeLike emits parameterized substring predicates.
	ModeLike
)

// Range restricts candidates to documents whose filename-derived
// leading numeric identifier falls within [Min, Max]. Documents whose
// filename has no parseable leading digits are excluded, intentionally.
type Range struct {
	Min int
	Max int
}

// BackendQuery is the store-specific representation of a search request.
type BackendQuery struct {
	Mode Mode

	// MatchExpr is the full-text expression (ModeMatch only).
	MatchExpr string

	// Where is the composed predicate with ? placeholders (ModeLike only).
	Where string

	// Params are the positional parameters for Where.
	Params []any

	// Terms are the query terms in rank order.
	Terms []string

	// Connectives join Terms pairwise in boolean mode; Connectives[i]
	// sits between Terms[i] and Terms[i+1]. Nil means ranked-OR.
	Connectives []string

	// Boost is the highest-ranked term, used as an ordering tiebreaker.
	Boost string

	// Range is the optional filename identifier filter.
	Range *Range
}

// Builder constructs backend queries for a fixed mode.
type Builder struct {
	mode Mode
}

// NewBuilder creates a Builder for the given mode.
func NewBuilder(mode Mode) *Builder {
	return &Builder{mode: mode}
}

// Build constructs a ranked-OR query: a disjunction of per-term
// predicates with the first (highest-ranked) term carried as a boost.
func (b *Builder) Build(terms []keywords.Term, rng *Range) (*BackendQuery, error) {
	if len(terms) == 0 {
		return nil, seekerrors.InvalidQuery("no search terms extracted from query")
	}
	if err := validateRange(rng); err != nil {
		return nil, err
	}

	q := &BackendQuery{
		Mode:  b.mode,
		Boost: terms[0].Text,
		Range: rng,
	}
	for _, t := range terms {
		q.Terms = append(q.Terms, t.Text)
	}

	switch b.mode {
	case ModeMatch:
		q.MatchExpr = matchExpression(q.Terms, nil)
		if q.MatchExpr == "" {
			return nil, seekerrors.InvalidQuery("no usable search terms after sanitization")
		}
	case ModeLike:
		clauses := make([]string, 0, len(q.Terms))
		for _, t := range q.Terms {
			clauses = append(clauses, likeClause)
			q.Params = append(q.Params, likeParam(t))
		}
		q.Where = strings.Join(clauses, " OR ")
		b.applyRange(q)
	}

	return q, nil
}

// BuildBoolean constructs a query from an explicit term/connective
// sequence. The sequence must strictly alternate term, connective,
// term; anything else is rejected before the store is touched.
func (b *Builder) BuildBoolean(seq []keywords.LogicElement, rng *Range) (*BackendQuery, error) {
	if len(seq) == 0 {
		return nil, seekerrors.InvalidQuery("no search terms extracted from query")
	}
	if err := validateSequence(seq); err != nil {
		return nil, err
	}
	if err := validateRange(rng); err != nil {
		return nil, err
	}

	q := &BackendQuery{
		Mode:  b.mode,
		Boost: seq[0].Term.Text,
		Range: rng,
	}

	var sb strings.Builder
	var connectives []string
	for _, el := range seq {
		if el.IsConnective() {
			connectives = append(connectives, string(el.Connective))
			continue
		}
		q.Terms = append(q.Terms, el.Term.Text)
	}
	q.Connectives = connectives

	switch b.mode {
	case ModeMatch:
		// A term that sanitizes to nothing cannot be dropped here:
		// removing it would silently rejoin its neighbors under the
		// wrong connective. Reject the sequence instead.
		for _, t := range q.Terms {
			if sanitizeFTSTerm(t) == "" {
				return nil, seekerrors.MalformedBoolean(
					fmt.Sprintf("term %q has no searchable characters", t))
			}
		}
		q.MatchExpr = matchExpression(q.Terms, connectives)
	case ModeLike:
		for i, t := range q.Terms {
			if i > 0 {
				sb.WriteString(" ")
				sb.WriteString(connectives[i-1])
				sb.WriteString(" ")
			}
			sb.WriteString(likeClause)
			q.Params = append(q.Params, likeParam(t))
		}
		q.Where = sb.String()
		b.applyRange(q)
	}

	return q, nil
}

// likeClause matches a term anywhere in the content, with \ as the
// escape character so user text cannot smuggle wildcards.
const likeClause = `content LIKE ? ESCAPE '\'`

// rangeClause restricts to filenames whose leading digit run, cast to
// an integer, falls in range. The GLOB guard excludes filenames with
// no leading digits.
const rangeClause = `filename GLOB '[0-9]*' AND CAST(filename AS INTEGER) BETWEEN ? AND ?`

// applyRange appends the filename identifier predicate in LIKE mode.
func (b *Builder) applyRange(q *BackendQuery) {
	if q.Range == nil {
		return
	}
	q.Where = fmt.Sprintf("(%s) AND %s", q.Where, rangeClause)
	q.Params = append(q.Params, q.Range.Min, q.Range.Max)
}

// likeParam wraps a term in wildcards, escaping LIKE metacharacters.
func likeParam(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}

// sanitizeFTSTerm strips everything outside the character set FTS5
// accepts bareword. Stripped characters become spaces so adjacent
// words stay separate tokens.
func sanitizeFTSTerm(term string) string {
	var sb strings.Builder
	for _, r := range term {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9',
			r == '_', r == '-', r == '.', r == '/':
			sb.WriteRune(r)
		default:
			sb.WriteRune(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}

// matchExpression joins sanitized terms into an FTS expression. When
// connectives is nil every gap is OR and empty-sanitizing terms are
// skipped; with connectives the caller has already rejected any term
// that sanitizes to nothing, so connectives[i-1] always joins terms
// i-1 and i. Phrases become quoted strings, single words get a prefix
// wildcard so "drill" also reaches "drilling".
func matchExpression(terms []string, connectives []string) string {
	var sb strings.Builder
	written := 0
	for i, t := range terms {
		safe := sanitizeFTSTerm(t)
		if safe == "" {
			continue
		}
		if written > 0 {
			join := "OR"
			if connectives != nil && i-1 < len(connectives) {
				join = connectives[i-1]
			}
			sb.WriteString(" " + join + " ")
		}
		if strings.Contains(safe, " ") {
			sb.WriteString(`"` + safe + `"`)
		} else {
			sb.WriteString(safe + "*")
		}
		written++
	}
	return sb.String()
}

// validateSequence enforces strict term/connective alternation.
func validateSequence(seq []keywords.LogicElement) error {
	if seq[0].IsConnective() {
		return seekerrors.MalformedBoolean("sequence starts with a connective")
	}
	if seq[len(seq)-1].IsConnective() {
		return seekerrors.MalformedBoolean("sequence ends with a connective")
	}
	for i := 1; i < len(seq); i++ {
		if seq[i].IsConnective() == seq[i-1].IsConnective() {
			return seekerrors.MalformedBoolean(
				fmt.Sprintf("sequence breaks term/connective alternation at position %d", i))
		}
	}
	return nil
}

// validateRange rejects inverted ranges before query construction.
func validateRange(rng *Range) error {
	if rng == nil {
		return nil
	}
	if rng.Min > rng.Max {
		return seekerrors.New(seekerrors.ErrCodeInvalidRange,
			fmt.Sprintf("range minimum %d exceeds maximum %d", rng.Min, rng.Max), nil)
	}
	return nil
}
