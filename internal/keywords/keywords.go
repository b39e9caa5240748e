// Package keywords turns free-text queries into ranked search terms.
//
// Terms carry an explicit priority class so downstream components can
// order predicates and boosts without re-deriving importance. Connective
// words (AND/OR) are recognized separately and preserved as structure,
// not fed through ranking.
package keywords

import (
	"regexp"
	"sort"
	"strings"
)

// Priority classifies a term's ranking tier. Higher values rank first.
type Priority int

const (
	// PriorityWord is a single generic word.
	PriorityWord Priority = iota
	// PriorityPhrase is a multi-word phrase.
	PriorityPhrase
	// PriorityDomain is a known domain-terminology match.
	PriorityDomain
	// PriorityLocation is a known place name.
	PriorityLocation
	// PriorityIdentifier is a work-order style identifier (digits-dash-digits).
	PriorityIdentifier
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch p {
	case PriorityIdentifier:
		return "identifier"
	case PriorityLocation:
		return "location"
	case PriorityDomain:
		return "domain"
	case PriorityPhrase:
		return "phrase"
	default:
		return "word"
	}
}

// Term is a single extracted search token or phrase.
type Term struct {
	Text     string
	Priority Priority
}

// Connective is a boolean operator linking terms.
type Connective string

const (
	ConnectiveAnd Connective = "AND"
	ConnectiveOr  Connective = "OR"
)

// LogicElement is one element of a boolean term sequence:
// either a term or a connective, never both.
type LogicElement struct {
	Term       Term
	Connective Connective
}

// IsConnective reports whether this element is a connective.
func (e LogicElement) IsConnective() bool {
	return e.Connective != ""
}

var (
	identifierRe = regexp.MustCompile(`^\d+-\d+$`)
	tokenRe      = regexp.MustCompile(`[A-Za-z0-9_%-]{2,}`)
)

// Extractor extracts and ranks search terms from raw queries.
type Extractor struct {
	locations map[string]struct{}
	domain    map[string]struct{}
	phrases   map[string]struct{}
	stopWords map[string]struct{}
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLocations replaces the place-name gazetteer.
func WithLocations(names []string) Option {
	return func(e *Extractor) {
		e.locations = toSet(names)
	}
}

// WithDomainTerms replaces the domain terminology lists.
// Multi-word entries are matched as phrases over adjacent tokens.
func WithDomainTerms(terms []string) Option {
	return func(e *Extractor) {
		e.domain = make(map[string]struct{})
		e.phrases = make(map[string]struct{})
		for _, t := range terms {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if strings.Contains(t, " ") {
				e.phrases[t] = struct{}{}
			} else {
				e.domain[t] = struct{}{}
			}
		}
	}
}

// NewExtractor creates an Extractor with the default gazetteer and
// domain terminology.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		locations: toSet(DefaultLocations),
		stopWords: toSet(defaultStopWords),
	}
	WithDomainTerms(DefaultDomainTerms)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns ranked terms for a free-text query.
//
// Ranking tiers, highest first: identifiers, locations, domain terms,
// multi-word phrases, generic words. Ties keep original order of
// appearance. Extraction is idempotent and an empty or whitespace-only
// query yields no terms.
func (e *Extractor) Extract(query string) []Term {
	tokens := tokenRe.FindAllString(query, -1)
	if len(tokens) == 0 {
		return nil
	}

	var terms []Term
	seen := make(map[string]struct{})

	add := func(text string, p Priority) {
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		terms = append(terms, Term{Text: text, Priority: p})
	}

	// Phrase pass first so "boring log" wins over its parts.
	for i := 0; i+1 < len(tokens); i++ {
		pair := strings.ToLower(tokens[i] + " " + tokens[i+1])
		if _, ok := e.phrases[pair]; ok {
			add(tokens[i]+" "+tokens[i+1], PriorityDomain)
		}
	}

	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		switch {
		case identifierRe.MatchString(tok):
			add(tok, PriorityIdentifier)
		case e.contains(e.locations, lower):
			add(tok, PriorityLocation)
		case e.contains(e.domain, lower):
			add(tok, PriorityDomain)
		case e.contains(e.stopWords, lower) || len(lower) <= 2:
			// dropped
		case strings.Contains(strings.Trim(tok, "-"), "-"):
			// hyphenated compound, e.g. "sub-surface"
			add(tok, PriorityPhrase)
		default:
			add(tok, PriorityWord)
		}
	}

	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].Priority > terms[j].Priority
	})
	return terms
}

// ExtractWithLogic splits the query on AND/OR connective words,
// preserving them as structure. Each segment between connectives
// becomes a single term (a phrase when multi-word). Leading and
// trailing connectives are stripped; interior malformations are
// left for the query builder to reject.
func (e *Extractor) ExtractWithLogic(query string) []LogicElement {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil
	}

	var elements []LogicElement
	var segment []string

	flush := func() {
		if len(segment) == 0 {
			return
		}
		text := strings.Join(segment, " ")
		segment = nil
		elements = append(elements, LogicElement{Term: e.classifySegment(text)})
	}

	for _, f := range fields {
		switch strings.ToUpper(f) {
		case string(ConnectiveAnd):
			flush()
			elements = append(elements, LogicElement{Connective: ConnectiveAnd})
		case string(ConnectiveOr):
			flush()
			elements = append(elements, LogicElement{Connective: ConnectiveOr})
		default:
			segment = append(segment, f)
		}
	}
	flush()

	return stripConnectives(elements)
}

// classifySegment assigns a priority to a whole boolean segment.
func (e *Extractor) classifySegment(text string) Term {
	lower := strings.ToLower(text)
	switch {
	case identifierRe.MatchString(text):
		return Term{Text: text, Priority: PriorityIdentifier}
	case e.contains(e.locations, lower):
		return Term{Text: text, Priority: PriorityLocation}
	case e.contains(e.domain, lower) || e.contains(e.phrases, lower):
		return Term{Text: text, Priority: PriorityDomain}
	case strings.Contains(text, " "):
		return Term{Text: text, Priority: PriorityPhrase}
	default:
		return Term{Text: text, Priority: PriorityWord}
	}
}

// stripConnectives drops leading and trailing connectives.
func stripConnectives(elements []LogicElement) []LogicElement {
	start := 0
	for start < len(elements) && elements[start].IsConnective() {
		start++
	}
	end := len(elements)
	for end > start && elements[end-1].IsConnective() {
		end--
	}
	if start >= end {
		return nil
	}
	return elements[start:end]
}

func (e *Extractor) contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[strings.ToLower(it)] = struct{}{}
	}
	return set
}
