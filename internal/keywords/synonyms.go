package keywords

import "strings"

// SynonymGroup is a set of interchangeable query terms.
type SynonymGroup struct {
	Key  string
	Syns []string
}

// DefaultSynonyms expands common HR and report vocabulary so a query
// for "pto" also reaches documents that say "paid time off".
var DefaultSynonyms = []SynonymGroup{
	{Key: "pto", Syns: []string{"pto", "paid time off", "vacation", "leave", "time off"}},
	{Key: "bereavement", Syns: []string{"bereavement", "funeral", "death in family", "compassionate leave"}},
	{Key: "holiday", Syns: []string{"holiday", "holidays", "observed", "company holiday"}},
	{Key: "sick", Syns: []string{"sick", "illness", "medical leave"}},
}

// ExpandSynonyms returns terms plus synonyms of any matched group,
// appended after the originals in declaration order. Output order is
// deterministic and input terms keep their positions, so downstream
// ranking still treats the user's own words as highest priority.
func ExpandSynonyms(terms []Term, groups []SynonymGroup) []Term {
	if len(groups) == 0 {
		return terms
	}

	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		seen[strings.ToLower(t.Text)] = struct{}{}
	}

	out := append([]Term(nil), terms...)
	for _, g := range groups {
		if !groupMatches(g, seen) {
			continue
		}
		for _, s := range g.Syns {
			key := strings.ToLower(s)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			p := PriorityWord
			if strings.Contains(s, " ") {
				p = PriorityPhrase
			}
			out = append(out, Term{Text: s, Priority: p})
		}
	}
	return out
}

func groupMatches(g SynonymGroup, seen map[string]struct{}) bool {
	if _, ok := seen[strings.ToLower(g.Key)]; ok {
		return true
	}
	for _, s := range g.Syns {
		if _, ok := seen[strings.ToLower(s)]; ok {
			return true
		}
	}
	return false
}
