package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_LocationOutranksGenericWords(t *testing.T) {
	// Given: a query mixing a gazetteer place name with generic nouns
	e := NewExtractor()

	// When: extracting terms
	terms := e.Extract("boring holes near Halawa")

	// Then: Halawa ranks above generic words like "holes"
	require.NotEmpty(t, terms)
	haIdx, holesIdx := -1, -1
	for i, term := range terms {
		switch term.Text {
		case "Halawa":
			haIdx = i
			assert.Equal(t, PriorityLocation, term.Priority)
		case "holes":
			holesIdx = i
			assert.Equal(t, PriorityWord, term.Priority)
		}
	}
	require.NotEqual(t, -1, haIdx, "Halawa must be extracted")
	require.NotEqual(t, -1, holesIdx, "holes must be extracted")
	assert.Less(t, haIdx, holesIdx)
}

func TestExtract_IdentifierRanksHighest(t *testing.T) {
	e := NewExtractor()

	terms := e.Extract("work order 8292-05 delays")

	require.NotEmpty(t, terms)
	assert.Equal(t, "8292-05", terms[0].Text)
	assert.Equal(t, PriorityIdentifier, terms[0].Priority)
}

func TestExtract_DomainPhrase(t *testing.T) {
	e := NewExtractor()

	terms := e.Extract("show the boring log for the site")

	var found bool
	for _, term := range terms {
		if term.Text == "boring log" {
			found = true
			assert.Equal(t, PriorityDomain, term.Priority)
		}
	}
	assert.True(t, found, "adjacent tokens matching a domain phrase are joined")
}

func TestExtract_EmptyQuery(t *testing.T) {
	e := NewExtractor()

	assert.Empty(t, e.Extract(""))
	assert.Empty(t, e.Extract("   \t\n"))
}

func TestExtract_Idempotent(t *testing.T) {
	e := NewExtractor()
	q := "groundwater levels near Kahului 7001-02"

	first := e.Extract(q)
	second := e.Extract(q)

	assert.Equal(t, first, second)
}

func TestExtract_DropsShortAndStopWords(t *testing.T) {
	e := NewExtractor()

	terms := e.Extract("what is the pH of it")

	for _, term := range terms {
		assert.NotEqual(t, "what", term.Text)
		assert.NotEqual(t, "the", term.Text)
		assert.NotEqual(t, "is", term.Text)
	}
}

func TestExtract_StableTieOrder(t *testing.T) {
	e := NewExtractor()

	terms := e.Extract("delays schedule budget")

	require.Len(t, terms, 3)
	assert.Equal(t, "delays", terms[0].Text)
	assert.Equal(t, "schedule", terms[1].Text)
	assert.Equal(t, "budget", terms[2].Text)
}

func TestExtractWithLogic_BooleanSequence(t *testing.T) {
	e := NewExtractor()

	seq := e.ExtractWithLogic("Halawa AND drilling")

	require.Len(t, seq, 3)
	assert.Equal(t, "Halawa", seq[0].Term.Text)
	assert.True(t, seq[1].IsConnective())
	assert.Equal(t, ConnectiveAnd, seq[1].Connective)
	assert.Equal(t, "drilling", seq[2].Term.Text)
}

func TestExtractWithLogic_CaseInsensitiveConnectives(t *testing.T) {
	e := NewExtractor()

	seq := e.ExtractWithLogic("Halawa and drilling or grading")

	require.Len(t, seq, 5)
	assert.Equal(t, ConnectiveAnd, seq[1].Connective)
	assert.Equal(t, ConnectiveOr, seq[3].Connective)
}

func TestExtractWithLogic_StripsLeadingTrailingConnectives(t *testing.T) {
	e := NewExtractor()

	seq := e.ExtractWithLogic("AND Halawa OR drilling OR")

	require.Len(t, seq, 3)
	assert.Equal(t, "Halawa", seq[0].Term.Text)
	assert.Equal(t, ConnectiveOr, seq[1].Connective)
	assert.Equal(t, "drilling", seq[2].Term.Text)
}

func TestExtractWithLogic_MultiWordSegmentBecomesPhrase(t *testing.T) {
	e := NewExtractor()

	seq := e.ExtractWithLogic("boring holes AND Halawa")

	require.Len(t, seq, 3)
	assert.Equal(t, "boring holes", seq[0].Term.Text)
	assert.Equal(t, PriorityPhrase, seq[0].Term.Priority)
	assert.Equal(t, "Halawa", seq[2].Term.Text)
}

func TestExtractWithLogic_OnlyConnectives(t *testing.T) {
	e := NewExtractor()

	assert.Empty(t, e.ExtractWithLogic("AND OR AND"))
	assert.Empty(t, e.ExtractWithLogic(""))
}

func TestExpandSynonyms(t *testing.T) {
	terms := []Term{{Text: "pto", Priority: PriorityWord}}

	out := ExpandSynonyms(terms, DefaultSynonyms)

	require.Greater(t, len(out), 1)
	assert.Equal(t, "pto", out[0].Text, "original terms keep their positions")

	var hasVacation bool
	for _, term := range out {
		if term.Text == "vacation" {
			hasVacation = true
		}
	}
	assert.True(t, hasVacation)
}

func TestExpandSynonyms_NoMatchUnchanged(t *testing.T) {
	terms := []Term{{Text: "groundwater", Priority: PriorityDomain}}

	out := ExpandSynonyms(terms, DefaultSynonyms)

	assert.Equal(t, terms, out)
}

func TestExpandSynonyms_Deterministic(t *testing.T) {
	terms := []Term{{Text: "sick", Priority: PriorityWord}, {Text: "holiday", Priority: PriorityWord}}

	first := ExpandSynonyms(terms, DefaultSynonyms)
	second := ExpandSynonyms(terms, DefaultSynonyms)

	assert.Equal(t, first, second)
}
