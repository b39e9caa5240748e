package ingest

import (
	"regexp"
	"time"
)

// datePatterns are tried in order; the first parseable match wins.
// Reports carry dates as numeric (04/10/1972) or month-name
// ("April 10, 1972", "Apr 10 1972") forms.
var datePatterns = []struct {
	re      *regexp.Regexp
	layouts []string
}{
	{
		re:      regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{4}`),
		layouts: []string{"1/2/2006", "1-2-2006"},
	},
	{
		re:      regexp.MustCompile(`[A-Za-z]+\s+\d{1,2},\s*\d{4}`),
		layouts: []string{"January 2, 2006", "Jan 2, 2006"},
	},
	{
		re:      regexp.MustCompile(`[A-Za-z]+\s+\d{1,2}\s+\d{4}`),
		layouts: []string{"January 2 2006", "Jan 2 2006"},
	},
}

// ExtractDate finds the first recognizable date in text and returns it
// as YYYY-MM-DD. Returns false when no date parses; an unparseable
// date is never fatal to ingestion.
func ExtractDate(text string) (string, bool) {
	for _, p := range datePatterns {
		for _, m := range p.re.FindAllString(text, 5) {
			for _, layout := range p.layouts {
				if ts, err := time.Parse(layout, m); err == nil {
					return ts.Format("2006-01-02"), true
				}
			}
		}
	}
	return "", false
}
