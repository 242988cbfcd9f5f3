package archive

import (
	"strings"

	"github.com/pa-prabumulih/sicantik-api/models"
)

// SearchResult is the outcome of a front-desk lookup. A miss is a normal
// outcome, not an error: Found is false and CanonicalNumber carries the
// number the query resolved to, for the "not found" message.
type SearchResult struct {
	Case            models.Case
	CanonicalNumber string
	Found           bool
}

// Search resolves a partial query against a list of cases. The query number
// is canonicalized first, then matched case-insensitively against each
// record's case number; the first match wins. An empty query number never
// matches anything.
func Search(cases []models.Case, q models.SearchQuery) SearchResult {
	if strings.TrimSpace(q.CaseNumber) == "" {
		return SearchResult{}
	}
	canonical := FormatCaseNumber(q.CaseNumber, q.CaseType, q.Year)
	want := strings.ToLower(canonical)
	for _, c := range cases {
		if strings.ToLower(c.Details.CaseNumber) == want {
			return SearchResult{Case: c, CanonicalNumber: canonical, Found: true}
		}
	}
	return SearchResult{CanonicalNumber: canonical}
}

// Find runs Search over the registry's current snapshot.
func (r *Registry) Find(q models.SearchQuery) SearchResult {
	return Search(r.List(), q)
}
