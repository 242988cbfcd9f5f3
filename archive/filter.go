package archive

import (
	"strings"

	"github.com/pa-prabumulih/sicantik-api/models"
)

// Filter narrows the admin list view to one register tab and an optional
// search term. The term matches as a case-insensitive substring of the case
// number, the parties or the classification. Input ordering is preserved.
func Filter(cases []models.Case, activeType models.CaseType, searchTerm string) []models.Case {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	out := []models.Case{}
	for _, c := range cases {
		if c.Details.CaseType != activeType {
			continue
		}
		if term != "" && !matchesTerm(c.Details, term) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesTerm(d models.CaseDetails, term string) bool {
	return strings.Contains(strings.ToLower(d.CaseNumber), term) ||
		strings.Contains(strings.ToLower(d.Parties), term) ||
		strings.Contains(strings.ToLower(d.Classification), term)
}

// Counts holds the per-register totals shown on the list tabs
type Counts struct {
	Gugatan    int `json:"gugatan"`
	Permohonan int `json:"permohonan"`
}

// CountByType tallies cases per register, ignoring any search term.
func CountByType(cases []models.Case) Counts {
	var n Counts
	for _, c := range cases {
		switch c.Details.CaseType {
		case models.CaseTypeGugatan:
			n.Gugatan++
		case models.CaseTypePermohonan:
			n.Permohonan++
		}
	}
	return n
}
