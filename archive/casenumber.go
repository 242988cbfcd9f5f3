package archive

import (
	"fmt"
	"strings"

	"github.com/pa-prabumulih/sicantik-api/models"
)

// CourtSuffix is the registration suffix of Pengadilan Agama Prabumulih,
// the final segment of every case number issued by the court.
const CourtSuffix = "PA.Pbm"

// FormatCaseNumber builds the canonical case number from a partial input.
// Format: {sequence}/{Pdt.G|Pdt.P}/{year}/PA.Pbm
//
// Input that already contains a "/" separator is treated as canonical and
// returned unchanged, which both allows manual override of the full number
// and makes the function idempotent.
func FormatCaseNumber(partial string, caseType models.CaseType, year string) string {
	partial = strings.TrimSpace(partial)
	if strings.Contains(partial, "/") {
		return partial
	}
	return fmt.Sprintf("%s/%s/%s/%s", partial, caseType.TypeCode(), year, CourtSuffix)
}

// ParseSequence returns the sequence portion of a canonical case number, the
// text before the first "/". Used to pre-fill the edit form. A number without
// a separator is returned whole.
func ParseSequence(caseNumber string) string {
	if i := strings.Index(caseNumber, "/"); i >= 0 {
		return caseNumber[:i]
	}
	return caseNumber
}
