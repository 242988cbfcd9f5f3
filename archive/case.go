package archive

import (
	"strconv"
	"strings"
	"time"

	"github.com/pa-prabumulih/sicantik-api/models"
)

// ValidateDetails checks the model invariants of a complete case record.
func ValidateDetails(d models.CaseDetails) error {
	if strings.TrimSpace(d.CaseNumber) == "" {
		return &ValidationError{Field: "caseNumber", Reason: "is required"}
	}
	if !d.CaseType.Valid() {
		return &ValidationError{Field: "caseType", Reason: "must be Gugatan or Permohonan"}
	}
	if strings.TrimSpace(d.Classification) == "" {
		return &ValidationError{Field: "classification", Reason: "is required"}
	}
	if strings.TrimSpace(d.Parties) == "" {
		return &ValidationError{Field: "parties", Reason: "is required"}
	}
	if strings.TrimSpace(d.DecisionDate) == "" {
		return &ValidationError{Field: "decisionDate", Reason: "is required"}
	}
	if d.BHTDate != "" && d.CaseType == models.CaseTypePermohonan {
		return &ValidationError{Field: "bhtDate", Reason: "does not apply to Permohonan"}
	}
	if d.IsArchived && (d.Storage == nil || d.Storage.Empty()) {
		return &ValidationError{Field: "storage", Reason: "is required when the case is archived"}
	}
	if !d.IsArchived && d.Storage != nil {
		return &ValidationError{Field: "storage", Reason: "only applies to archived cases"}
	}
	return nil
}

// BuildCase converts a form draft into full case details: the case number is
// canonicalized, a BHT date submitted for a Permohonan is dropped (the form
// hides the field but stale drafts may still carry one), and the storage
// location is kept only for archived drafts. The result is validated before
// being returned.
func BuildCase(draft models.CaseDraft) (models.CaseDetails, error) {
	if strings.TrimSpace(draft.CaseNumber) == "" {
		return models.CaseDetails{}, &ValidationError{Field: "caseNumber", Reason: "is required"}
	}
	caseType := draft.CaseType
	if caseType == "" {
		caseType = models.CaseTypeGugatan
	}
	year := strings.TrimSpace(draft.Year)
	if year == "" {
		year = strconv.Itoa(time.Now().Year())
	}

	d := models.CaseDetails{
		CaseNumber:     FormatCaseNumber(draft.CaseNumber, caseType, year),
		CaseType:       caseType,
		Classification: strings.TrimSpace(draft.Classification),
		Parties:        strings.TrimSpace(draft.Parties),
		DecisionDate:   draft.DecisionDate,
		IsArchived:     draft.IsArchived,
		PDFURL:         draft.PDFURL,
	}
	if caseType == models.CaseTypeGugatan {
		d.BHTDate = draft.BHTDate
	}
	if draft.IsArchived {
		d.Storage = draft.Storage
	}
	if err := ValidateDetails(d); err != nil {
		return models.CaseDetails{}, err
	}
	return d, nil
}
