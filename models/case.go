package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CaseType distinguishes the two registers kept by the court
type CaseType string

const (
	// CaseTypeGugatan is a contentious civil case (lawsuit between opposing parties)
	CaseTypeGugatan CaseType = "Gugatan"
	// CaseTypePermohonan is a non-contentious petition (single petitioner)
	CaseTypePermohonan CaseType = "Permohonan"
)

// TypeCode returns the register code used inside the case number
func (t CaseType) TypeCode() string {
	if t == CaseTypePermohonan {
		return "Pdt.P"
	}
	return "Pdt.G"
}

// Valid reports whether t is one of the two known case types
func (t CaseType) Valid() bool {
	return t == CaseTypeGugatan || t == CaseTypePermohonan
}

// StorageLocation records where the physical file sits after minutasi
type StorageLocation struct {
	RoomNo  string `json:"roomNo" bson:"roomNo"`
	ShelfNo string `json:"shelfNo" bson:"shelfNo"`
	LevelNo string `json:"levelNo" bson:"levelNo"`
	BoxNo   string `json:"boxNo" bson:"boxNo"`
}

// Empty reports whether no part of the location has been filled in
func (s StorageLocation) Empty() bool {
	return strings.TrimSpace(s.RoomNo) == "" &&
		strings.TrimSpace(s.ShelfNo) == "" &&
		strings.TrimSpace(s.LevelNo) == "" &&
		strings.TrimSpace(s.BoxNo) == ""
}

// Case holds the structure for the cases collection in mongo
type Case struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CaseDetails        `json:"case" bson:"case"`
}

// CaseDetails holds the inner case record details
type CaseDetails struct {
	CaseNumber     string             `json:"caseNumber" bson:"caseNumber"`
	CaseType       CaseType           `json:"caseType" bson:"caseType"`
	Classification string             `json:"classification" bson:"classification"`
	Parties        string             `json:"parties" bson:"parties"`
	DecisionDate   string             `json:"decisionDate" bson:"decisionDate"`
	BHTDate        string             `json:"bhtDate,omitempty" bson:"bhtDate,omitempty"`
	IsArchived     bool               `json:"isArchived" bson:"isArchived"`
	Storage        *StorageLocation   `json:"storage,omitempty" bson:"storage,omitempty"`
	PDFURL         string             `json:"pdfUrl,omitempty" bson:"pdfUrl,omitempty"`
	CreatedAt      primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt      primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// CaseDraft is the submission payload for create and update. All fields are
// optional at the type level; BuildCase validates and converts to a full
// record. Year is only consulted when CaseNumber still needs canonicalizing.
type CaseDraft struct {
	CaseNumber     string           `json:"caseNumber"`
	CaseType       CaseType         `json:"caseType"`
	Year           string           `json:"year"`
	Classification string           `json:"classification"`
	Parties        string           `json:"parties"`
	DecisionDate   string           `json:"decisionDate"`
	BHTDate        string           `json:"bhtDate"`
	IsArchived     bool             `json:"isArchived"`
	Storage        *StorageLocation `json:"storage"`
	PDFURL         string           `json:"pdfUrl"`
}

// SearchQuery is the front-desk lookup input: a case number (possibly just
// the sequence portion), the register it belongs to and the decision year.
type SearchQuery struct {
	CaseNumber string   `json:"caseNumber"`
	CaseType   CaseType `json:"caseType"`
	Year       string   `json:"year"`
}
