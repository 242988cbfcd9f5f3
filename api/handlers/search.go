package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pa-prabumulih/sicantik-api/archive"
	"github.com/pa-prabumulih/sicantik-api/config"
	"github.com/pa-prabumulih/sicantik-api/models"
)

// Search exported for testing purposes
type Search struct {
	Registry *archive.Registry
}

// notFoundMessage is the user-facing template for a lookup miss, carrying
// the canonicalized number the query resolved to.
const notFoundMessage = `Perkara nomor %s tidak ditemukan. Pastikan data sudah diinput di menu "Berkas Terinput".`

// LookupHandler resolves a front-desk query (number, type, year) to at most
// one case record. The number may be just the sequence portion or a full
// case number, including one read from a QR scan. A miss is a normal
// outcome and returns the canonicalized number for the not-found message.
func (s Search) LookupHandler(w http.ResponseWriter, r *http.Request) {
	query := models.SearchQuery{
		CaseNumber: r.URL.Query().Get("number"),
		CaseType:   models.CaseType(r.URL.Query().Get("type")),
		Year:       r.URL.Query().Get("year"),
	}
	if query.CaseType == "" {
		query.CaseType = models.CaseTypeGugatan
	}
	if query.Year == "" {
		query.Year = strconv.Itoa(time.Now().Year())
	}

	zap.S().Debugw("case lookup", "number", query.CaseNumber, "type", query.CaseType, "year", query.Year)

	result := s.Registry.Find(query)
	if !result.Found {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"caseNumber": result.CanonicalNumber,
			"message":    fmt.Sprintf(notFoundMessage, result.CanonicalNumber),
		})
		return
	}

	b, err := json.Marshal(result.Case)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
