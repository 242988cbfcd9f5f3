package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pa-prabumulih/sicantik-api/api"
	"github.com/pa-prabumulih/sicantik-api/archive"
	"github.com/pa-prabumulih/sicantik-api/config"
	"github.com/pa-prabumulih/sicantik-api/models"
)

// Minutasi exported for testing purposes
type Minutasi struct {
	Registry *archive.Registry
}

type archiveRequest struct {
	Storage models.StorageLocation `json:"storage"`
	PDFURL  string                 `json:"pdfUrl"`
}

// ArchiveCaseHandler marks a case as having completed minutasi. The storage
// location is mandatory; a document reference may ride along.
func (m Minutasi) ArchiveCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	record, err := m.Registry.Archive(ctx, cID, req.Storage, req.PDFURL)
	if err != nil {
		writeRegistryError("failed to archive case", w, err)
		return
	}

	b, err := json.Marshal(record)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ResetMinutasiHandler cancels an archival. The storage location and the PDF
// reference are discarded; the case record itself survives.
func (m Minutasi) ResetMinutasiHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	record, err := m.Registry.ResetMinutasi(ctx, cID)
	if err != nil {
		writeRegistryError("failed to reset minutasi", w, err)
		return
	}

	b, err := json.Marshal(record)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
