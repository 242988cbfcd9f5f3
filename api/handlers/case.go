package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pa-prabumulih/sicantik-api/api"
	"github.com/pa-prabumulih/sicantik-api/archive"
	"github.com/pa-prabumulih/sicantik-api/config"
	"github.com/pa-prabumulih/sicantik-api/models"
)

// Case exported for testing purposes
type Case struct {
	Registry *archive.Registry
}

// CaseListHandler returns the admin list view: the register tab's cases
// filtered by the optional search term, plus the per-register counts.
func (c Case) CaseListHandler(w http.ResponseWriter, r *http.Request) {
	activeType := models.CaseType(r.URL.Query().Get("type"))
	if activeType == "" {
		activeType = models.CaseTypeGugatan
	}
	if !activeType.Valid() {
		config.ErrorStatus("unknown case type", http.StatusBadRequest, w, errors.New(string(activeType)))
		return
	}
	searchTerm := r.URL.Query().Get("search")

	all := c.Registry.List()
	resp := map[string]interface{}{
		"cases":  archive.Filter(all, activeType, searchTerm),
		"counts": archive.CountByType(all),
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CaseByIDHandler returns a single case record by ID
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	zap.S().Debugf("case_id: %v", caseID)

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	record, ok := c.Registry.Get(cID)
	if !ok {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, &archive.NotFoundError{ID: caseID})
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

// CreateCaseHandler registers a new case from an admin form submission
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var draft models.CaseDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	details, err := archive.BuildCase(draft)
	if err != nil {
		config.ErrorStatus("invalid case submission", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	record, err := c.Registry.Create(ctx, details)
	if err != nil {
		writeRegistryError("failed to create case", w, err)
		return
	}

	b, err := json.Marshal(record)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateCaseHandler replaces the mutable fields of an existing case
func (c Case) UpdateCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var draft models.CaseDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	details, err := archive.BuildCase(draft)
	if err != nil {
		config.ErrorStatus("invalid case submission", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	record, err := c.Registry.Update(ctx, cID, details)
	if err != nil {
		writeRegistryError("failed to update case", w, err)
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

// DeleteCaseHandler removes a case record. Deleting an unknown id succeeds:
// the registry treats delete as idempotent.
func (c Case) DeleteCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Registry.Delete(ctx, cID); err != nil {
		writeRegistryError("failed to delete case", w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"deleted": "` + caseID + `"}`))
}

// writeRegistryError maps the registry error taxonomy onto HTTP statuses
func writeRegistryError(message string, w http.ResponseWriter, err error) {
	var validationErr *archive.ValidationError
	var duplicateErr *archive.DuplicateCaseNumberError
	var notFoundErr *archive.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		config.ErrorStatus(message, http.StatusBadRequest, w, err)
	case errors.As(err, &duplicateErr):
		config.ErrorStatus(message, http.StatusConflict, w, err)
	case errors.As(err, &notFoundErr):
		config.ErrorStatus(message, http.StatusNotFound, w, err)
	default:
		config.ErrorStatus(message, http.StatusInternalServerError, w, err)
	}
}
