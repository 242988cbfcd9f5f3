package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pa-prabumulih/sicantik-api/api/handlers"
	"github.com/pa-prabumulih/sicantik-api/archive"
	"github.com/pa-prabumulih/sicantik-api/models"
)

func newRegistry(t *testing.T) *archive.Registry {
	t.Helper()
	store := archive.NewFileStore(filepath.Join(t.TempDir(), "cases.json"))
	r, err := archive.NewRegistry(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func seedCase(t *testing.T, r *archive.Registry, number string, caseType models.CaseType) models.Case {
	t.Helper()
	c, err := r.Create(context.Background(), models.CaseDetails{
		CaseNumber:     number,
		CaseType:       caseType,
		Classification: "Cerai Gugat",
		Parties:        "Siti binti Ahmad vs Budi bin Salim",
		DecisionDate:   "2024-01-15",
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCase_CaseListHandler(t *testing.T) {
	registry := newRegistry(t)
	seedCase(t, registry, "1/Pdt.G/2024/PA.Pbm", models.CaseTypeGugatan)
	seedCase(t, registry, "2/Pdt.P/2024/PA.Pbm", models.CaseTypePermohonan)

	c := handlers.Case{Registry: registry}

	req, err := http.NewRequest("GET", "/api/v1/cases", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CaseListHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Cases  []models.Case  `json:"cases"`
		Counts archive.Counts `json:"counts"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Cases, 1)
	assert.Equal(t, "1/Pdt.G/2024/PA.Pbm", resp.Cases[0].Details.CaseNumber)
	assert.Equal(t, archive.Counts{Gugatan: 1, Permohonan: 1}, resp.Counts)
}

func TestCase_CaseListHandlerSearchTerm(t *testing.T) {
	registry := newRegistry(t)
	seedCase(t, registry, "1/Pdt.G/2024/PA.Pbm", models.CaseTypeGugatan)
	seedCase(t, registry, "3/Pdt.G/2024/PA.Pbm", models.CaseTypeGugatan)

	c := handlers.Case{Registry: registry}

	req, err := http.NewRequest("GET", "/api/v1/cases?type=Gugatan&search=3/pdt.g", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CaseListHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Cases []models.Case `json:"cases"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Cases, 1)
	assert.Equal(t, "3/Pdt.G/2024/PA.Pbm", resp.Cases[0].Details.CaseNumber)
}

func TestCase_CaseListHandlerUnknownType(t *testing.T) {
	c := handlers.Case{Registry: newRegistry(t)}

	req, err := http.NewRequest("GET", "/api/v1/cases?type=Pidana", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CaseListHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCase_CaseByIDHandler(t *testing.T) {
	registry := newRegistry(t)
	seeded := seedCase(t, registry, "1/Pdt.G/2024/PA.Pbm", models.CaseTypeGugatan)

	c := handlers.Case{Registry: registry}

	req, err := http.NewRequest("GET", "/api/v1/case/"+seeded.ID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": seeded.ID.Hex()})

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CaseByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.Case
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, seeded.ID, got.ID)
}

func TestCase_CaseByIDHandlerBadHex(t *testing.T) {
	c := handlers.Case{Registry: newRegistry(t)}

	req, err := http.NewRequest("GET", "/api/v1/case/asdf", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "asdf"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CaseByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCase_CaseByIDHandlerNotFound(t *testing.T) {
	c := handlers.Case{Registry: newRegistry(t)}

	unknown := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("GET", "/api/v1/case/"+unknown, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": unknown})

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CaseByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCase_CreateCaseHandler(t *testing.T) {
	registry := newRegistry(t)
	c := handlers.Case{Registry: registry}

	body, _ := json.Marshal(models.CaseDraft{
		CaseNumber:     "45",
		CaseType:       models.CaseTypePermohonan,
		Year:           "2024",
		Classification: "Dispensasi Kawin",
		Parties:        "Ahmad bin Yusuf",
		DecisionDate:   "2024-02-10",
	})

	req, err := http.NewRequest("POST", "/api/v1/case", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got models.Case
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "45/Pdt.P/2024/PA.Pbm", got.Details.CaseNumber)
	assert.Len(t, registry.List(), 1)
}

func TestCase_CreateCaseHandlerInvalidDraft(t *testing.T) {
	c := handlers.Case{Registry: newRegistry(t)}

	body, _ := json.Marshal(models.CaseDraft{CaseNumber: "45"})

	req, err := http.NewRequest("POST", "/api/v1/case", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCase_CreateCaseHandlerDuplicate(t *testing.T) {
	registry := newRegistry(t)
	seedCase(t, registry, "45/Pdt.P/2024/PA.Pbm", models.CaseTypePermohonan)

	c := handlers.Case{Registry: registry}

	body, _ := json.Marshal(models.CaseDraft{
		CaseNumber:     "45",
		CaseType:       models.CaseTypePermohonan,
		Year:           "2024",
		Classification: "Dispensasi Kawin",
		Parties:        "Ahmad bin Yusuf",
		DecisionDate:   "2024-02-10",
	})

	req, err := http.NewRequest("POST", "/api/v1/case", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Len(t, registry.List(), 1)
}

func TestCase_UpdateCaseHandlerNotFound(t *testing.T) {
	c := handlers.Case{Registry: newRegistry(t)}

	body, _ := json.Marshal(models.CaseDraft{
		CaseNumber:     "45",
		CaseType:       models.CaseTypePermohonan,
		Year:           "2024",
		Classification: "Dispensasi Kawin",
		Parties:        "Ahmad bin Yusuf",
		DecisionDate:   "2024-02-10",
	})

	unknown := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("PUT", "/api/v1/case/"+unknown, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": unknown})

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCase_DeleteCaseHandler(t *testing.T) {
	registry := newRegistry(t)
	seeded := seedCase(t, registry, "1/Pdt.G/2024/PA.Pbm", models.CaseTypeGugatan)

	c := handlers.Case{Registry: registry}

	req, err := http.NewRequest("DELETE", "/api/v1/case/"+seeded.ID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": seeded.ID.Hex()})

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DeleteCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"deleted": "`+seeded.ID.Hex()+`"}`, rr.Body.String())
	assert.Empty(t, registry.List())

	// deleting again is a no-op and still succeeds
	rr = httptest.NewRecorder()
	http.HandlerFunc(c.DeleteCaseHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
