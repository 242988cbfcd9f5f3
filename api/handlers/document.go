package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pa-prabumulih/sicantik-api/api"
	"github.com/pa-prabumulih/sicantik-api/archive"
	"github.com/pa-prabumulih/sicantik-api/config"
)

const maxUploadBytes = 32 << 20

// Document handles the scanned PDF attached to a case record
type Document struct {
	Registry *archive.Registry
}

// UploadDocumentHandler uploads a scanned PDF to cloudinary and stores the
// returned URL on the case. Admins may instead supply an external link
// directly through the case update endpoint; this path is for raw scans.
func (d Document) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		config.ErrorStatus("failed to parse upload", http.StatusBadRequest, w, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("missing file field", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !strings.EqualFold(ct, "application/pdf") {
		config.ErrorStatus("only PDF uploads are accepted", http.StatusUnsupportedMediaType, w, fmt.Errorf("got %q", ct))
		return
	}

	cld, err := cloudinary.NewFromParams(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"),
	)
	if err != nil {
		config.ErrorStatus("cloudinary not configured", http.StatusInternalServerError, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	uploadResp, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     caseID,
		Folder:       "sicantik/cases",
		ResourceType: "raw",
	})
	if err != nil {
		config.ErrorStatus("failed to upload document", http.StatusBadGateway, w, err)
		return
	}

	zap.S().Infow("case document uploaded",
		"caseID", caseID,
		"bytes", header.Size,
	)

	record, err := d.Registry.AttachDocument(ctx, cID, uploadResp.SecureURL)
	if err != nil {
		writeRegistryError("failed to attach document", w, err)
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

// GenerateSignature generates a signature for direct-to-cloudinary uploads
func (d Document) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// documentLinkTTL bounds how long a shared view link stays valid
const documentLinkTTL = 15 * time.Minute

// CreateDocumentLinkHandler issues a short-lived signed link so the scanned
// PDF can be viewed without an admin session, e.g. from the front desk.
func (d Document) CreateDocumentLinkHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	record, ok := d.Registry.Get(cID)
	if !ok {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, &archive.NotFoundError{ID: caseID})
		return
	}
	if record.Details.PDFURL == "" {
		config.ErrorStatus("case has no document", http.StatusNotFound, w, fmt.Errorf("case %s", caseID))
		return
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		config.ErrorStatus("server misconfigured", http.StatusInternalServerError, w, fmt.Errorf("JWT_SECRET not set"))
		return
	}

	claims := jwt.MapClaims{
		"sub": record.ID.Hex(),
		"typ": "doc-view",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(documentLinkTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		config.ErrorStatus("token generation failed", http.StatusInternalServerError, w, err)
		return
	}

	url := fmt.Sprintf("%s/api/v1/documents/view?token=%s", os.Getenv("BASE_URL"), signed)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"url":       url,
		"expiresIn": documentLinkTTL.String(),
	})
}

// ViewDocumentHandler verifies a signed view link and redirects to the
// stored document URL.
func (d Document) ViewDocumentHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		config.ErrorStatus("missing token", http.StatusBadRequest, w, fmt.Errorf("token query param required"))
		return
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		config.ErrorStatus("invalid or expired link", http.StatusUnauthorized, w, err)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != "doc-view" {
		config.ErrorStatus("invalid link", http.StatusUnauthorized, w, fmt.Errorf("wrong token type"))
		return
	}

	caseID, _ := claims["sub"].(string)
	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("invalid link subject", http.StatusUnauthorized, w, err)
		return
	}

	record, ok := d.Registry.Get(cID)
	if !ok || record.Details.PDFURL == "" {
		config.ErrorStatus("document no longer available", http.StatusNotFound, w, &archive.NotFoundError{ID: caseID})
		return
	}

	http.Redirect(w, r, record.Details.PDFURL, http.StatusFound)
}
