package archive

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pa-prabumulih/sicantik-api/models"
)

// Archive marks a case as having completed minutasi. A storage location is
// required at the same time; a scanned PDF reference may be attached in the
// same transition. Already-archived cases may be re-saved to correct the
// location or replace the document.
func (r *Registry) Archive(ctx context.Context, id primitive.ObjectID, storage models.StorageLocation, pdfURL string) (models.Case, error) {
	c, ok := r.Get(id)
	if !ok {
		return models.Case{}, &NotFoundError{ID: id.Hex()}
	}
	if storage.Empty() {
		return models.Case{}, &ValidationError{Field: "storage", Reason: "is required when the case is archived"}
	}

	details := c.Details
	details.IsArchived = true
	details.Storage = &storage
	if pdfURL != "" {
		details.PDFURL = pdfURL
	}
	return r.Update(ctx, id, details)
}

// ResetMinutasi cancels the archival of a case. The storage location and the
// PDF reference are cleared unconditionally; cancelling is a destructive
// reset of the archival data, not an archival of the previous location.
func (r *Registry) ResetMinutasi(ctx context.Context, id primitive.ObjectID) (models.Case, error) {
	c, ok := r.Get(id)
	if !ok {
		return models.Case{}, &NotFoundError{ID: id.Hex()}
	}

	details := c.Details
	details.IsArchived = false
	details.Storage = nil
	details.PDFURL = ""
	return r.Update(ctx, id, details)
}

// AttachDocument stores the scanned PDF reference on a case without touching
// its archival state.
func (r *Registry) AttachDocument(ctx context.Context, id primitive.ObjectID, pdfURL string) (models.Case, error) {
	c, ok := r.Get(id)
	if !ok {
		return models.Case{}, &NotFoundError{ID: id.Hex()}
	}

	details := c.Details
	details.PDFURL = pdfURL
	return r.Update(ctx, id, details)
}
