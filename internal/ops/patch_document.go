package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"seam/internal/config"
	"seam/internal/db"
	"seam/internal/document"
	"seam/internal/errors"
)

// maxVersionRetries bounds re-allocation attempts after a version-number
// collision with a concurrent writer.
const maxVersionRetries = 3

// PatchDocumentInput contains parameters for the PatchDocument operation.
type PatchDocumentInput struct {
	DocumentID string  // required
	UserID     string  // required
	Title      *string // optional: new title
	Text       *string // optional: new text
}

// PatchDocumentOutput contains the result of the PatchDocument operation.
type PatchDocumentOutput struct {
	Version int  `json:"version"`
	NoOp    bool `json:"no_op"`
}

// PatchDocument appends a version to the document's ledger. The document's
// original columns are never touched: each patch resolves the current state
// (latest version, else originals), applies the payload on top, and writes
// the merged result as version max+1. A patch that changes nothing writes
// no row.
//
// In legacy mode there is no ledger; the patch overwrites the document
// columns in place and always reports version 0.
func PatchDocument(ctx context.Context, database *sql.DB, cfg *config.Config, input PatchDocumentInput) (*PatchDocumentOutput, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return nil, errors.NewInvalidRequest("user_id is required")
	}
	if input.Title == nil && input.Text == nil {
		return nil, errors.NewInvalidRequest("at least one of title or text is required")
	}

	d, err := requireDocument(ctx, database, input.DocumentID)
	if err != nil {
		return nil, err
	}

	if cfg.LegacyVersioning {
		return patchDocumentLegacy(ctx, database, d.ID, d.OriginalTitle, d.OriginalText, input)
	}

	var out *PatchDocumentOutput
	for attempt := 0; ; attempt++ {
		err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
			// Resolve current state inside the transaction so the no-op
			// check and the allocation see the same ledger.
			curTitle, curText := d.OriginalTitle, d.OriginalText
			max, err := db.MaxVersionNumber(ctx, tx, d.ID)
			if err != nil {
				return err
			}
			if max > 0 {
				latest, err := db.GetVersion(ctx, tx, d.ID, max)
				if err != nil {
					return err
				}
				curTitle, curText = latest.Title, latest.Text
			}

			newTitle, newText := curTitle, curText
			if input.Title != nil {
				newTitle = *input.Title
			}
			if input.Text != nil {
				newText = *input.Text
			}
			if newTitle == curTitle && newText == curText {
				out = &PatchDocumentOutput{Version: max, NoOp: true}
				return nil
			}

			id, err := generateULID()
			if err != nil {
				return errors.NewInternal(err)
			}
			v := &document.Version{
				ID:            id,
				DocumentID:    d.ID,
				VersionNumber: max + 1,
				Title:         newTitle,
				Text:          newText,
				CreatedBy:     input.UserID,
				CreatedAt:     time.Now().Unix(),
			}
			if err := db.InsertVersion(ctx, tx, v); err != nil {
				return err
			}
			out = &PatchDocumentOutput{Version: v.VersionNumber}
			return nil
		})
		if err == db.ErrVersionTaken && attempt < maxVersionRetries {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

func patchDocumentLegacy(ctx context.Context, database *sql.DB, id, curTitle, curText string, input PatchDocumentInput) (*PatchDocumentOutput, error) {
	newTitle, newText := curTitle, curText
	if input.Title != nil {
		newTitle = *input.Title
	}
	if input.Text != nil {
		newText = *input.Text
	}
	if newTitle == curTitle && newText == curText {
		return &PatchDocumentOutput{Version: 0, NoOp: true}, nil
	}
	if err := db.UpdateDocumentCore(ctx, database, id, newTitle, newText); err != nil {
		return nil, err
	}
	return &PatchDocumentOutput{Version: 0}, nil
}
