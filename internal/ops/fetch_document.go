package ops

import (
	"context"
	"database/sql"

	"seam/internal/config"
	"seam/internal/db"
	"seam/internal/errors"
)

// FetchDocumentInput contains parameters for the FetchDocument operation.
type FetchDocumentInput struct {
	DocumentID string // required
	Version    *int   // nil: latest; 0: originals; N>0: exact version
}

// FetchDocumentOutput contains the result of the FetchDocument operation.
type FetchDocumentOutput struct {
	Document DocumentView `json:"document"`
}

// FetchDocument retrieves a document at a resolved version.
//
// Version semantics: nil resolves to the latest version row, falling back
// to the originals when no versions exist; 0 always resolves to the
// originals; N > 0 must match an existing version row or the call fails
// with NOT_FOUND. In legacy mode the version ledger is ignored entirely and
// the document columns are served as version 0.
func FetchDocument(ctx context.Context, database *sql.DB, cfg *config.Config, input FetchDocumentInput) (*FetchDocumentOutput, error) {
	d, err := requireDocument(ctx, database, input.DocumentID)
	if err != nil {
		return nil, err
	}

	view := DocumentView{
		ID:         d.ID,
		OwnerID:    d.OwnerID,
		Title:      d.OriginalTitle,
		Text:       d.OriginalText,
		SourceType: d.SourceType,
		Version:    0,
		CreatedAt:  d.CreatedAt,
	}

	if cfg.LegacyVersioning {
		return &FetchDocumentOutput{Document: view}, nil
	}

	switch {
	case input.Version == nil:
		latest, err := db.GetLatestVersion(ctx, database, d.ID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			view.Title = latest.Title
			view.Text = latest.Text
			view.Version = latest.VersionNumber
		}
	case *input.Version == 0:
		// Originals, already populated.
	case *input.Version > 0:
		v, err := db.GetVersion(ctx, database, d.ID, *input.Version)
		if err != nil {
			return nil, err
		}
		view.Title = v.Title
		view.Text = v.Text
		view.Version = v.VersionNumber
	default:
		return nil, errors.NewInvalidRequest("version must be >= 0")
	}

	return &FetchDocumentOutput{Document: view}, nil
}
