package ops

import (
	"context"
	"database/sql"

	"seam/internal/config"
	"seam/internal/db"
)

// ListVersionsInput contains parameters for the ListVersions operation.
type ListVersionsInput struct {
	DocumentID string // required
}

// VersionEntry is one row of a document's version history.
type VersionEntry struct {
	Version   int    `json:"version"`
	Title     string `json:"title"`
	TextChars int    `json:"text_chars"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
}

// ListVersionsOutput contains the result of the ListVersions operation.
type ListVersionsOutput struct {
	Versions []VersionEntry `json:"versions"`
}

// ListVersions returns a document's version history newest first, ending
// with the virtual version 0 entry for the immutable originals. In legacy
// mode only version 0 is reported.
func ListVersions(ctx context.Context, database *sql.DB, cfg *config.Config, input ListVersionsInput) (*ListVersionsOutput, error) {
	d, err := requireDocument(ctx, database, input.DocumentID)
	if err != nil {
		return nil, err
	}

	var entries []VersionEntry
	if !cfg.LegacyVersioning {
		versions, err := db.ListVersions(ctx, database, d.ID)
		if err != nil {
			return nil, err
		}
		for _, v := range versions {
			entries = append(entries, VersionEntry{
				Version:   v.VersionNumber,
				Title:     v.Title,
				TextChars: len(v.Text),
				CreatedBy: v.CreatedBy,
				CreatedAt: v.CreatedAt,
			})
		}
	}

	entries = append(entries, VersionEntry{
		Version:   0,
		Title:     d.OriginalTitle,
		TextChars: len(d.OriginalText),
		CreatedBy: d.OwnerID,
		CreatedAt: d.CreatedAt,
	})
	return &ListVersionsOutput{Versions: entries}, nil
}
