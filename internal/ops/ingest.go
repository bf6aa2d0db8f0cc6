package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"seam/internal/db"
	"seam/internal/document"
	"seam/internal/errors"
)

// IngestInput contains parameters for the Ingest operation.
type IngestInput struct {
	OwnerID    string // required
	Title      string // default: "Untitled"
	Text       string // required
	SourceType string // default: "text"
}

// IngestOutput contains the result of the Ingest operation.
type IngestOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
}

// Ingest stores a new document. The title and text captured here are the
// document's immutable originals: segment offsets always resolve against
// them, whatever versions get layered on later.
func Ingest(ctx context.Context, database *sql.DB, input IngestInput) (*IngestOutput, error) {
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.OwnerID == "" {
		return nil, errors.NewInvalidRequest("owner_id is required")
	}
	if input.Text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Untitled"
	}
	sourceType := strings.TrimSpace(input.SourceType)
	if sourceType == "" {
		sourceType = "text"
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	d := &document.Document{
		ID:            id,
		OwnerID:       input.OwnerID,
		OriginalTitle: title,
		OriginalText:  input.Text,
		SourceType:    sourceType,
		CreatedAt:     time.Now().Unix(),
	}
	if err := db.InsertDocument(ctx, database, d); err != nil {
		return nil, err
	}

	return &IngestOutput{ID: id, Title: title, CreatedAt: d.CreatedAt}, nil
}

// ListDocumentsInput contains parameters for the ListDocuments operation.
type ListDocumentsInput struct {
	OwnerID string // required
}

// ListDocumentsOutput contains the result of the ListDocuments operation.
type ListDocumentsOutput struct {
	Documents []DocumentSummary `json:"documents"`
}

// DocumentSummary is the list-row shape of a document (no text body).
type DocumentSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	SourceType string `json:"source_type"`
	TextChars  int    `json:"text_chars"`
	CreatedAt  int64  `json:"created_at"`
}

// ListDocuments returns an owner's live documents, newest first.
func ListDocuments(ctx context.Context, database *sql.DB, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.OwnerID == "" {
		return nil, errors.NewInvalidRequest("owner_id is required")
	}

	docs, err := db.ListDocuments(ctx, database, input.OwnerID, false)
	if err != nil {
		return nil, err
	}

	summaries := make([]DocumentSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, DocumentSummary{
			ID:         d.ID,
			Title:      d.OriginalTitle,
			SourceType: d.SourceType,
			TextChars:  len(d.OriginalText),
			CreatedAt:  d.CreatedAt,
		})
	}
	return &ListDocumentsOutput{Documents: summaries}, nil
}
