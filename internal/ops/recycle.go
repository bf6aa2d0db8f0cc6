package ops

import (
	"context"
	"database/sql"
	"strings"

	"seam/internal/db"
	"seam/internal/errors"
)

// previewRunes caps content previews in recycle-bin listings.
const previewRunes = 200

// ListDeletedInput contains parameters for the ListDeleted operation.
type ListDeletedInput struct {
	OwnerID    string // required for documents and folders
	DocumentID string // optional: restrict segments to one document
}

// DeletedDocument is a recycle-bin row for a document.
type DeletedDocument struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	DeletedAt int64  `json:"deleted_at"`
}

// DeletedSegment is a recycle-bin row for a segment.
type DeletedSegment struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Mode       string `json:"mode"`
	Title      string `json:"title"`
	Preview    string `json:"preview"`
	DeletedAt  int64  `json:"deleted_at"`
}

// DeletedFolder is a recycle-bin row for a folder.
type DeletedFolder struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	DeletedAt  int64  `json:"deleted_at"`
}

// ListDeletedOutput contains the result of the ListDeleted operation.
type ListDeletedOutput struct {
	Documents []DeletedDocument `json:"documents"`
	Segments  []DeletedSegment  `json:"segments"`
	Folders   []DeletedFolder   `json:"folders"`
}

// ListDeleted returns the recycle bin: tombstoned documents, segments, and
// folders, newest tombstone first. Segment content is truncated to a
// preview so huge segments do not bloat the listing.
func ListDeleted(ctx context.Context, database *sql.DB, input ListDeletedInput) (*ListDeletedOutput, error) {
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.OwnerID == "" {
		return nil, errors.NewInvalidRequest("owner_id is required")
	}

	out := &ListDeletedOutput{
		Documents: []DeletedDocument{},
		Segments:  []DeletedSegment{},
		Folders:   []DeletedFolder{},
	}

	docs, err := db.ListDeletedDocuments(ctx, database, input.OwnerID)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		out.Documents = append(out.Documents, DeletedDocument{
			ID:        d.ID,
			Title:     d.OriginalTitle,
			DeletedAt: *d.DeletedAt,
		})
	}

	segs, err := db.ListDeletedSegments(ctx, database, strings.TrimSpace(input.DocumentID))
	if err != nil {
		return nil, err
	}
	for _, s := range segs {
		out.Segments = append(out.Segments, DeletedSegment{
			ID:         s.ID,
			DocumentID: s.DocumentID,
			Mode:       string(s.Mode),
			Title:      s.Title,
			Preview:    truncateRunes(s.Content, previewRunes),
			DeletedAt:  *s.DeletedAt,
		})
	}

	folders, err := db.ListDeletedFolders(ctx, database, input.OwnerID)
	if err != nil {
		return nil, err
	}
	for _, f := range folders {
		out.Folders = append(out.Folders, DeletedFolder{
			ID:         f.ID,
			DocumentID: f.DocumentID,
			Name:       f.Name,
			DeletedAt:  *f.DeletedAt,
		})
	}

	return out, nil
}

// truncateRunes shortens s to at most n runes, appending an ellipsis when
// anything was cut.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
