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

// CreateFolderInput contains parameters for the CreateFolder operation.
type CreateFolderInput struct {
	OwnerID    string // required
	DocumentID string // required
	Name       string // required
}

// FolderView is the JSON shape of a folder.
type FolderView struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	CreatedAt  int64  `json:"created_at"`
	DeletedAt  *int64 `json:"deleted_at,omitempty"`
}

// CreateFolderOutput contains the result of the CreateFolder operation.
type CreateFolderOutput struct {
	Folder FolderView `json:"folder"`
}

// CreateFolder creates a curation folder scoped to one document.
func CreateFolder(ctx context.Context, database *sql.DB, input CreateFolderInput) (*CreateFolderOutput, error) {
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	input.Name = strings.TrimSpace(input.Name)
	if input.OwnerID == "" {
		return nil, errors.NewInvalidRequest("owner_id is required")
	}
	if input.Name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	d, err := requireDocument(ctx, database, input.DocumentID)
	if err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	f := &document.Folder{
		ID:         id,
		OwnerID:    input.OwnerID,
		DocumentID: d.ID,
		Name:       input.Name,
		CreatedAt:  time.Now().Unix(),
	}
	if err := db.InsertFolder(ctx, database, f); err != nil {
		return nil, err
	}
	return &CreateFolderOutput{Folder: toFolderView(f)}, nil
}

// ListFoldersInput contains parameters for the ListFolders operation.
type ListFoldersInput struct {
	DocumentID string // required
}

// FolderEntry is a folder with its item count.
type FolderEntry struct {
	FolderView
	ItemCount int `json:"item_count"`
}

// ListFoldersOutput contains the result of the ListFolders operation.
type ListFoldersOutput struct {
	Folders []FolderEntry `json:"folders"`
}

// ListFolders returns a document's live folders with item counts.
func ListFolders(ctx context.Context, database *sql.DB, input ListFoldersInput) (*ListFoldersOutput, error) {
	d, err := requireDocument(ctx, database, input.DocumentID)
	if err != nil {
		return nil, err
	}

	folders, err := db.ListFolders(ctx, database, d.ID)
	if err != nil {
		return nil, err
	}
	entries := make([]FolderEntry, 0, len(folders))
	for _, f := range folders {
		items, err := db.ListFolderItems(ctx, database, f.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, FolderEntry{FolderView: toFolderView(f), ItemCount: len(items)})
	}
	return &ListFoldersOutput{Folders: entries}, nil
}

// AddToFolderInput contains parameters for the AddToFolder operation.
type AddToFolderInput struct {
	FolderID  string // required
	SegmentID string // required
}

// AddToFolder places a live segment into a live folder. The segment must
// belong to the folder's document; a duplicate membership fails with
// CONFLICT.
func AddToFolder(ctx context.Context, database *sql.DB, input AddToFolderInput) error {
	input.FolderID = strings.TrimSpace(input.FolderID)
	input.SegmentID = strings.TrimSpace(input.SegmentID)
	if input.FolderID == "" || input.SegmentID == "" {
		return errors.NewInvalidRequest("folder_id and segment_id are required")
	}

	f, err := db.GetFolder(ctx, database, input.FolderID, false)
	if err != nil {
		return err
	}
	s, err := db.GetSegment(ctx, database, input.SegmentID, false)
	if err != nil {
		return err
	}
	if s.DocumentID != f.DocumentID {
		return errors.NewInvalidRequest("segment belongs to a different document than the folder")
	}

	id, err := generateULID()
	if err != nil {
		return errors.NewInternal(err)
	}
	return db.InsertFolderItem(ctx, database, &document.FolderItem{
		ID:        id,
		FolderID:  f.ID,
		SegmentID: s.ID,
		CreatedAt: time.Now().Unix(),
	})
}

// RemoveFromFolderInput contains parameters for the RemoveFromFolder
// operation.
type RemoveFromFolderInput struct {
	FolderID  string // required
	SegmentID string // required
}

// RemoveFromFolder removes a segment from a folder.
func RemoveFromFolder(ctx context.Context, database *sql.DB, input RemoveFromFolderInput) error {
	input.FolderID = strings.TrimSpace(input.FolderID)
	input.SegmentID = strings.TrimSpace(input.SegmentID)
	if input.FolderID == "" || input.SegmentID == "" {
		return errors.NewInvalidRequest("folder_id and segment_id are required")
	}
	if _, err := db.GetFolder(ctx, database, input.FolderID, false); err != nil {
		return err
	}
	return db.DeleteFolderItem(ctx, database, input.FolderID, input.SegmentID)
}

// ListFolderItemsInput contains parameters for the ListFolderItems
// operation.
type ListFolderItemsInput struct {
	FolderID string // required
}

// ListFolderItemsOutput contains the result of the ListFolderItems
// operation.
type ListFolderItemsOutput struct {
	Folder   FolderView    `json:"folder"`
	Segments []SegmentView `json:"segments"`
}

// ListFolderItems returns the segments collected in a folder, in insertion
// order. Tombstoned segments are skipped.
func ListFolderItems(ctx context.Context, database *sql.DB, input ListFolderItemsInput) (*ListFolderItemsOutput, error) {
	input.FolderID = strings.TrimSpace(input.FolderID)
	if input.FolderID == "" {
		return nil, errors.NewInvalidRequest("folder_id is required")
	}
	f, err := db.GetFolder(ctx, database, input.FolderID, false)
	if err != nil {
		return nil, err
	}

	items, err := db.ListFolderItems(ctx, database, f.ID)
	if err != nil {
		return nil, err
	}
	segs := make([]SegmentView, 0, len(items))
	for _, it := range items {
		s, err := db.GetSegment(ctx, database, it.SegmentID, false)
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		segs = append(segs, toSegmentView(s))
	}
	return &ListFolderItemsOutput{Folder: toFolderView(f), Segments: segs}, nil
}

func toFolderView(f *document.Folder) FolderView {
	return FolderView{
		ID:         f.ID,
		OwnerID:    f.OwnerID,
		DocumentID: f.DocumentID,
		Name:       f.Name,
		CreatedAt:  f.CreatedAt,
		DeletedAt:  f.DeletedAt,
	}
}
