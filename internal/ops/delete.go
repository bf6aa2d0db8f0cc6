package ops

import (
	"context"
	"database/sql"
	"strings"

	"seam/internal/db"
	"seam/internal/errors"
)

// DeleteOutput is the shared result shape of soft-delete and restore
// operations. Changed is false when the call was an idempotent no-op.
type DeleteOutput struct {
	ID      string `json:"id"`
	Changed bool   `json:"changed"`
}

// DeleteDocument tombstones a document. Deleting an already-deleted
// document succeeds without effect.
func DeleteDocument(ctx context.Context, database *sql.DB, documentID string) (*DeleteOutput, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, errors.NewInvalidRequest("document_id is required")
	}
	if _, err := db.GetDocument(ctx, database, documentID, true); err != nil {
		return nil, err
	}
	changed, err := db.SoftDeleteDocument(ctx, database, documentID)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{ID: documentID, Changed: changed}, nil
}

// RestoreDocument clears a document's tombstone. Restoring a live document
// succeeds without effect.
func RestoreDocument(ctx context.Context, database *sql.DB, documentID string) (*DeleteOutput, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, errors.NewInvalidRequest("document_id is required")
	}
	if _, err := db.GetDocument(ctx, database, documentID, true); err != nil {
		return nil, err
	}
	changed, err := db.RestoreDocument(ctx, database, documentID)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{ID: documentID, Changed: changed}, nil
}

// DeleteSegment tombstones a segment, freeing its order position for
// future reconciles. Idempotent.
func DeleteSegment(ctx context.Context, database *sql.DB, segmentID string) (*DeleteOutput, error) {
	segmentID = strings.TrimSpace(segmentID)
	if segmentID == "" {
		return nil, errors.NewInvalidRequest("segment_id is required")
	}
	if _, err := db.GetSegment(ctx, database, segmentID, true); err != nil {
		return nil, err
	}
	changed, err := db.SoftDeleteSegment(ctx, database, segmentID)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{ID: segmentID, Changed: changed}, nil
}

// RestoreSegment clears a segment's tombstone. A live row may have claimed
// the old order position while the segment was tombstoned; the restored
// row then moves to the end of the order space instead of failing.
func RestoreSegment(ctx context.Context, database *sql.DB, segmentID string) (*DeleteOutput, error) {
	segmentID = strings.TrimSpace(segmentID)
	if segmentID == "" {
		return nil, errors.NewInvalidRequest("segment_id is required")
	}
	s, err := db.GetSegment(ctx, database, segmentID, true)
	if err != nil {
		return nil, err
	}
	if !s.Deleted() {
		return &DeleteOutput{ID: segmentID, Changed: false}, nil
	}

	unlock := lockMode(s.DocumentID, s.Mode)
	defer unlock()

	var changed bool
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		// Move to the end if the old position is taken.
		existing, err := db.ListSegments(ctx, tx, s.DocumentID, s.Mode, 0, 0)
		if err != nil {
			return err
		}
		taken := false
		maxOrder := -1
		for _, e := range existing {
			if e.OrderIndex == s.OrderIndex {
				taken = true
			}
			if e.OrderIndex > maxOrder {
				maxOrder = e.OrderIndex
			}
		}
		if taken {
			if err := db.SetOrderIndex(ctx, tx, s.ID, maxOrder+1); err != nil {
				return err
			}
		}
		changed, err = db.RestoreSegment(ctx, tx, s.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{ID: segmentID, Changed: changed}, nil
}

// DeleteFolder tombstones a folder. Idempotent.
func DeleteFolder(ctx context.Context, database *sql.DB, folderID string) (*DeleteOutput, error) {
	folderID = strings.TrimSpace(folderID)
	if folderID == "" {
		return nil, errors.NewInvalidRequest("folder_id is required")
	}
	if _, err := db.GetFolder(ctx, database, folderID, true); err != nil {
		return nil, err
	}
	changed, err := db.SoftDeleteFolder(ctx, database, folderID)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{ID: folderID, Changed: changed}, nil
}

// RestoreFolder clears a folder's tombstone. Idempotent.
func RestoreFolder(ctx context.Context, database *sql.DB, folderID string) (*DeleteOutput, error) {
	folderID = strings.TrimSpace(folderID)
	if folderID == "" {
		return nil, errors.NewInvalidRequest("folder_id is required")
	}
	if _, err := db.GetFolder(ctx, database, folderID, true); err != nil {
		return nil, err
	}
	changed, err := db.RestoreFolder(ctx, database, folderID)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{ID: folderID, Changed: changed}, nil
}
