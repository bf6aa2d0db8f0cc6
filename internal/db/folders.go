package db

import (
	"context"
	"database/sql"
	"time"

	"seam/internal/document"
	"seam/internal/errors"
)

// InsertFolder stores a new folder.
func InsertFolder(ctx context.Context, q Querier, f *document.Folder) error {
	query := `
		INSERT INTO folders (id, owner_id, document_id, name, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, NULL)
	`
	_, err := q.ExecContext(ctx, query, f.ID, f.OwnerID, f.DocumentID, f.Name, f.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetFolder retrieves a folder by ID.
func GetFolder(ctx context.Context, q Querier, id string, includeDeleted bool) (*document.Folder, error) {
	query := folderSelect + ` WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	row := q.QueryRowContext(ctx, query, id)
	f, err := scanFolder(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("Folder", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return f, nil
}

// ListFolders returns a document's live folders, oldest first.
func ListFolders(ctx context.Context, q Querier, documentID string) ([]*document.Folder, error) {
	rows, err := q.QueryContext(ctx, folderSelect+`
		WHERE document_id = ? AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC
	`, documentID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()
	return collectFolders(rows)
}

// InsertFolderItem adds a segment to a folder. A duplicate membership
// returns CONFLICT.
func InsertFolderItem(ctx context.Context, q Querier, it *document.FolderItem) error {
	query := `
		INSERT INTO folder_items (id, folder_id, segment_id, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query, it.ID, it.FolderID, it.SegmentID, it.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("segment already in folder")
		}
		return errors.NewInternal(err)
	}
	return nil
}

// ListFolderItems returns a folder's items, oldest first.
func ListFolderItems(ctx context.Context, q Querier, folderID string) ([]*document.FolderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, folder_id, segment_id, created_at
		FROM folder_items
		WHERE folder_id = ?
		ORDER BY created_at ASC, id ASC
	`, folderID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var items []*document.FolderItem
	for rows.Next() {
		var it document.FolderItem
		if err := rows.Scan(&it.ID, &it.FolderID, &it.SegmentID, &it.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// DeleteFolderItem removes a segment from a folder. Returns NOT_FOUND when
// the membership does not exist.
func DeleteFolderItem(ctx context.Context, q Querier, folderID, segmentID string) error {
	res, err := q.ExecContext(ctx,
		`DELETE FROM folder_items WHERE folder_id = ? AND segment_id = ?`,
		folderID, segmentID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("FolderItem", segmentID)
	}
	return nil
}

// SoftDeleteFolder sets the tombstone. Returns false if already tombstoned.
func SoftDeleteFolder(ctx context.Context, q Querier, id string) (bool, error) {
	return setTombstone(ctx, q, "folders", id, time.Now().Unix())
}

// RestoreFolder clears the tombstone. Returns false if not tombstoned.
func RestoreFolder(ctx context.Context, q Querier, id string) (bool, error) {
	return clearTombstone(ctx, q, "folders", id)
}

// PurgeFolder permanently removes a folder and its items.
func PurgeFolder(ctx context.Context, q Querier, id string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM folder_items WHERE folder_id = ?`, id); err != nil {
		return errors.NewInternal(err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListDeletedFolders returns tombstoned folders, newest tombstone first.
func ListDeletedFolders(ctx context.Context, q Querier, ownerID string) ([]*document.Folder, error) {
	rows, err := q.QueryContext(ctx, folderSelect+`
		WHERE owner_id = ? AND deleted_at IS NOT NULL
		ORDER BY deleted_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()
	return collectFolders(rows)
}

// ListExpiredFolderIDs returns IDs of folders tombstoned before cutoff.
func ListExpiredFolderIDs(ctx context.Context, q Querier, cutoff int64) ([]string, error) {
	return listExpiredIDs(ctx, q, "folders", cutoff)
}

// CountFolderTombstones returns (deleted, expired) counts for folders.
func CountFolderTombstones(ctx context.Context, q Querier, cutoff int64) (int, int, error) {
	return countTombstones(ctx, q, "folders", cutoff)
}

const folderSelect = `
	SELECT id, owner_id, document_id, name, created_at, deleted_at
	FROM folders
`

func collectFolders(rows *sql.Rows) ([]*document.Folder, error) {
	var folders []*document.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return folders, nil
}

func scanFolder(sc rowScanner) (*document.Folder, error) {
	var (
		f         document.Folder
		deletedAt sql.NullInt64
	)
	err := sc.Scan(&f.ID, &f.OwnerID, &f.DocumentID, &f.Name, &f.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		f.DeletedAt = &deletedAt.Int64
	}
	return &f, nil
}
