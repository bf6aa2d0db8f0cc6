package db

import (
	"context"
	"database/sql"
	"time"

	"seam/internal/document"
	"seam/internal/errors"
)

// InsertDocument stores a new document. The title and text written here are
// the document's immutable originals; no other query in this package updates
// those columns (UpdateDocumentCore exists only for legacy single-version
// stores).
func InsertDocument(ctx context.Context, q Querier, d *document.Document) error {
	query := `
		INSERT INTO documents (id, owner_id, title, text, source_type, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL)
	`
	_, err := q.ExecContext(ctx, query,
		d.ID, d.OwnerID, d.OriginalTitle, d.OriginalText, d.SourceType, d.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
// If includeDeleted is false, soft-deleted documents are excluded.
func GetDocument(ctx context.Context, q Querier, id string, includeDeleted bool) (*document.Document, error) {
	query := `
		SELECT id, owner_id, title, text, source_type, created_at, deleted_at
		FROM documents
		WHERE id = ?
	`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	row := q.QueryRowContext(ctx, query, id)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("Document", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return d, nil
}

// ListDocuments returns documents for an owner, newest first.
func ListDocuments(ctx context.Context, q Querier, ownerID string, includeDeleted bool) ([]*document.Document, error) {
	query := `
		SELECT id, owner_id, title, text, source_type, created_at, deleted_at
		FROM documents
		WHERE owner_id = ?
	`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var docs []*document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return docs, nil
}

// UpdateDocumentCore overwrites a document's title and text columns.
// Legacy single-version mode only: on versioned stores the originals are
// immutable and edits go through document_versions.
func UpdateDocumentCore(ctx context.Context, q Querier, id, title, text string) error {
	res, err := q.ExecContext(ctx,
		`UPDATE documents SET title = ?, text = ? WHERE id = ? AND deleted_at IS NULL`,
		title, text, id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("Document", id)
	}
	return nil
}

// SoftDeleteDocument sets the tombstone. Returns false if the document was
// already tombstoned (callers treat that as an idempotent no-op).
func SoftDeleteDocument(ctx context.Context, q Querier, id string) (bool, error) {
	return setTombstone(ctx, q, "documents", id, time.Now().Unix())
}

// RestoreDocument clears the tombstone. Returns false if the document was
// not tombstoned.
func RestoreDocument(ctx context.Context, q Querier, id string) (bool, error) {
	return clearTombstone(ctx, q, "documents", id)
}

// PurgeDocument permanently removes a document and everything derived from
// it: versions, segments, segment links, folders, and folder items.
func PurgeDocument(ctx context.Context, q Querier, id string) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM segment_links
		 WHERE from_segment_id IN (SELECT id FROM segments WHERE document_id = ?)
		    OR to_segment_id IN (SELECT id FROM segments WHERE document_id = ?)`,
		id, id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	cascade := []string{
		`DELETE FROM folder_items WHERE folder_id IN (SELECT id FROM folders WHERE document_id = ?)`,
		`DELETE FROM folders WHERE document_id = ?`,
		`DELETE FROM segments WHERE document_id = ?`,
		`DELETE FROM document_versions WHERE document_id = ?`,
		`DELETE FROM documents WHERE id = ?`,
	}
	for _, stmt := range cascade {
		if _, err := q.ExecContext(ctx, stmt, id); err != nil {
			return errors.NewInternal(err)
		}
	}
	return nil
}

// ListDeletedDocuments returns tombstoned documents for an owner, newest
// tombstone first.
func ListDeletedDocuments(ctx context.Context, q Querier, ownerID string) ([]*document.Document, error) {
	query := `
		SELECT id, owner_id, title, text, source_type, created_at, deleted_at
		FROM documents
		WHERE owner_id = ? AND deleted_at IS NOT NULL
		ORDER BY deleted_at DESC, id DESC
	`
	rows, err := q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var docs []*document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return docs, nil
}

// ListExpiredDocumentIDs returns IDs of documents tombstoned before cutoff.
func ListExpiredDocumentIDs(ctx context.Context, q Querier, cutoff int64) ([]string, error) {
	return listExpiredIDs(ctx, q, "documents", cutoff)
}

// CountDocumentTombstones returns (deleted, expired) counts for documents.
func CountDocumentTombstones(ctx context.Context, q Querier, cutoff int64) (int, int, error) {
	return countTombstones(ctx, q, "documents", cutoff)
}

// Tombstone helpers shared by the three tombstoned tables. Table names are
// compile-time constants at every call site, never user input.

func setTombstone(ctx context.Context, q Querier, table, id string, now int64) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE `+table+` SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, id,
	)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

func clearTombstone(ctx context.Context, q Querier, table, id string) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE `+table+` SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`,
		id,
	)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

func listExpiredIDs(ctx context.Context, q Querier, table string, cutoff int64) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE deleted_at IS NOT NULL AND deleted_at < ? ORDER BY deleted_at ASC`,
		cutoff,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewInternal(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return ids, nil
}

func countTombstones(ctx context.Context, q Querier, table string, cutoff int64) (int, int, error) {
	var deleted, expired int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN deleted_at < ? THEN 1 ELSE 0 END), 0)
		 FROM `+table+` WHERE deleted_at IS NOT NULL`,
		cutoff,
	).Scan(&deleted, &expired)
	if err != nil {
		return 0, 0, errors.NewInternal(err)
	}
	return deleted, expired, nil
}

func scanDocument(sc rowScanner) (*document.Document, error) {
	var (
		d         document.Document
		deletedAt sql.NullInt64
	)
	err := sc.Scan(&d.ID, &d.OwnerID, &d.OriginalTitle, &d.OriginalText, &d.SourceType, &d.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		d.DeletedAt = &deletedAt.Int64
	}
	return &d, nil
}
