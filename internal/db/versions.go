package db

import (
	"context"
	"database/sql"

	"seam/internal/document"
	"seam/internal/errors"
)

// ErrVersionTaken signals a (document_id, version_number) collision so the
// caller can re-read the max and retry the allocation.
var ErrVersionTaken = errors.NewConflict("version number already allocated")

// InsertVersion appends a version row. A unique collision on
// (document_id, version_number) returns ErrVersionTaken.
func InsertVersion(ctx context.Context, q Querier, v *document.Version) error {
	query := `
		INSERT INTO document_versions (id, document_id, version_number, title, text, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		v.ID, v.DocumentID, v.VersionNumber, v.Title, v.Text, v.CreatedBy, v.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrVersionTaken
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetVersion retrieves one version row by number.
func GetVersion(ctx context.Context, q Querier, documentID string, number int) (*document.Version, error) {
	row := q.QueryRowContext(ctx, versionSelect+`
		WHERE document_id = ? AND version_number = ?
	`, documentID, number)

	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("Version", documentID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return v, nil
}

// GetLatestVersion retrieves the highest-numbered version row, or nil if the
// document has no version rows.
func GetLatestVersion(ctx context.Context, q Querier, documentID string) (*document.Version, error) {
	row := q.QueryRowContext(ctx, versionSelect+`
		WHERE document_id = ?
		ORDER BY version_number DESC
		LIMIT 1
	`, documentID)

	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return v, nil
}

// MaxVersionNumber returns the highest version number for a document, or 0
// if none exist.
func MaxVersionNumber(ctx context.Context, q Querier, documentID string) (int, error) {
	var max sql.NullInt64
	err := q.QueryRowContext(ctx,
		`SELECT MAX(version_number) FROM document_versions WHERE document_id = ?`,
		documentID,
	).Scan(&max)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(max.Int64), nil
}

// ListVersions returns a document's version rows, newest first.
func ListVersions(ctx context.Context, q Querier, documentID string) ([]*document.Version, error) {
	rows, err := q.QueryContext(ctx, versionSelect+`
		WHERE document_id = ?
		ORDER BY version_number DESC
	`, documentID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var versions []*document.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return versions, nil
}

const versionSelect = `
	SELECT id, document_id, version_number, title, text, created_by, created_at
	FROM document_versions
`

func scanVersion(sc rowScanner) (*document.Version, error) {
	var v document.Version
	err := sc.Scan(&v.ID, &v.DocumentID, &v.VersionNumber, &v.Title, &v.Text, &v.CreatedBy, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
