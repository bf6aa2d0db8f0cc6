package db

import (
	"context"
	"database/sql"

	"seam/internal/document"
	"seam/internal/errors"
)

// InsertLink stores a typed edge between two segments. A duplicate
// (from, to, type) triple returns CONFLICT.
func InsertLink(ctx context.Context, q Querier, l *document.Link) error {
	query := `
		INSERT INTO segment_links (id, from_segment_id, to_segment_id, link_type, notes, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		l.ID, l.FromSegmentID, l.ToSegmentID, string(l.LinkType),
		toNullString(l.Notes), l.CreatedBy, l.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("link already exists")
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetLink retrieves a link by ID.
func GetLink(ctx context.Context, q Querier, id string) (*document.Link, error) {
	row := q.QueryRowContext(ctx, linkSelect+` WHERE id = ?`, id)
	l, err := scanLink(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("Link", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return l, nil
}

// LinkDirection filters ListLinks by which side of the edge a segment is on.
type LinkDirection string

const (
	LinkOutgoing LinkDirection = "outgoing"
	LinkIncoming LinkDirection = "incoming"
	LinkBoth     LinkDirection = "both"
)

// ListLinks returns links touching a segment, oldest first.
func ListLinks(ctx context.Context, q Querier, segmentID string, dir LinkDirection) ([]*document.Link, error) {
	var (
		query string
		args  []any
	)
	switch dir {
	case LinkOutgoing:
		query = linkSelect + ` WHERE from_segment_id = ?`
		args = []any{segmentID}
	case LinkIncoming:
		query = linkSelect + ` WHERE to_segment_id = ?`
		args = []any{segmentID}
	default:
		query = linkSelect + ` WHERE from_segment_id = ? OR to_segment_id = ?`
		args = []any{segmentID, segmentID}
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var links []*document.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return links, nil
}

// DeleteLink removes a link. Returns NOT_FOUND if it does not exist.
func DeleteLink(ctx context.Context, q Querier, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM segment_links WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("Link", id)
	}
	return nil
}

const linkSelect = `
	SELECT id, from_segment_id, to_segment_id, link_type, notes, created_by, created_at
	FROM segment_links
`

func scanLink(sc rowScanner) (*document.Link, error) {
	var (
		l        document.Link
		linkType string
		notes    sql.NullString
	)
	err := sc.Scan(&l.ID, &l.FromSegmentID, &l.ToSegmentID, &linkType, &notes, &l.CreatedBy, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.LinkType = document.LinkType(linkType)
	l.Notes = fromNullString(notes)
	return &l, nil
}

func toNullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
