package db

import (
	"context"
	"database/sql"
	"time"

	"seam/internal/document"
	"seam/internal/errors"
)

// InsertSegment stores a new segment row.
func InsertSegment(ctx context.Context, q Querier, s *document.Segment) error {
	query := `
		INSERT INTO segments (id, document_id, mode, order_index, is_manual, title, content, start_char, end_char, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`
	_, err := q.ExecContext(ctx, query,
		s.ID, s.DocumentID, string(s.Mode), s.OrderIndex, boolToInt(s.Kind.IsManual()),
		s.Title, s.Content, s.Start, s.End, s.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("segment order position already occupied")
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetSegment retrieves a segment by ID.
func GetSegment(ctx context.Context, q Querier, id string, includeDeleted bool) (*document.Segment, error) {
	query := segmentSelect + ` WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	row := q.QueryRowContext(ctx, query, id)
	s, err := scanSegment(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("Segment", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return s, nil
}

// ListSegments returns live segments of a document in one mode, ordered by
// order_index. A non-positive limit disables pagination.
func ListSegments(ctx context.Context, q Querier, documentID string, mode document.Mode, limit, offset int) ([]*document.Segment, error) {
	query := segmentSelect + `
		WHERE document_id = ? AND mode = ? AND deleted_at IS NULL
		ORDER BY order_index ASC
	`
	args := []any{documentID, string(mode)}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()
	return collectSegments(rows)
}

// ListAllSegments returns live segments of a document across every mode,
// ordered by mode, order_index, id.
func ListAllSegments(ctx context.Context, q Querier, documentID string) ([]*document.Segment, error) {
	rows, err := q.QueryContext(ctx, segmentSelect+`
		WHERE document_id = ? AND deleted_at IS NULL
		ORDER BY mode ASC, order_index ASC, id ASC
	`, documentID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()
	return collectSegments(rows)
}

// CountSegments counts live segments of a document in one mode.
func CountSegments(ctx context.Context, q Querier, documentID string, mode document.Mode) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM segments WHERE document_id = ? AND mode = ? AND deleted_at IS NULL`,
		documentID, string(mode),
	).Scan(&n)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// SegmentationStat summarizes one mode's live segments for a document.
type SegmentationStat struct {
	Mode      document.Mode
	Count     int
	LastRunAt int64
}

// ListSegmentationStats returns per-mode counts and the newest segment
// creation time, for modes that have at least one live segment.
func ListSegmentationStats(ctx context.Context, q Querier, documentID string) ([]SegmentationStat, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT mode, COUNT(*), MAX(created_at)
		FROM segments
		WHERE document_id = ? AND deleted_at IS NULL
		GROUP BY mode
		ORDER BY mode ASC
	`, documentID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var stats []SegmentationStat
	for rows.Next() {
		var (
			mode string
			st   SegmentationStat
		)
		if err := rows.Scan(&mode, &st.Count, &st.LastRunAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		st.Mode = document.Mode(mode)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return stats, nil
}

// MaxOrderIndex returns the highest order_index among live segments of a
// document in one mode, or -1 if there are none.
func MaxOrderIndex(ctx context.Context, q Querier, documentID string, mode document.Mode) (int, error) {
	var max sql.NullInt64
	err := q.QueryRowContext(ctx,
		`SELECT MAX(order_index) FROM segments WHERE document_id = ? AND mode = ? AND deleted_at IS NULL`,
		documentID, string(mode),
	).Scan(&max)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// DeleteAutoSegments hard-deletes a document's auto segments in one mode,
// tombstoned ones included. Autos are derived data; reconciliation replaces
// them wholesale.
func DeleteAutoSegments(ctx context.Context, q Querier, documentID string, mode document.Mode) (int, error) {
	res, err := q.ExecContext(ctx,
		`DELETE FROM segments WHERE document_id = ? AND mode = ? AND is_manual = 0`,
		documentID, string(mode),
	)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// DeleteManualSegments hard-deletes a document's live manual segments in one
// mode. Used by the bulk delete op when include_manual is set.
func DeleteManualSegments(ctx context.Context, q Querier, documentID string, mode document.Mode) (int, error) {
	res, err := q.ExecContext(ctx,
		`DELETE FROM segments WHERE document_id = ? AND mode = ? AND is_manual = 1 AND deleted_at IS NULL`,
		documentID, string(mode),
	)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// ListManualSegments returns the live manual segments of a document in one
// mode, ordered by (order_index, id).
func ListManualSegments(ctx context.Context, q Querier, documentID string, mode document.Mode) ([]*document.Segment, error) {
	rows, err := q.QueryContext(ctx, segmentSelect+`
		WHERE document_id = ? AND mode = ? AND is_manual = 1 AND deleted_at IS NULL
		ORDER BY order_index ASC, id ASC
	`, documentID, string(mode))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()
	return collectSegments(rows)
}

// SetOrderIndex moves one segment to a new order_index.
func SetOrderIndex(ctx context.Context, q Querier, id string, orderIndex int) error {
	_, err := q.ExecContext(ctx,
		`UPDATE segments SET order_index = ? WHERE id = ?`,
		orderIndex, id,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("segment order position already occupied")
		}
		return errors.NewInternal(err)
	}
	return nil
}

// UpdateManualSegment overwrites the editable fields of a manual segment.
func UpdateManualSegment(ctx context.Context, q Querier, s *document.Segment) error {
	res, err := q.ExecContext(ctx, `
		UPDATE segments
		SET title = ?, content = ?, start_char = ?, end_char = ?
		WHERE id = ? AND is_manual = 1 AND deleted_at IS NULL
	`, s.Title, s.Content, s.Start, s.End, s.ID)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("Segment", s.ID)
	}
	return nil
}

// SoftDeleteSegment sets the tombstone. Returns false if already tombstoned.
func SoftDeleteSegment(ctx context.Context, q Querier, id string) (bool, error) {
	return setTombstone(ctx, q, "segments", id, time.Now().Unix())
}

// RestoreSegment clears the tombstone. Returns false if not tombstoned.
func RestoreSegment(ctx context.Context, q Querier, id string) (bool, error) {
	return clearTombstone(ctx, q, "segments", id)
}

// PurgeSegment permanently removes a segment, its links, and its folder
// memberships.
func PurgeSegment(ctx context.Context, q Querier, id string) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM segment_links WHERE from_segment_id = ? OR to_segment_id = ?`,
		id, id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM folder_items WHERE segment_id = ?`, id); err != nil {
		return errors.NewInternal(err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM segments WHERE id = ?`, id); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListDeletedSegments returns tombstoned segments, newest tombstone first.
// An empty documentID matches all documents.
func ListDeletedSegments(ctx context.Context, q Querier, documentID string) ([]*document.Segment, error) {
	query := segmentSelect + ` WHERE deleted_at IS NOT NULL`
	var args []any
	if documentID != "" {
		query += " AND document_id = ?"
		args = append(args, documentID)
	}
	query += " ORDER BY deleted_at DESC, id DESC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()
	return collectSegments(rows)
}

// ListExpiredSegmentIDs returns IDs of segments tombstoned before cutoff.
func ListExpiredSegmentIDs(ctx context.Context, q Querier, cutoff int64) ([]string, error) {
	return listExpiredIDs(ctx, q, "segments", cutoff)
}

// CountSegmentTombstones returns (deleted, expired) counts for segments.
func CountSegmentTombstones(ctx context.Context, q Querier, cutoff int64) (int, int, error) {
	return countTombstones(ctx, q, "segments", cutoff)
}

const segmentSelect = `
	SELECT id, document_id, mode, order_index, is_manual, title, content, start_char, end_char, created_at, deleted_at
	FROM segments
`

func collectSegments(rows *sql.Rows) ([]*document.Segment, error) {
	var segs []*document.Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		segs = append(segs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return segs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSegment(sc rowScanner) (*document.Segment, error) {
	var (
		s         document.Segment
		mode      string
		isManual  int
		deletedAt sql.NullInt64
	)
	err := sc.Scan(&s.ID, &s.DocumentID, &mode, &s.OrderIndex, &isManual,
		&s.Title, &s.Content, &s.Start, &s.End, &s.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	s.Mode = document.Mode(mode)
	s.Kind = document.KindFromManual(isManual == 1)
	if deletedAt.Valid {
		s.DeletedAt = &deletedAt.Int64
	}
	return &s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
