package ops

import (
	"context"
	"database/sql"
	"time"

	"seam/internal/db"
	"seam/internal/document"
	"seam/internal/errors"
)

// PatchSegmentInput contains parameters for the PatchSegment operation.
type PatchSegmentInput struct {
	SegmentID string  // required
	Title     *string // optional
	Content   *string // optional: explicit content override
	Start     *int    // optional, must come with End
	End       *int    // optional, must come with Start
}

// PatchSegmentOutput contains the result of the PatchSegment operation.
type PatchSegmentOutput struct {
	Segment SegmentView `json:"segment"`
	Forked  bool        `json:"forked"`
}

// PatchSegment edits a segment. Auto segments are immutable: patching one
// leaves the row untouched and forks the edit into a new manual row
// appended at the end of the live order space, so the derived row keeps
// witnessing what the segmenter produced. Manual segments are edited in
// place.
//
// When a new span is supplied (start and end together, validated against
// the original text) and no explicit content, content is recomputed from
// the span. Explicit content always wins.
func PatchSegment(ctx context.Context, database *sql.DB, input PatchSegmentInput) (*PatchSegmentOutput, error) {
	if (input.Start == nil) != (input.End == nil) {
		return nil, errors.NewInvalidRequest("start and end must be supplied together")
	}
	if input.Title == nil && input.Content == nil && input.Start == nil {
		return nil, errors.NewInvalidRequest("at least one of title, content, start/end is required")
	}

	s, err := db.GetSegment(ctx, database, input.SegmentID, false)
	if err != nil {
		return nil, err
	}
	d, err := db.GetDocument(ctx, database, s.DocumentID, false)
	if err != nil {
		return nil, err
	}
	if input.Start != nil {
		if err := document.ValidateSpan(*input.Start, *input.End, len(d.OriginalText)); err != nil {
			return nil, err
		}
	}

	unlock := lockMode(d.ID, s.Mode)
	defer unlock()

	var out *PatchSegmentOutput
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		title, content, start, end := s.Title, s.Content, s.Start, s.End
		if input.Title != nil {
			title = *input.Title
		}
		if input.Start != nil {
			start, end = *input.Start, *input.End
			content = d.OriginalText[start:end]
		}
		if input.Content != nil {
			content = *input.Content
		}

		if s.Kind == document.KindManual {
			s.Title, s.Content, s.Start, s.End = title, content, start, end
			if err := db.UpdateManualSegment(ctx, tx, s); err != nil {
				return err
			}
			out = &PatchSegmentOutput{Segment: toSegmentView(s)}
			return nil
		}

		// Auto row: fork into a new manual segment at the end.
		max, err := db.MaxOrderIndex(ctx, tx, d.ID, s.Mode)
		if err != nil {
			return err
		}
		id, err := generateULID()
		if err != nil {
			return errors.NewInternal(err)
		}
		fork := &document.Segment{
			ID:         id,
			DocumentID: d.ID,
			Mode:       s.Mode,
			OrderIndex: max + 1,
			Kind:       document.KindManual,
			Title:      title,
			Content:    content,
			Start:      start,
			End:        end,
			CreatedAt:  time.Now().Unix(),
		}
		if err := db.InsertSegment(ctx, tx, fork); err != nil {
			return err
		}
		out = &PatchSegmentOutput{Segment: toSegmentView(fork), Forked: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
