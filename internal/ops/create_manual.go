package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"seam/internal/db"
	"seam/internal/document"
	"seam/internal/errors"
)

// CreateManualSegmentInput contains parameters for the CreateManualSegment
// operation.
type CreateManualSegmentInput struct {
	DocumentID string  // required
	Mode       string  // required
	Start      int     // required: byte offset into the original text
	End        int     // required
	Title      *string // default: "Manual #<order+1>"
	Content    *string // default: the [start:end) slice of the original text
}

// CreateManualSegmentOutput contains the result of the CreateManualSegment
// operation.
type CreateManualSegmentOutput struct {
	Segment SegmentView `json:"segment"`
}

// CreateManualSegment appends a user-curated segment at the end of the live
// order space for (document, mode). The span is validated against the
// original text and content defaults to that exact slice, so the new row
// carries verifiable provenance like any auto segment.
func CreateManualSegment(ctx context.Context, database *sql.DB, input CreateManualSegmentInput) (*CreateManualSegmentOutput, error) {
	mode, err := document.ParseMode(input.Mode)
	if err != nil {
		return nil, err
	}
	d, err := requireDocument(ctx, database, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := document.ValidateSpan(input.Start, input.End, len(d.OriginalText)); err != nil {
		return nil, err
	}

	unlock := lockMode(d.ID, mode)
	defer unlock()

	var out *CreateManualSegmentOutput
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		max, err := db.MaxOrderIndex(ctx, tx, d.ID, mode)
		if err != nil {
			return err
		}
		order := max + 1

		title := fmt.Sprintf("Manual #%d", order+1)
		if t := cleanOptionalString(input.Title); t != nil {
			title = *t
		}
		content := d.OriginalText[input.Start:input.End]
		if input.Content != nil {
			content = *input.Content
		}
		if strings.TrimSpace(content) == "" {
			return errors.NewInvalidRequest("content must not be empty")
		}

		id, err := generateULID()
		if err != nil {
			return errors.NewInternal(err)
		}
		s := &document.Segment{
			ID:         id,
			DocumentID: d.ID,
			Mode:       mode,
			OrderIndex: order,
			Kind:       document.KindManual,
			Title:      title,
			Content:    content,
			Start:      input.Start,
			End:        input.End,
			CreatedAt:  time.Now().Unix(),
		}
		if err := db.InsertSegment(ctx, tx, s); err != nil {
			return err
		}
		out = &CreateManualSegmentOutput{Segment: toSegmentView(s)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
