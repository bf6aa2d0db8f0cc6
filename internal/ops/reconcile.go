package ops

import (
	"context"
	"database/sql"
	"time"

	"seam/internal/config"
	"seam/internal/db"
	"seam/internal/document"
	"seam/internal/errors"
	"seam/internal/segmenter"
)

// manualStagingBase parks manual rows above any reachable auto order while
// a reconcile rearranges the live order space. The unique index on
// (document_id, mode, order_index) cannot be deferred, so the reassignment
// happens in two phases inside the transaction.
const manualStagingBase = 1 << 30

// ReconcileInput contains parameters for the Reconcile operation.
type ReconcileInput struct {
	DocumentID string // required
	Mode       string // required: qa | paragraphs
}

// ReconcileOutput contains the result of the Reconcile operation.
type ReconcileOutput struct {
	Mode         string `json:"mode"`
	AutoCount    int    `json:"auto_count"`
	ManualCount  int    `json:"manual_count"`
	ReplacedAuto int    `json:"replaced_auto"`
}

// Reconcile re-derives a document's auto segments for one mode while
// preserving its manual segments. All autos are deleted and regenerated
// from the ORIGINAL text; manual rows keep their content untouched and are
// reassigned to order positions after the fresh autos, preserving their
// relative order. Runs in one transaction, serialized per (document, mode).
//
// Idempotent: reconciling twice with no interleaved edits produces an
// identical auto set.
func Reconcile(ctx context.Context, database *sql.DB, cfg *config.Config, input ReconcileInput) (*ReconcileOutput, error) {
	mode, err := document.ParseMode(input.Mode)
	if err != nil {
		return nil, err
	}
	d, err := requireDocument(ctx, database, input.DocumentID)
	if err != nil {
		return nil, err
	}

	unlock := lockMode(d.ID, mode)
	defer unlock()

	var out *ReconcileOutput
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		manuals, err := db.ListManualSegments(ctx, tx, d.ID, mode)
		if err != nil {
			return err
		}

		replaced, err := db.DeleteAutoSegments(ctx, tx, d.ID, mode)
		if err != nil {
			return err
		}

		// Stage manuals out of the way so fresh autos can claim 0..k-1.
		for i, m := range manuals {
			if err := db.SetOrderIndex(ctx, tx, m.ID, manualStagingBase+i); err != nil {
				return err
			}
		}

		chunks := runSegmenter(mode, d.OriginalText, cfg.ParagraphMaxChars)
		now := time.Now().Unix()
		auto := 0
		for _, c := range chunks {
			if c.Content == "" {
				continue
			}
			start, end, err := clampChunkSpan(c, len(d.OriginalText))
			if err != nil {
				return err
			}
			id, err := generateULID()
			if err != nil {
				return errors.NewInternal(err)
			}
			s := &document.Segment{
				ID:         id,
				DocumentID: d.ID,
				Mode:       mode,
				OrderIndex: auto,
				Kind:       document.KindAuto,
				Title:      c.Title,
				Content:    c.Content,
				Start:      start,
				End:        end,
				CreatedAt:  now,
			}
			if err := db.InsertSegment(ctx, tx, s); err != nil {
				return err
			}
			auto++
		}

		for i, m := range manuals {
			if err := db.SetOrderIndex(ctx, tx, m.ID, auto+i); err != nil {
				return err
			}
		}

		out = &ReconcileOutput{
			Mode:         string(mode),
			AutoCount:    auto,
			ManualCount:  len(manuals),
			ReplacedAuto: replaced,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func runSegmenter(mode document.Mode, text string, maxChars int) []segmenter.Chunk {
	if maxChars < 1 {
		maxChars = segmenter.DefaultMaxChars
	}
	if mode == document.ModeQA {
		return segmenter.SegmentQA(text, maxChars)
	}
	return segmenter.SegmentParagraphs(text, maxChars)
}

// clampChunkSpan bounds a chunk's offsets to the text. Offsets the
// segmenter never set at all (end at or before start on non-empty content)
// are an invariant violation, not an input error.
func clampChunkSpan(c segmenter.Chunk, textLen int) (int, int, error) {
	start, end := c.Start, c.End
	if start < 0 {
		start = 0
	}
	if end > textLen {
		end = textLen
	}
	if end <= start {
		return 0, 0, errors.NewInvariantViolation("segmenter produced a chunk without usable offsets", map[string]any{
			"title": c.Title,
			"start": c.Start,
			"end":   c.End,
		})
	}
	return start, end, nil
}
