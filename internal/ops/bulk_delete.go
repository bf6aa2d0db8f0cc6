package ops

import (
	"context"
	"database/sql"
	"strings"

	"seam/internal/db"
	"seam/internal/document"
)

// DeleteSegmentsInput contains parameters for the DeleteSegments operation.
type DeleteSegmentsInput struct {
	DocumentID    string // required
	Mode          string // optional: restrict to one mode
	IncludeManual bool   // also remove manual segments
}

// DeleteSegmentsOutput contains the result of the DeleteSegments operation.
type DeleteSegmentsOutput struct {
	AutoDeleted   int `json:"auto_deleted"`
	ManualDeleted int `json:"manual_deleted"`
}

// DeleteSegments hard-deletes a document's auto segments, per mode or
// across all modes. Manual segments survive unless IncludeManual is set;
// they carry user work, autos are reproducible from the original text.
func DeleteSegments(ctx context.Context, database *sql.DB, input DeleteSegmentsInput) (*DeleteSegmentsOutput, error) {
	d, err := requireDocument(ctx, database, input.DocumentID)
	if err != nil {
		return nil, err
	}

	modes := document.Modes
	if strings.TrimSpace(input.Mode) != "" {
		mode, err := document.ParseMode(input.Mode)
		if err != nil {
			return nil, err
		}
		modes = []document.Mode{mode}
	}

	out := &DeleteSegmentsOutput{}
	for _, mode := range modes {
		unlock := lockMode(d.ID, mode)
		err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
			n, err := db.DeleteAutoSegments(ctx, tx, d.ID, mode)
			if err != nil {
				return err
			}
			out.AutoDeleted += n
			if input.IncludeManual {
				m, err := db.DeleteManualSegments(ctx, tx, d.ID, mode)
				if err != nil {
					return err
				}
				out.ManualDeleted += m
			}
			return nil
		})
		unlock()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListSegmentationsInput contains parameters for the ListSegmentations
// operation.
type ListSegmentationsInput struct {
	DocumentID string // required
}

// SegmentationEntry summarizes one mode's live segmentation of a document.
type SegmentationEntry struct {
	Mode      string `json:"mode"`
	Count     int    `json:"count"`
	LastRunAt int64  `json:"last_run_at"`
}

// ListSegmentationsOutput contains the result of the ListSegmentations
// operation.
type ListSegmentationsOutput struct {
	Segmentations []SegmentationEntry `json:"segmentations"`
}

// ListSegmentations reports which modes have live segments for a document,
// with counts and the newest segment creation time per mode.
func ListSegmentations(ctx context.Context, database *sql.DB, input ListSegmentationsInput) (*ListSegmentationsOutput, error) {
	d, err := requireDocument(ctx, database, input.DocumentID)
	if err != nil {
		return nil, err
	}

	stats, err := db.ListSegmentationStats(ctx, database, d.ID)
	if err != nil {
		return nil, err
	}
	entries := make([]SegmentationEntry, 0, len(stats))
	for _, st := range stats {
		entries = append(entries, SegmentationEntry{
			Mode:      string(st.Mode),
			Count:     st.Count,
			LastRunAt: st.LastRunAt,
		})
	}
	return &ListSegmentationsOutput{Segmentations: entries}, nil
}
