package ops

import (
	"context"
	"database/sql"
	"strings"

	"seam/internal/db"
	"seam/internal/document"
	"seam/internal/errors"
)

// ListSegmentsInput contains parameters for the ListSegments operation.
type ListSegmentsInput struct {
	DocumentID string // required
	Mode       string // optional: filter to one mode
	Page       int    // default 1
	PageSize   int    // default DefaultPageSize, max MaxPageSize
}

// ListSegmentsOutput contains the result of the ListSegments operation.
type ListSegmentsOutput struct {
	Segments   []SegmentView `json:"segments"`
	Pagination Pagination    `json:"pagination"`
}

// ListSegments returns a document's live segments ordered by
// (mode, order_index, id), optionally filtered to one mode, paged.
func ListSegments(ctx context.Context, database *sql.DB, input ListSegmentsInput) (*ListSegmentsOutput, error) {
	d, err := requireDocument(ctx, database, input.DocumentID)
	if err != nil {
		return nil, err
	}
	page, pageSize := normalizePage(input.Page, input.PageSize)

	var (
		segs  []*document.Segment
		total int
	)
	if strings.TrimSpace(input.Mode) != "" {
		mode, err := document.ParseMode(input.Mode)
		if err != nil {
			return nil, err
		}
		total, err = db.CountSegments(ctx, database, d.ID, mode)
		if err != nil {
			return nil, err
		}
		segs, err = db.ListSegments(ctx, database, d.ID, mode, pageSize, (page-1)*pageSize)
		if err != nil {
			return nil, err
		}
	} else {
		all, err := db.ListAllSegments(ctx, database, d.ID)
		if err != nil {
			return nil, err
		}
		total = len(all)
		segs = pageSlice(all, page, pageSize)
	}

	return &ListSegmentsOutput{
		Segments: toSegmentViews(segs),
		Pagination: Pagination{
			Page:     page,
			PageSize: pageSize,
			HasMore:  page*pageSize < total,
			Total:    total,
		},
	}, nil
}

func pageSlice(segs []*document.Segment, page, pageSize int) []*document.Segment {
	start := (page - 1) * pageSize
	if start >= len(segs) {
		return nil
	}
	end := start + pageSize
	if end > len(segs) {
		end = len(segs)
	}
	return segs[start:end]
}

// GetSegmentInput contains parameters for the GetSegment operation.
type GetSegmentInput struct {
	SegmentID      string // required
	IncludeDeleted bool
}

// GetSegmentOutput contains the result of the GetSegment operation.
type GetSegmentOutput struct {
	Segment SegmentView `json:"segment"`
}

// GetSegment retrieves one segment by ID. Tombstoned segments are only
// visible when IncludeDeleted is set.
func GetSegment(ctx context.Context, database *sql.DB, input GetSegmentInput) (*GetSegmentOutput, error) {
	input.SegmentID = strings.TrimSpace(input.SegmentID)
	if input.SegmentID == "" {
		return nil, errors.NewInvalidRequest("segment_id is required")
	}

	s, err := db.GetSegment(ctx, database, input.SegmentID, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	return &GetSegmentOutput{Segment: toSegmentView(s)}, nil
}
