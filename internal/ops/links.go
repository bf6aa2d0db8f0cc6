package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"seam/internal/db"
	"seam/internal/document"
	"seam/internal/errors"
)

// CreateLinkInput contains parameters for the CreateLink operation.
type CreateLinkInput struct {
	FromSegmentID string  // required
	ToSegmentID   string  // required
	LinkType      string  // required: supports | contradicts | refines | depends_on | related
	Notes         *string // optional
	UserID        string  // required
}

// LinkView is the JSON shape of a segment link.
type LinkView struct {
	ID            string  `json:"id"`
	FromSegmentID string  `json:"from_segment_id"`
	ToSegmentID   string  `json:"to_segment_id"`
	LinkType      string  `json:"link_type"`
	Notes         *string `json:"notes,omitempty"`
	CreatedBy     string  `json:"created_by"`
	CreatedAt     int64   `json:"created_at"`
}

// CreateLinkOutput contains the result of the CreateLink operation.
type CreateLinkOutput struct {
	Link LinkView `json:"link"`
}

// CreateLink records a typed relationship between two live segments.
// Self-links are rejected; a duplicate (from, to, type) triple fails with
// CONFLICT.
func CreateLink(ctx context.Context, database *sql.DB, input CreateLinkInput) (*CreateLinkOutput, error) {
	input.FromSegmentID = strings.TrimSpace(input.FromSegmentID)
	input.ToSegmentID = strings.TrimSpace(input.ToSegmentID)
	input.UserID = strings.TrimSpace(input.UserID)
	if input.FromSegmentID == "" || input.ToSegmentID == "" {
		return nil, errors.NewInvalidRequest("from_segment_id and to_segment_id are required")
	}
	if input.UserID == "" {
		return nil, errors.NewInvalidRequest("user_id is required")
	}
	if input.FromSegmentID == input.ToSegmentID {
		return nil, errors.NewInvalidRequest("a segment cannot link to itself")
	}
	linkType, err := document.ParseLinkType(input.LinkType)
	if err != nil {
		return nil, err
	}

	// Both endpoints must be live segments.
	if _, err := db.GetSegment(ctx, database, input.FromSegmentID, false); err != nil {
		return nil, err
	}
	if _, err := db.GetSegment(ctx, database, input.ToSegmentID, false); err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	l := &document.Link{
		ID:            id,
		FromSegmentID: input.FromSegmentID,
		ToSegmentID:   input.ToSegmentID,
		LinkType:      linkType,
		Notes:         cleanOptionalString(input.Notes),
		CreatedBy:     input.UserID,
		CreatedAt:     time.Now().Unix(),
	}
	if err := db.InsertLink(ctx, database, l); err != nil {
		return nil, err
	}
	return &CreateLinkOutput{Link: toLinkView(l)}, nil
}

// ListLinksInput contains parameters for the ListLinks operation.
type ListLinksInput struct {
	SegmentID string // required
	Direction string // outgoing | incoming | both (default both)
}

// ListLinksOutput contains the result of the ListLinks operation.
type ListLinksOutput struct {
	Links []LinkView `json:"links"`
}

// ListLinks returns the links touching a segment, filtered by direction.
func ListLinks(ctx context.Context, database *sql.DB, input ListLinksInput) (*ListLinksOutput, error) {
	input.SegmentID = strings.TrimSpace(input.SegmentID)
	if input.SegmentID == "" {
		return nil, errors.NewInvalidRequest("segment_id is required")
	}

	dir := db.LinkBoth
	switch strings.TrimSpace(input.Direction) {
	case "", "both":
	case "outgoing":
		dir = db.LinkOutgoing
	case "incoming":
		dir = db.LinkIncoming
	default:
		return nil, errors.NewInvalidRequest("direction must be one of: outgoing, incoming, both")
	}

	links, err := db.ListLinks(ctx, database, input.SegmentID, dir)
	if err != nil {
		return nil, err
	}
	views := make([]LinkView, 0, len(links))
	for _, l := range links {
		views = append(views, toLinkView(l))
	}
	return &ListLinksOutput{Links: views}, nil
}

// DeleteLink removes a link by ID.
func DeleteLink(ctx context.Context, database *sql.DB, linkID string) error {
	linkID = strings.TrimSpace(linkID)
	if linkID == "" {
		return errors.NewInvalidRequest("link_id is required")
	}
	return db.DeleteLink(ctx, database, linkID)
}

func toLinkView(l *document.Link) LinkView {
	return LinkView{
		ID:            l.ID,
		FromSegmentID: l.FromSegmentID,
		ToSegmentID:   l.ToSegmentID,
		LinkType:      string(l.LinkType),
		Notes:         l.Notes,
		CreatedBy:     l.CreatedBy,
		CreatedAt:     l.CreatedAt,
	}
}
