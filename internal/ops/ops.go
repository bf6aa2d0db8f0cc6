package ops

import (
	"context"
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"seam/internal/db"
	"seam/internal/document"
	"seam/internal/errors"
)

// Pagination limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
	Total    int  `json:"total"`
}

// normalizePage applies defaults and caps to page/pageSize. Pages are 1-based.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// modeLocks serializes order-index allocation per (document, mode).
// Reconcile and the append paths all reshape the live order space, so each
// takes this lock before opening its transaction.
var modeLocks = struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}{m: make(map[string]*sync.Mutex)}

func lockMode(documentID string, mode document.Mode) func() {
	key := documentID + "|" + string(mode)
	modeLocks.mu.Lock()
	l, ok := modeLocks.m[key]
	if !ok {
		l = &sync.Mutex{}
		modeLocks.m[key] = l
	}
	modeLocks.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// cleanOptionalString trims an optional string, converting empty to nil.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// requireDocument loads a live document or fails with NOT_FOUND.
func requireDocument(ctx context.Context, q db.Querier, id string) (*document.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("document_id is required")
	}
	return db.GetDocument(ctx, q, id, false)
}

// SegmentView is the JSON shape of a segment across all segment-returning
// operations.
type SegmentView struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Mode       string `json:"mode"`
	OrderIndex int    `json:"order_index"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	CreatedAt  int64  `json:"created_at"`
	DeletedAt  *int64 `json:"deleted_at,omitempty"`
}

func toSegmentView(s *document.Segment) SegmentView {
	return SegmentView{
		ID:         s.ID,
		DocumentID: s.DocumentID,
		Mode:       string(s.Mode),
		OrderIndex: s.OrderIndex,
		Kind:       s.Kind.String(),
		Title:      s.Title,
		Content:    s.Content,
		Start:      s.Start,
		End:        s.End,
		CreatedAt:  s.CreatedAt,
		DeletedAt:  s.DeletedAt,
	}
}

func toSegmentViews(segs []*document.Segment) []SegmentView {
	views := make([]SegmentView, 0, len(segs))
	for _, s := range segs {
		views = append(views, toSegmentView(s))
	}
	return views
}

// DocumentView is the JSON shape of a document. Title and Text reflect the
// resolved version, not necessarily the originals.
type DocumentView struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	SourceType string `json:"source_type"`
	Version    int    `json:"version"`
	CreatedAt  int64  `json:"created_at"`
	DeletedAt  *int64 `json:"deleted_at,omitempty"`
}
