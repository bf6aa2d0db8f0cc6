package document

import (
	"fmt"

	"seam/internal/errors"
)

// Mode selects a segmentation algorithm.
type Mode string

const (
	ModeQA         Mode = "qa"
	ModeParagraphs Mode = "paragraphs"
)

// Modes lists all valid segmentation modes.
var Modes = []Mode{ModeQA, ModeParagraphs}

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeQA, ModeParagraphs:
		return Mode(s), nil
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown mode: %q (valid: qa, paragraphs)", s))
}

// SegmentKind distinguishes engine-derived segments from user-curated ones.
// The two kinds have different mutability rules: auto segments are immutable
// once created (edits fork them into manual rows), manual segments are
// editable in place. Every mutation site switches on this explicitly.
type SegmentKind int

const (
	// KindAuto marks a segment produced by reconciliation. Immutable.
	KindAuto SegmentKind = iota
	// KindManual marks a user-created or forked segment. Editable in place.
	KindManual
)

// String returns the kind name.
func (k SegmentKind) String() string {
	if k == KindManual {
		return "manual"
	}
	return "auto"
}

// IsManual reports whether the kind is KindManual, for storage mapping.
func (k SegmentKind) IsManual() bool {
	return k == KindManual
}

// KindFromManual maps the stored is_manual flag back to a kind.
func KindFromManual(isManual bool) SegmentKind {
	if isManual {
		return KindManual
	}
	return KindAuto
}

// Segment represents one derived or curated slice of a document.
// (DocumentID, Mode, OrderIndex) is unique among non-tombstoned rows.
// Start/End are byte offsets into the owning document's ORIGINAL text;
// unless Content was explicitly overridden on a manual segment,
// Content == strings.TrimSpace(originalText[Start:End]).
type Segment struct {
	ID         string
	DocumentID string
	Mode       Mode
	OrderIndex int
	Kind       SegmentKind
	Title      string
	Content    string
	Start      int
	End        int
	CreatedAt  int64
	DeletedAt  *int64
}

// Deleted reports whether the segment carries a tombstone.
func (s *Segment) Deleted() bool {
	return s.DeletedAt != nil
}

// ValidateSpan checks a (start, end) pair against the document text length.
// Invalid spans are rejected, never clamped.
func ValidateSpan(start, end, textLen int) error {
	if start < 0 || end < 0 || start >= textLen || end > textLen || end <= start {
		return errors.NewInvalidSpan(start, end, textLen)
	}
	return nil
}

// LinkType classifies the relationship between two segments.
type LinkType string

const (
	LinkSupports    LinkType = "supports"
	LinkContradicts LinkType = "contradicts"
	LinkRefines     LinkType = "refines"
	LinkDependsOn   LinkType = "depends_on"
	LinkRelated     LinkType = "related"
)

// LinkTypes lists all valid link types.
var LinkTypes = []LinkType{LinkSupports, LinkContradicts, LinkRefines, LinkDependsOn, LinkRelated}

// ParseLinkType validates a link type string.
func ParseLinkType(s string) (LinkType, error) {
	for _, lt := range LinkTypes {
		if LinkType(s) == lt {
			return lt, nil
		}
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown link type: %q", s))
}

// Link represents a typed edge between two segments.
// (FromSegmentID, ToSegmentID, LinkType) is unique.
type Link struct {
	ID            string
	FromSegmentID string
	ToSegmentID   string
	LinkType      LinkType
	Notes         *string
	CreatedBy     string
	CreatedAt     int64
}
