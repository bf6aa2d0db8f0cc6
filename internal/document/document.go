package document

// Document represents a piece of ingested text. OriginalTitle and
// OriginalText are set exactly once at ingestion and never updated
// afterwards; every later edit lives in a DocumentVersion row. This
// write-once rule is the central invariant of the engine: segments
// anchor their offsets to OriginalText, so mutating it would silently
// invalidate every span ever derived from the document.
type Document struct {
	// ID is a ULID that uniquely identifies this document
	ID string

	// OwnerID is the opaque user identifier supplied by the caller
	OwnerID string

	// OriginalTitle is the title captured at ingestion (immutable)
	OriginalTitle string

	// OriginalText is the text captured at ingestion (immutable)
	OriginalText string

	// SourceType describes where the text came from (e.g., "chat-export", "note")
	SourceType string

	// CreatedAt is the Unix timestamp when the document was ingested
	CreatedAt int64

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64
}

// Deleted reports whether the document carries a tombstone.
func (d *Document) Deleted() bool {
	return d.DeletedAt != nil
}

// Version represents one entry in a document's append-only edit ledger.
// VersionNumber is dense and unique per document, starting at 1.
// Version 0 is virtual: it always resolves to the document's original
// title/text and is never stored as a row.
type Version struct {
	ID            string
	DocumentID    string
	VersionNumber int
	Title         string
	Text          string

	// CreatedBy is the user who made the edit
	CreatedBy string

	CreatedAt int64
}
