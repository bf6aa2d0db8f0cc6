package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"seam/internal/document"
	"seam/internal/errors"
)

func newTestDocument(id, ownerID, text string) *document.Document {
	return &document.Document{
		ID:            id,
		OwnerID:       ownerID,
		OriginalTitle: "Doc " + id,
		OriginalText:  text,
		SourceType:    "text",
		CreatedAt:     time.Now().Unix(),
	}
}

func newTestSegment(id, docID string, mode document.Mode, order int, kind document.SegmentKind) *document.Segment {
	return &document.Segment{
		ID:         id,
		DocumentID: docID,
		Mode:       mode,
		OrderIndex: order,
		Kind:       kind,
		Title:      "Segment " + id,
		Content:    "content of " + id,
		Start:      0,
		End:        10,
		CreatedAt:  time.Now().Unix(),
	}
}

func TestInsertAndGetDocument(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	d := newTestDocument("01DOC1", "alice", "Hello world")
	if err := InsertDocument(ctx, db, d); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}

	got, err := GetDocument(ctx, db, "01DOC1", false)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.OwnerID != "alice" {
		t.Errorf("OwnerID = %q, want %q", got.OwnerID, "alice")
	}
	if got.OriginalText != "Hello world" {
		t.Errorf("OriginalText = %q, want %q", got.OriginalText, "Hello world")
	}
	if got.Deleted() {
		t.Errorf("new document should not be deleted")
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	_, err = GetDocument(context.Background(), db, "missing", false)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestDocumentTombstoneLifecycle(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	d := newTestDocument("01DOC1", "alice", "text")
	if err := InsertDocument(ctx, db, d); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}

	changed, err := SoftDeleteDocument(ctx, db, "01DOC1")
	if err != nil {
		t.Fatalf("SoftDeleteDocument failed: %v", err)
	}
	if !changed {
		t.Errorf("first soft delete should report a change")
	}

	// Second delete is a no-op.
	changed, err = SoftDeleteDocument(ctx, db, "01DOC1")
	if err != nil {
		t.Fatalf("second SoftDeleteDocument failed: %v", err)
	}
	if changed {
		t.Errorf("second soft delete should be a no-op")
	}

	if _, err := GetDocument(ctx, db, "01DOC1", false); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("deleted document visible without includeDeleted: %v", err)
	}
	got, err := GetDocument(ctx, db, "01DOC1", true)
	if err != nil {
		t.Fatalf("GetDocument(includeDeleted) failed: %v", err)
	}
	if !got.Deleted() {
		t.Errorf("document should carry a tombstone")
	}

	changed, err = RestoreDocument(ctx, db, "01DOC1")
	if err != nil {
		t.Fatalf("RestoreDocument failed: %v", err)
	}
	if !changed {
		t.Errorf("restore should report a change")
	}
	if _, err := GetDocument(ctx, db, "01DOC1", false); err != nil {
		t.Errorf("restored document not visible: %v", err)
	}
}

func TestPurgeDocument_Cascades(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	now := time.Now().Unix()

	d := newTestDocument("01DOC1", "alice", "text")
	if err := InsertDocument(ctx, db, d); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}
	s1 := newTestSegment("01SEG1", "01DOC1", document.ModeQA, 0, document.KindAuto)
	s2 := newTestSegment("01SEG2", "01DOC1", document.ModeQA, 1, document.KindManual)
	for _, s := range []*document.Segment{s1, s2} {
		if err := InsertSegment(ctx, db, s); err != nil {
			t.Fatalf("InsertSegment failed: %v", err)
		}
	}
	v := &document.Version{ID: "01VER1", DocumentID: "01DOC1", VersionNumber: 1, Title: "t", Text: "x", CreatedBy: "alice", CreatedAt: now}
	if err := InsertVersion(ctx, db, v); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}
	l := &document.Link{ID: "01LNK1", FromSegmentID: "01SEG1", ToSegmentID: "01SEG2", LinkType: document.LinkRelated, CreatedBy: "alice", CreatedAt: now}
	if err := InsertLink(ctx, db, l); err != nil {
		t.Fatalf("InsertLink failed: %v", err)
	}
	f := &document.Folder{ID: "01FLD1", OwnerID: "alice", DocumentID: "01DOC1", Name: "notes", CreatedAt: now}
	if err := InsertFolder(ctx, db, f); err != nil {
		t.Fatalf("InsertFolder failed: %v", err)
	}
	it := &document.FolderItem{ID: "01ITM1", FolderID: "01FLD1", SegmentID: "01SEG1", CreatedAt: now}
	if err := InsertFolderItem(ctx, db, it); err != nil {
		t.Fatalf("InsertFolderItem failed: %v", err)
	}

	if err := PurgeDocument(ctx, db, "01DOC1"); err != nil {
		t.Fatalf("PurgeDocument failed: %v", err)
	}

	for table, want := range map[string]int{
		"documents": 0, "document_versions": 0, "segments": 0,
		"segment_links": 0, "folders": 0, "folder_items": 0,
	} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s failed: %v", table, err)
		}
		if n != want {
			t.Errorf("%s row count = %d, want %d", table, n, want)
		}
	}
}

func TestSegmentOrderIndexUnique(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	d := newTestDocument("01DOC1", "alice", "text")
	if err := InsertDocument(ctx, db, d); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}
	s1 := newTestSegment("01SEG1", "01DOC1", document.ModeQA, 0, document.KindAuto)
	if err := InsertSegment(ctx, db, s1); err != nil {
		t.Fatalf("InsertSegment failed: %v", err)
	}

	// Same (doc, mode, order) among live rows collides.
	s2 := newTestSegment("01SEG2", "01DOC1", document.ModeQA, 0, document.KindAuto)
	err = InsertSegment(ctx, db, s2)
	if !errors.Is(err, errors.ErrConflict) {
		t.Errorf("expected CONFLICT on duplicate order, got %v", err)
	}

	// Other mode is a separate order space.
	s3 := newTestSegment("01SEG3", "01DOC1", document.ModeParagraphs, 0, document.KindAuto)
	if err := InsertSegment(ctx, db, s3); err != nil {
		t.Errorf("same order in other mode should insert: %v", err)
	}

	// Tombstoned rows free their position.
	if _, err := SoftDeleteSegment(ctx, db, "01SEG1"); err != nil {
		t.Fatalf("SoftDeleteSegment failed: %v", err)
	}
	if err := InsertSegment(ctx, db, s2); err != nil {
		t.Errorf("order freed by tombstone should insert: %v", err)
	}
}

func TestMaxOrderIndex(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	max, err := MaxOrderIndex(ctx, db, "01DOC1", document.ModeQA)
	if err != nil {
		t.Fatalf("MaxOrderIndex failed: %v", err)
	}
	if max != -1 {
		t.Errorf("empty mode max = %d, want -1", max)
	}

	for i, id := range []string{"01SEG1", "01SEG2", "01SEG3"} {
		s := newTestSegment(id, "01DOC1", document.ModeQA, i, document.KindAuto)
		if err := InsertSegment(ctx, db, s); err != nil {
			t.Fatalf("InsertSegment failed: %v", err)
		}
	}
	max, err = MaxOrderIndex(ctx, db, "01DOC1", document.ModeQA)
	if err != nil {
		t.Fatalf("MaxOrderIndex failed: %v", err)
	}
	if max != 2 {
		t.Errorf("max = %d, want 2", max)
	}
}

func TestDeleteAutoSegments_KeepsManual(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	auto := newTestSegment("01SEG1", "01DOC1", document.ModeQA, 0, document.KindAuto)
	manual := newTestSegment("01SEG2", "01DOC1", document.ModeQA, 1, document.KindManual)
	for _, s := range []*document.Segment{auto, manual} {
		if err := InsertSegment(ctx, db, s); err != nil {
			t.Fatalf("InsertSegment failed: %v", err)
		}
	}

	n, err := DeleteAutoSegments(ctx, db, "01DOC1", document.ModeQA)
	if err != nil {
		t.Fatalf("DeleteAutoSegments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d autos, want 1", n)
	}

	segs, err := ListSegments(ctx, db, "01DOC1", document.ModeQA, 0, 0)
	if err != nil {
		t.Fatalf("ListSegments failed: %v", err)
	}
	if len(segs) != 1 || segs[0].ID != "01SEG2" {
		t.Errorf("expected only the manual segment to survive, got %v", segs)
	}
}

func TestVersionNumberUnique(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	now := time.Now().Unix()

	v1 := &document.Version{ID: "01VER1", DocumentID: "01DOC1", VersionNumber: 1, Title: "a", Text: "a", CreatedBy: "u", CreatedAt: now}
	if err := InsertVersion(ctx, db, v1); err != nil {
		t.Fatalf("InsertVersion failed: %v", err)
	}

	v2 := &document.Version{ID: "01VER2", DocumentID: "01DOC1", VersionNumber: 1, Title: "b", Text: "b", CreatedBy: "u", CreatedAt: now}
	if err := InsertVersion(ctx, db, v2); err != ErrVersionTaken {
		t.Errorf("expected ErrVersionTaken, got %v", err)
	}

	max, err := MaxVersionNumber(ctx, db, "01DOC1")
	if err != nil {
		t.Fatalf("MaxVersionNumber failed: %v", err)
	}
	if max != 1 {
		t.Errorf("max version = %d, want 1", max)
	}
}

func TestGetLatestVersion_NoRows(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	v, err := GetLatestVersion(context.Background(), db, "01DOC1")
	if err != nil {
		t.Fatalf("GetLatestVersion failed: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil for versionless document, got %v", v)
	}
}

func TestLinkDuplicate(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	now := time.Now().Unix()

	l := &document.Link{ID: "01LNK1", FromSegmentID: "A", ToSegmentID: "B", LinkType: document.LinkSupports, CreatedBy: "u", CreatedAt: now}
	if err := InsertLink(ctx, db, l); err != nil {
		t.Fatalf("InsertLink failed: %v", err)
	}

	dup := &document.Link{ID: "01LNK2", FromSegmentID: "A", ToSegmentID: "B", LinkType: document.LinkSupports, CreatedBy: "u", CreatedAt: now}
	if err := InsertLink(ctx, db, dup); !errors.Is(err, errors.ErrConflict) {
		t.Errorf("expected CONFLICT on duplicate link, got %v", err)
	}

	// Same pair with a different type is a distinct edge.
	other := &document.Link{ID: "01LNK3", FromSegmentID: "A", ToSegmentID: "B", LinkType: document.LinkRefines, CreatedBy: "u", CreatedAt: now}
	if err := InsertLink(ctx, db, other); err != nil {
		t.Errorf("different link type should insert: %v", err)
	}
}

func TestListLinks_Direction(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	now := time.Now().Unix()

	out := &document.Link{ID: "01LNK1", FromSegmentID: "A", ToSegmentID: "B", LinkType: document.LinkSupports, CreatedBy: "u", CreatedAt: now}
	in := &document.Link{ID: "01LNK2", FromSegmentID: "C", ToSegmentID: "A", LinkType: document.LinkRelated, CreatedBy: "u", CreatedAt: now}
	for _, l := range []*document.Link{out, in} {
		if err := InsertLink(ctx, db, l); err != nil {
			t.Fatalf("InsertLink failed: %v", err)
		}
	}

	outgoing, err := ListLinks(ctx, db, "A", LinkOutgoing)
	if err != nil {
		t.Fatalf("ListLinks outgoing failed: %v", err)
	}
	if len(outgoing) != 1 || outgoing[0].ID != "01LNK1" {
		t.Errorf("outgoing = %v, want just 01LNK1", outgoing)
	}

	incoming, err := ListLinks(ctx, db, "A", LinkIncoming)
	if err != nil {
		t.Fatalf("ListLinks incoming failed: %v", err)
	}
	if len(incoming) != 1 || incoming[0].ID != "01LNK2" {
		t.Errorf("incoming = %v, want just 01LNK2", incoming)
	}

	both, err := ListLinks(ctx, db, "A", LinkBoth)
	if err != nil {
		t.Fatalf("ListLinks both failed: %v", err)
	}
	if len(both) != 2 {
		t.Errorf("both = %d links, want 2", len(both))
	}
}

func TestFolderItemDuplicate(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	now := time.Now().Unix()

	f := &document.Folder{ID: "01FLD1", OwnerID: "alice", DocumentID: "01DOC1", Name: "notes", CreatedAt: now}
	if err := InsertFolder(ctx, db, f); err != nil {
		t.Fatalf("InsertFolder failed: %v", err)
	}
	it := &document.FolderItem{ID: "01ITM1", FolderID: "01FLD1", SegmentID: "01SEG1", CreatedAt: now}
	if err := InsertFolderItem(ctx, db, it); err != nil {
		t.Fatalf("InsertFolderItem failed: %v", err)
	}

	dup := &document.FolderItem{ID: "01ITM2", FolderID: "01FLD1", SegmentID: "01SEG1", CreatedAt: now}
	if err := InsertFolderItem(ctx, db, dup); !errors.Is(err, errors.ErrConflict) {
		t.Errorf("expected CONFLICT on duplicate folder item, got %v", err)
	}
}

func TestListExpiredAndCounts(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	now := time.Now().Unix()

	for _, id := range []string{"01DOC1", "01DOC2", "01DOC3"} {
		if err := InsertDocument(ctx, db, newTestDocument(id, "alice", "x")); err != nil {
			t.Fatalf("InsertDocument failed: %v", err)
		}
	}
	// 01DOC1 tombstoned long ago, 01DOC2 just now, 01DOC3 live.
	if _, err := db.Exec(`UPDATE documents SET deleted_at = ? WHERE id = '01DOC1'`, now-1000); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
	if _, err := SoftDeleteDocument(ctx, db, "01DOC2"); err != nil {
		t.Fatalf("SoftDeleteDocument failed: %v", err)
	}

	cutoff := now - 500
	ids, err := ListExpiredDocumentIDs(ctx, db, cutoff)
	if err != nil {
		t.Fatalf("ListExpiredDocumentIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "01DOC1" {
		t.Errorf("expired ids = %v, want [01DOC1]", ids)
	}

	deleted, expired, err := CountDocumentTombstones(ctx, db, cutoff)
	if err != nil {
		t.Fatalf("CountDocumentTombstones failed: %v", err)
	}
	if deleted != 2 || expired != 1 {
		t.Errorf("counts = (%d, %d), want (2, 1)", deleted, expired)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	wantErr := errors.NewInvalidRequest("boom")
	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := InsertDocument(ctx, tx, newTestDocument("01DOC1", "alice", "x")); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("WithTx error = %v, want INVALID_REQUEST", err)
	}

	if _, err := GetDocument(ctx, db, "01DOC1", true); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("insert should have rolled back, got %v", err)
	}
}

func TestWithTx_Commit(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		return InsertDocument(ctx, tx, newTestDocument("01DOC1", "alice", "x"))
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	if _, err := GetDocument(ctx, db, "01DOC1", false); err != nil {
		t.Errorf("committed document not visible: %v", err)
	}
}
