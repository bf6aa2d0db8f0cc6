package ops

import (
	"context"
	"testing"

	"seam/internal/errors"
)

func TestDeleteRestoreDocument_Idempotent(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	out, err := DeleteDocument(ctx, database, docID)
	if err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if !out.Changed {
		t.Errorf("first delete should change state")
	}

	out, err = DeleteDocument(ctx, database, docID)
	if err != nil {
		t.Fatalf("second DeleteDocument failed: %v", err)
	}
	if out.Changed {
		t.Errorf("second delete should be a no-op")
	}

	out, err = RestoreDocument(ctx, database, docID)
	if err != nil {
		t.Fatalf("RestoreDocument failed: %v", err)
	}
	if !out.Changed {
		t.Errorf("restore should change state")
	}

	out, err = RestoreDocument(ctx, database, docID)
	if err != nil {
		t.Fatalf("second RestoreDocument failed: %v", err)
	}
	if out.Changed {
		t.Errorf("restoring a live document should be a no-op")
	}
}

func TestDeleteDocument_HiddenFromFetch(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	if _, err := DeleteDocument(ctx, database, docID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}

	_, err := FetchDocument(ctx, database, testCfg, FetchDocumentInput{DocumentID: docID})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("deleted document should be NOT_FOUND, got %v", err)
	}
}

func TestDeleteSegment_FreesOrderPosition(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	first, err := CreateManualSegment(ctx, database, CreateManualSegmentInput{
		DocumentID: docID, Mode: "qa", Start: 0, End: 8,
	})
	if err != nil {
		t.Fatalf("CreateManualSegment failed: %v", err)
	}
	if _, err := DeleteSegment(ctx, database, first.Segment.ID); err != nil {
		t.Fatalf("DeleteSegment failed: %v", err)
	}

	// The freed position 0 is reusable.
	second, err := CreateManualSegment(ctx, database, CreateManualSegmentInput{
		DocumentID: docID, Mode: "qa", Start: 0, End: 8,
	})
	if err != nil {
		t.Fatalf("CreateManualSegment after delete failed: %v", err)
	}
	if second.Segment.OrderIndex != 0 {
		t.Errorf("OrderIndex = %d, want 0", second.Segment.OrderIndex)
	}

	// The tombstoned row moves to the end on restore.
	out, err := RestoreSegment(ctx, database, first.Segment.ID)
	if err != nil {
		t.Fatalf("RestoreSegment failed: %v", err)
	}
	if !out.Changed {
		t.Errorf("restore should change state")
	}
	restored, err := GetSegment(ctx, database, GetSegmentInput{SegmentID: first.Segment.ID})
	if err != nil {
		t.Fatalf("GetSegment failed: %v", err)
	}
	if restored.Segment.OrderIndex != 1 {
		t.Errorf("restored OrderIndex = %d, want 1", restored.Segment.OrderIndex)
	}
}

func TestPurge_RequiresTombstone(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	_, err := Purge(ctx, database, PurgeInput{Entity: "document", ID: docID})
	if !errors.Is(err, errors.ErrInvalidState) {
		t.Errorf("purging a live document: expected INVALID_STATE, got %v", err)
	}

	if _, err := DeleteDocument(ctx, database, docID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := Purge(ctx, database, PurgeInput{Entity: "document", ID: docID}); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}

	// Gone for good, even with include-deleted semantics.
	_, err = Purge(ctx, database, PurgeInput{Entity: "document", ID: docID})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("purged document: expected NOT_FOUND, got %v", err)
	}
}

func TestPurge_UnknownEntity(t *testing.T) {
	database := setupDB(t)

	_, err := Purge(context.Background(), database, PurgeInput{Entity: "workspace", ID: "x"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestListDeleted_RecycleBin(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	seg, err := CreateManualSegment(ctx, database, CreateManualSegmentInput{
		DocumentID: docID, Mode: "qa", Start: 0, End: 8,
	})
	if err != nil {
		t.Fatalf("CreateManualSegment failed: %v", err)
	}
	if _, err := DeleteSegment(ctx, database, seg.Segment.ID); err != nil {
		t.Fatalf("DeleteSegment failed: %v", err)
	}
	if _, err := DeleteDocument(ctx, database, docID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}

	out, err := ListDeleted(ctx, database, ListDeletedInput{OwnerID: "tester"})
	if err != nil {
		t.Fatalf("ListDeleted failed: %v", err)
	}
	if len(out.Documents) != 1 || out.Documents[0].ID != docID {
		t.Errorf("Documents = %+v, want the deleted document", out.Documents)
	}
	if len(out.Segments) != 1 || out.Segments[0].ID != seg.Segment.ID {
		t.Errorf("Segments = %+v, want the deleted segment", out.Segments)
	}
	if out.Segments[0].Preview == "" {
		t.Errorf("segment preview should not be empty")
	}
}
