package ops

import (
	"context"
	"testing"
	"time"

	"seam/internal/errors"
)

func TestPurgeExpired_RespectsCutoff(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	oldDoc := ingestDoc(t, database, "old text")
	newDoc := ingestDoc(t, database, "new text")
	for _, id := range []string{oldDoc, newDoc} {
		if _, err := DeleteDocument(ctx, database, id); err != nil {
			t.Fatalf("DeleteDocument failed: %v", err)
		}
	}

	// Age one tombstone past the cutoff.
	old := time.Now().Add(-48 * time.Hour).Unix()
	if _, err := database.Exec(`UPDATE documents SET deleted_at = ? WHERE id = ?`, old, oldDoc); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	out, err := PurgeExpired(ctx, database, PurgeExpiredInput{Cutoff: RetentionCutoff(1)})
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if out.Documents != 1 {
		t.Errorf("purged %d documents, want 1", out.Documents)
	}
	if out.Failed != 0 {
		t.Errorf("Failed = %d, want 0", out.Failed)
	}

	// The fresh tombstone survives.
	if _, err := RestoreDocument(ctx, database, newDoc); err != nil {
		t.Errorf("fresh tombstone should still be restorable: %v", err)
	}
}

func TestPurgeExpired_RestoredEntityNeverPurged(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	docID := ingestDoc(t, database, "text")
	if _, err := DeleteDocument(ctx, database, docID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour).Unix()
	if _, err := database.Exec(`UPDATE documents SET deleted_at = ? WHERE id = ?`, old, docID); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	// Restore before the sweep runs.
	if _, err := RestoreDocument(ctx, database, docID); err != nil {
		t.Fatalf("RestoreDocument failed: %v", err)
	}

	out, err := PurgeExpired(ctx, database, PurgeExpiredInput{Cutoff: RetentionCutoff(1)})
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if out.Documents != 0 {
		t.Errorf("purged %d documents, want 0", out.Documents)
	}
	if _, err := FetchDocument(ctx, database, testCfg, FetchDocumentInput{DocumentID: docID}); err != nil {
		t.Errorf("restored document should survive the sweep: %v", err)
	}
}

func TestPurgeExpired_CoversSegmentsAndFolders(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	seg, err := CreateManualSegment(ctx, database, CreateManualSegmentInput{
		DocumentID: docID, Mode: "qa", Start: 0, End: 8,
	})
	if err != nil {
		t.Fatalf("CreateManualSegment failed: %v", err)
	}
	folder, err := CreateFolder(ctx, database, CreateFolderInput{
		OwnerID: "tester", DocumentID: docID, Name: "stale",
	})
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	if _, err := DeleteSegment(ctx, database, seg.Segment.ID); err != nil {
		t.Fatalf("DeleteSegment failed: %v", err)
	}
	if _, err := DeleteFolder(ctx, database, folder.Folder.ID); err != nil {
		t.Fatalf("DeleteFolder failed: %v", err)
	}

	old := time.Now().Add(-48 * time.Hour).Unix()
	if _, err := database.Exec(`UPDATE segments SET deleted_at = ?`, old); err != nil {
		t.Fatalf("backdate segments failed: %v", err)
	}
	if _, err := database.Exec(`UPDATE folders SET deleted_at = ?`, old); err != nil {
		t.Fatalf("backdate folders failed: %v", err)
	}

	out, err := PurgeExpired(ctx, database, PurgeExpiredInput{Cutoff: RetentionCutoff(1)})
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if out.Segments != 1 || out.Folders != 1 {
		t.Errorf("purged segments=%d folders=%d, want 1 and 1", out.Segments, out.Folders)
	}
}

func TestPurgeCustom_Validation(t *testing.T) {
	database := setupDB(t)

	_, err := PurgeCustom(context.Background(), database, PurgeCustomInput{Days: 0})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("days=0: expected INVALID_REQUEST, got %v", err)
	}
	_, err = PurgeCustom(context.Background(), database, PurgeCustomInput{Days: -5})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("days=-5: expected INVALID_REQUEST, got %v", err)
	}
}

func TestRetentionStats(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()

	docID := ingestDoc(t, database, "text")
	if _, err := DeleteDocument(ctx, database, docID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	old := time.Now().Add(-60 * 24 * time.Hour).Unix()
	if _, err := database.Exec(`UPDATE documents SET deleted_at = ? WHERE id = ?`, old, docID); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	stats, err := RetentionStats(ctx, database, 30, true)
	if err != nil {
		t.Fatalf("RetentionStats failed: %v", err)
	}
	if stats.RetentionDays != 30 || !stats.PurgeEnabled {
		t.Errorf("policy echo = %+v", stats)
	}
	if stats.Documents.Deleted != 1 || stats.Documents.Expired != 1 {
		t.Errorf("document stats = %+v, want deleted=1 expired=1", stats.Documents)
	}
	if stats.Segments.Deleted != 0 || stats.Folders.Deleted != 0 {
		t.Errorf("segment/folder stats should be zero: %+v %+v", stats.Segments, stats.Folders)
	}
}
