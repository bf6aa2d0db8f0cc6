package ops

import (
	"context"
	"testing"

	"seam/internal/errors"
)

func TestFolderWorkflow(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	seg, err := CreateManualSegment(ctx, database, CreateManualSegmentInput{DocumentID: docID, Mode: "qa", Start: 0, End: 8})
	if err != nil {
		t.Fatalf("CreateManualSegment failed: %v", err)
	}

	folder, err := CreateFolder(ctx, database, CreateFolderInput{OwnerID: "tester", DocumentID: docID, Name: "evidence"})
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if folder.Folder.Name != "evidence" {
		t.Errorf("Name = %q", folder.Folder.Name)
	}

	if err := AddToFolder(ctx, database, AddToFolderInput{FolderID: folder.Folder.ID, SegmentID: seg.Segment.ID}); err != nil {
		t.Fatalf("AddToFolder failed: %v", err)
	}

	// Duplicate membership.
	err = AddToFolder(ctx, database, AddToFolderInput{FolderID: folder.Folder.ID, SegmentID: seg.Segment.ID})
	if !errors.Is(err, errors.ErrConflict) {
		t.Errorf("duplicate item: expected CONFLICT, got %v", err)
	}

	items, err := ListFolderItems(ctx, database, ListFolderItemsInput{FolderID: folder.Folder.ID})
	if err != nil {
		t.Fatalf("ListFolderItems failed: %v", err)
	}
	if len(items.Segments) != 1 || items.Segments[0].ID != seg.Segment.ID {
		t.Errorf("folder items = %+v", items.Segments)
	}

	folders, err := ListFolders(ctx, database, ListFoldersInput{DocumentID: docID})
	if err != nil {
		t.Fatalf("ListFolders failed: %v", err)
	}
	if len(folders.Folders) != 1 || folders.Folders[0].ItemCount != 1 {
		t.Errorf("folders = %+v", folders.Folders)
	}

	if err := RemoveFromFolder(ctx, database, RemoveFromFolderInput{FolderID: folder.Folder.ID, SegmentID: seg.Segment.ID}); err != nil {
		t.Fatalf("RemoveFromFolder failed: %v", err)
	}
	err = RemoveFromFolder(ctx, database, RemoveFromFolderInput{FolderID: folder.Folder.ID, SegmentID: seg.Segment.ID})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("removing twice: expected NOT_FOUND, got %v", err)
	}
}

func TestAddToFolder_CrossDocumentRejected(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	doc1 := ingestDoc(t, database, qaText)
	doc2 := ingestDoc(t, database, "other document body")

	seg, err := CreateManualSegment(ctx, database, CreateManualSegmentInput{DocumentID: doc2, Mode: "qa", Start: 0, End: 5})
	if err != nil {
		t.Fatalf("CreateManualSegment failed: %v", err)
	}
	folder, err := CreateFolder(ctx, database, CreateFolderInput{OwnerID: "tester", DocumentID: doc1, Name: "mixed"})
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	err = AddToFolder(ctx, database, AddToFolderInput{FolderID: folder.Folder.ID, SegmentID: seg.Segment.ID})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("cross-document add: expected INVALID_REQUEST, got %v", err)
	}
}

func TestListFolderItems_SkipsTombstonedSegments(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	seg, err := CreateManualSegment(ctx, database, CreateManualSegmentInput{DocumentID: docID, Mode: "qa", Start: 0, End: 8})
	if err != nil {
		t.Fatalf("CreateManualSegment failed: %v", err)
	}
	folder, err := CreateFolder(ctx, database, CreateFolderInput{OwnerID: "tester", DocumentID: docID, Name: "bin"})
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if err := AddToFolder(ctx, database, AddToFolderInput{FolderID: folder.Folder.ID, SegmentID: seg.Segment.ID}); err != nil {
		t.Fatalf("AddToFolder failed: %v", err)
	}
	if _, err := DeleteSegment(ctx, database, seg.Segment.ID); err != nil {
		t.Fatalf("DeleteSegment failed: %v", err)
	}

	items, err := ListFolderItems(ctx, database, ListFolderItemsInput{FolderID: folder.Folder.ID})
	if err != nil {
		t.Fatalf("ListFolderItems failed: %v", err)
	}
	if len(items.Segments) != 0 {
		t.Errorf("tombstoned segment should be hidden from folder listing, got %+v", items.Segments)
	}
}
