package ops

import (
	"context"
	"testing"

	"seam/internal/config"
	"seam/internal/errors"
)

func TestPatchDocument_VersionsDense(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	for i, text := range []string{"first edit", "second edit", "third edit"} {
		out, err := PatchDocument(ctx, database, testCfg, PatchDocumentInput{
			DocumentID: docID, UserID: "tester", Text: stringPtr(text),
		})
		if err != nil {
			t.Fatalf("PatchDocument %d failed: %v", i, err)
		}
		if out.Version != i+1 {
			t.Errorf("Version = %d, want %d", out.Version, i+1)
		}
		if out.NoOp {
			t.Errorf("patch %d reported no-op", i)
		}
	}

	versions, err := ListVersions(ctx, database, testCfg, ListVersionsInput{DocumentID: docID})
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	// Newest first, ending with virtual version 0.
	want := []int{3, 2, 1, 0}
	if len(versions.Versions) != len(want) {
		t.Fatalf("got %d versions, want %d", len(versions.Versions), len(want))
	}
	for i, v := range versions.Versions {
		if v.Version != want[i] {
			t.Errorf("versions[%d] = %d, want %d", i, v.Version, want[i])
		}
	}
}

func TestPatchDocument_NoOp(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	if _, err := PatchDocument(ctx, database, testCfg, PatchDocumentInput{
		DocumentID: docID, UserID: "tester", Text: stringPtr("edited"),
	}); err != nil {
		t.Fatalf("PatchDocument failed: %v", err)
	}

	out, err := PatchDocument(ctx, database, testCfg, PatchDocumentInput{
		DocumentID: docID, UserID: "tester", Text: stringPtr("edited"),
	})
	if err != nil {
		t.Fatalf("no-op PatchDocument failed: %v", err)
	}
	if !out.NoOp {
		t.Errorf("identical patch should report no-op")
	}
	if out.Version != 1 {
		t.Errorf("Version = %d, want 1 (unchanged)", out.Version)
	}

	versions, err := ListVersions(ctx, database, testCfg, ListVersionsInput{DocumentID: docID})
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(versions.Versions) != 2 { // v1 + virtual v0
		t.Errorf("got %d versions, want 2", len(versions.Versions))
	}
}

func TestPatchDocument_OriginalsImmutable(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	if _, err := PatchDocument(ctx, database, testCfg, PatchDocumentInput{
		DocumentID: docID, UserID: "tester", Text: stringPtr("rewritten"), Title: stringPtr("New Title"),
	}); err != nil {
		t.Fatalf("PatchDocument failed: %v", err)
	}

	out, err := FetchDocument(ctx, database, testCfg, FetchDocumentInput{DocumentID: docID, Version: intPtr(0)})
	if err != nil {
		t.Fatalf("FetchDocument v0 failed: %v", err)
	}
	if out.Document.Text != qaText || out.Document.Title != "Test Document" {
		t.Errorf("version 0 must always serve the originals, got %q / %q", out.Document.Title, out.Document.Text)
	}
}

func TestFetchDocument_VersionResolution(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	// No versions yet: nil resolves to originals.
	out, err := FetchDocument(ctx, database, testCfg, FetchDocumentInput{DocumentID: docID})
	if err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}
	if out.Document.Version != 0 || out.Document.Text != qaText {
		t.Errorf("versionless fetch should serve originals as version 0")
	}

	if _, err := PatchDocument(ctx, database, testCfg, PatchDocumentInput{
		DocumentID: docID, UserID: "tester", Text: stringPtr("v1 text"),
	}); err != nil {
		t.Fatalf("PatchDocument failed: %v", err)
	}
	if _, err := PatchDocument(ctx, database, testCfg, PatchDocumentInput{
		DocumentID: docID, UserID: "tester", Text: stringPtr("v2 text"),
	}); err != nil {
		t.Fatalf("PatchDocument failed: %v", err)
	}

	// nil resolves to latest.
	out, err = FetchDocument(ctx, database, testCfg, FetchDocumentInput{DocumentID: docID})
	if err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}
	if out.Document.Version != 2 || out.Document.Text != "v2 text" {
		t.Errorf("latest fetch = v%d %q, want v2 %q", out.Document.Version, out.Document.Text, "v2 text")
	}

	// Exact version.
	out, err = FetchDocument(ctx, database, testCfg, FetchDocumentInput{DocumentID: docID, Version: intPtr(1)})
	if err != nil {
		t.Fatalf("FetchDocument v1 failed: %v", err)
	}
	if out.Document.Text != "v1 text" {
		t.Errorf("v1 text = %q", out.Document.Text)
	}

	// Missing version.
	_, err = FetchDocument(ctx, database, testCfg, FetchDocumentInput{DocumentID: docID, Version: intPtr(9)})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND for missing version, got %v", err)
	}

	// Negative version.
	_, err = FetchDocument(ctx, database, testCfg, FetchDocumentInput{DocumentID: docID, Version: intPtr(-1)})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for negative version, got %v", err)
	}
}

func TestPatchDocument_LegacyMode(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	legacyCfg := config.DefaultConfig()
	legacyCfg.LegacyVersioning = true

	out, err := PatchDocument(ctx, database, legacyCfg, PatchDocumentInput{
		DocumentID: docID, UserID: "tester", Text: stringPtr("rewritten in place"),
	})
	if err != nil {
		t.Fatalf("legacy PatchDocument failed: %v", err)
	}
	if out.Version != 0 {
		t.Errorf("legacy Version = %d, want 0", out.Version)
	}

	fetched, err := FetchDocument(ctx, database, legacyCfg, FetchDocumentInput{DocumentID: docID})
	if err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}
	if fetched.Document.Text != "rewritten in place" {
		t.Errorf("legacy fetch = %q", fetched.Document.Text)
	}

	versions, err := ListVersions(ctx, database, legacyCfg, ListVersionsInput{DocumentID: docID})
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(versions.Versions) != 1 || versions.Versions[0].Version != 0 {
		t.Errorf("legacy mode should report only version 0, got %+v", versions.Versions)
	}
}

func TestPatchDocument_Validation(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	_, err := PatchDocument(ctx, database, testCfg, PatchDocumentInput{DocumentID: docID, UserID: "tester"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("empty payload: expected INVALID_REQUEST, got %v", err)
	}

	_, err = PatchDocument(ctx, database, testCfg, PatchDocumentInput{DocumentID: docID, Text: stringPtr("x")})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("missing user: expected INVALID_REQUEST, got %v", err)
	}
}
