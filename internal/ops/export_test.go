package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestExport_JSONL(t *testing.T) {
	tmpDir := t.TempDir()
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	if _, err := Reconcile(ctx, database, testCfg, ReconcileInput{DocumentID: docID, Mode: "qa"}); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if _, err := PatchDocument(ctx, database, testCfg, PatchDocumentInput{
		DocumentID: docID, UserID: "tester", Text: stringPtr("edited"),
	}); err != nil {
		t.Fatalf("PatchDocument failed: %v", err)
	}

	out, err := Export(ctx, database, ExportInput{DocumentID: docID, BaseDir: tmpDir})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	// header + document + 1 version + 1 segment
	if out.Lines != 4 {
		t.Errorf("Lines = %d, want 4", out.Lines)
	}

	file, err := os.Open(out.Path)
	if err != nil {
		t.Fatalf("open export failed: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		t.Fatal("export file is empty")
	}
	var header ExportHeader
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		t.Fatalf("header is not valid JSON: %v", err)
	}
	if !header.SeamExport || header.DocumentID != docID {
		t.Errorf("header = %+v", header)
	}

	lines := 1
	for scanner.Scan() {
		var obj map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			t.Errorf("line %d is not valid JSON: %v", lines+1, err)
		}
		lines++
	}
	if lines != out.Lines {
		t.Errorf("file has %d lines, output reported %d", lines, out.Lines)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(out.Path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestExport_ExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	database := setupDB(t)
	ctx := context.Background()
	docID := ingestDoc(t, database, qaText)

	path := filepath.Join(tmpDir, "out", "doc.jsonl")
	out, err := Export(ctx, database, ExportInput{DocumentID: docID, Path: path})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Path != path {
		t.Errorf("Path = %q, want %q", out.Path, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}
