package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"seam/internal/db"
	"seam/internal/errors"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	DocumentID string // required
	Path       string // optional, default: <baseDir>/exports/<doc>-<timestamp>.jsonl
	BaseDir    string // resolved data dir, used for the default path
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Lines      int    `json:"lines"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the first line of a JSONL export file.
type ExportHeader struct {
	SeamExport    bool   `json:"_seam_export"`
	SchemaVersion string `json:"schema_version"`
	DocumentID    string `json:"document_id"`
	ExportedAt    int64  `json:"exported_at"`
}

// Export writes one document to a JSONL file: a header line, the document
// record with its originals, every version row, then every live segment.
// The file is written to a temp path and renamed into place so a failed
// export never clobbers an earlier one.
func Export(ctx context.Context, database *sql.DB, input ExportInput) (*ExportOutput, error) {
	d, err := requireDocument(ctx, database, input.DocumentID)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		exportPath = filepath.Join(input.BaseDir, "exports",
			fmt.Sprintf("%s-%s.jsonl", d.ID, now.Format("20060102-150405")))
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(err)
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	w := bufio.NewWriter(file)
	lines := 0
	writeLine := func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return errors.NewInternal(err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return errors.NewInternal(err)
		}
		lines++
		return nil
	}

	header := ExportHeader{
		SeamExport:    true,
		SchemaVersion: "1.0",
		DocumentID:    d.ID,
		ExportedAt:    now.Unix(),
	}
	if err := writeLine(header); err != nil {
		return nil, err
	}

	if err := writeLine(map[string]any{
		"type":        "document",
		"id":          d.ID,
		"owner_id":    d.OwnerID,
		"title":       d.OriginalTitle,
		"text":        d.OriginalText,
		"source_type": d.SourceType,
		"created_at":  d.CreatedAt,
	}); err != nil {
		return nil, err
	}

	versions, err := db.ListVersions(ctx, database, d.ID)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if err := writeLine(map[string]any{
			"type":       "version",
			"version":    v.VersionNumber,
			"title":      v.Title,
			"text":       v.Text,
			"created_by": v.CreatedBy,
			"created_at": v.CreatedAt,
		}); err != nil {
			return nil, err
		}
	}

	segs, err := db.ListAllSegments(ctx, database, d.ID)
	if err != nil {
		return nil, err
	}
	for _, s := range segs {
		view := toSegmentView(s)
		if err := writeLine(map[string]any{
			"type":    "segment",
			"segment": view,
		}); err != nil {
			return nil, err
		}
	}

	if err := w.Flush(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		file = nil
		return nil, errors.NewInternal(err)
	}
	file = nil

	if err := os.Rename(tempPath, exportPath); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	success = true

	return &ExportOutput{Path: exportPath, Lines: lines, ExportedAt: now.Unix()}, nil
}
