package ops

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"seam/internal/db"
	"seam/internal/errors"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	Entity string // required: document | segment | folder
	ID     string // required
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	ID     string `json:"id"`
	Entity string `json:"entity"`
}

// Purge permanently deletes one tombstoned entity. Purging a live entity
// fails with INVALID_STATE: callers must soft-delete first, so an accidental
// purge always has a recoverable window in front of it.
func Purge(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	input.ID = strings.TrimSpace(input.ID)
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	switch strings.TrimSpace(input.Entity) {
	case "document":
		d, err := db.GetDocument(ctx, database, input.ID, true)
		if err != nil {
			return nil, err
		}
		if !d.Deleted() {
			return nil, errors.NewInvalidState("document is not deleted; delete it before purging")
		}
		err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
			return db.PurgeDocument(ctx, tx, d.ID)
		})
		if err != nil {
			return nil, err
		}
	case "segment":
		s, err := db.GetSegment(ctx, database, input.ID, true)
		if err != nil {
			return nil, err
		}
		if !s.Deleted() {
			return nil, errors.NewInvalidState("segment is not deleted; delete it before purging")
		}
		err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
			return db.PurgeSegment(ctx, tx, s.ID)
		})
		if err != nil {
			return nil, err
		}
	case "folder":
		f, err := db.GetFolder(ctx, database, input.ID, true)
		if err != nil {
			return nil, err
		}
		if !f.Deleted() {
			return nil, errors.NewInvalidState("folder is not deleted; delete it before purging")
		}
		err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
			return db.PurgeFolder(ctx, tx, f.ID)
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.NewInvalidRequest("entity must be one of: document, segment, folder")
	}

	return &PurgeOutput{ID: input.ID, Entity: input.Entity}, nil
}

// PurgeExpiredInput contains parameters for the PurgeExpired operation.
type PurgeExpiredInput struct {
	Cutoff int64 // purge entities tombstoned before this unix time
}

// PurgeExpiredOutput contains the result of the PurgeExpired operation.
type PurgeExpiredOutput struct {
	Documents int `json:"documents"`
	Segments  int `json:"segments"`
	Folders   int `json:"folders"`
	Failed    int `json:"failed"`
}

// PurgeExpired hard-deletes every entity whose tombstone predates the
// cutoff. Each entity is purged in its own short transaction so a single
// failure, or a long document cascade, never blocks the rest of the batch.
// Failures are logged and counted.
func PurgeExpired(ctx context.Context, database *sql.DB, input PurgeExpiredInput) (*PurgeExpiredOutput, error) {
	out := &PurgeExpiredOutput{}

	docIDs, err := db.ListExpiredDocumentIDs(ctx, database, input.Cutoff)
	if err != nil {
		return nil, err
	}
	for _, id := range docIDs {
		err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
			return db.PurgeDocument(ctx, tx, id)
		})
		if err != nil {
			log.Printf("purge: document %s: %v", id, err)
			out.Failed++
			continue
		}
		out.Documents++
	}

	segIDs, err := db.ListExpiredSegmentIDs(ctx, database, input.Cutoff)
	if err != nil {
		return nil, err
	}
	for _, id := range segIDs {
		err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
			return db.PurgeSegment(ctx, tx, id)
		})
		if err != nil {
			log.Printf("purge: segment %s: %v", id, err)
			out.Failed++
			continue
		}
		out.Segments++
	}

	folderIDs, err := db.ListExpiredFolderIDs(ctx, database, input.Cutoff)
	if err != nil {
		return nil, err
	}
	for _, id := range folderIDs {
		err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
			return db.PurgeFolder(ctx, tx, id)
		})
		if err != nil {
			log.Printf("purge: folder %s: %v", id, err)
			out.Failed++
			continue
		}
		out.Folders++
	}

	return out, nil
}

// RetentionCutoff converts a retention window in days to a purge cutoff.
func RetentionCutoff(days int) int64 {
	return time.Now().Add(-time.Duration(days) * 24 * time.Hour).Unix()
}

// PurgeCustomInput contains parameters for the PurgeCustom operation.
type PurgeCustomInput struct {
	Days int // required, >= 1
}

// PurgeCustom runs an expired-tombstone purge with a caller-supplied
// retention window instead of the configured one.
func PurgeCustom(ctx context.Context, database *sql.DB, input PurgeCustomInput) (*PurgeExpiredOutput, error) {
	if input.Days < 1 {
		return nil, errors.NewInvalidRequest("days must be >= 1")
	}
	return PurgeExpired(ctx, database, PurgeExpiredInput{Cutoff: RetentionCutoff(input.Days)})
}

// EntityStats holds per-entity tombstone counts.
type EntityStats struct {
	Deleted int `json:"deleted"`
	Expired int `json:"expired"`
}

// RetentionStatsOutput contains the result of the RetentionStats operation.
type RetentionStatsOutput struct {
	RetentionDays int         `json:"retention_days"`
	PurgeEnabled  bool        `json:"purge_enabled"`
	Documents     EntityStats `json:"documents"`
	Segments      EntityStats `json:"segments"`
	Folders       EntityStats `json:"folders"`
}

// RetentionStats reports tombstone counts per entity against the given
// retention window.
func RetentionStats(ctx context.Context, database *sql.DB, retentionDays int, purgeEnabled bool) (*RetentionStatsOutput, error) {
	cutoff := RetentionCutoff(retentionDays)
	out := &RetentionStatsOutput{RetentionDays: retentionDays, PurgeEnabled: purgeEnabled}

	var err error
	out.Documents.Deleted, out.Documents.Expired, err = db.CountDocumentTombstones(ctx, database, cutoff)
	if err != nil {
		return nil, err
	}
	out.Segments.Deleted, out.Segments.Expired, err = db.CountSegmentTombstones(ctx, database, cutoff)
	if err != nil {
		return nil, err
	}
	out.Folders.Deleted, out.Folders.Expired, err = db.CountFolderTombstones(ctx, database, cutoff)
	if err != nil {
		return nil, err
	}
	return out, nil
}
