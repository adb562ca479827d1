// Package ingest lands fully fetched records: fingerprint, blob write,
// metadata upsert.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
)

// Config controls Ingestor behavior.
type Config struct {
	// Topic, when set together with a publisher, receives one event per
	// ingested document.
	Topic string
	// RunID tags published events with the harvesting run.
	RunID string
}

// Ingestor writes raw bytes to the landing blob store and upserts metadata
// keyed by record Id.
type Ingestor struct {
	blobs     harvest.BlobStore
	meta      harvest.MetadataStore
	hasher    harvest.Hasher
	publisher harvest.Publisher
	cfg       Config
	logger    *zap.Logger
}

// New constructs an Ingestor. The publisher may be nil.
func New(
	blobs harvest.BlobStore,
	meta harvest.MetadataStore,
	hasher harvest.Hasher,
	publisher harvest.Publisher,
	cfg Config,
	logger *zap.Logger,
) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		blobs:     blobs,
		meta:      meta,
		hasher:    hasher,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Ingest lands one complete record. The object key is derived from the
// record's category folder, partition date, Id and extension, so re-ingesting
// the same record overwrites the same object instead of duplicating it. The
// transient fields are stripped before the metadata upsert.
func (i *Ingestor) Ingest(ctx context.Context, rec harvest.HarvestRecord) error {
	if err := rec.Complete(); err != nil {
		return err
	}

	hash, err := i.hasher.Hash(rec.RawContent)
	if err != nil {
		return fmt.Errorf("hash content for %s: %w", rec.ID, err)
	}
	rec.FileHash = hash

	key := ObjectKey(rec)
	storedPath, err := i.blobs.Put(ctx, key, rec.RawContent)
	if err != nil {
		return &harvest.StorageError{Op: "put", Key: key, Err: err}
	}
	rec.FilePath = storedPath

	rec.RawContent = nil
	rec.Category = ""

	if err := i.meta.UpsertLanding(ctx, rec); err != nil {
		return &harvest.StorageError{Op: "upsert", Key: rec.ID, Err: err}
	}

	i.logger.Debug("record landed",
		zap.String("id", rec.ID),
		zap.String("file_path", rec.FilePath),
		zap.String("file_hash", rec.FileHash),
	)
	i.publishEvent(ctx, rec)
	return nil
}

// ObjectKey derives the deterministic landing object key for a record:
// {category}_{partitionDate}/{Id}.{extension}.
func ObjectKey(rec harvest.HarvestRecord) string {
	return fmt.Sprintf("%s_%s/%s.%s", rec.Category, rec.PartitionDate, rec.ID, rec.FileType)
}

func (i *Ingestor) publishEvent(ctx context.Context, rec harvest.HarvestRecord) {
	if i.publisher == nil || i.cfg.Topic == "" {
		return
	}
	payload := map[string]any{
		"run_id":    i.cfg.RunID,
		"id":        rec.ID,
		"file_path": rec.FilePath,
		"file_hash": rec.FileHash,
		"file_type": rec.FileType,
		"partition": rec.PartitionDate,
	}
	if _, err := i.publisher.Publish(ctx, i.cfg.Topic, payload); err != nil {
		// Event delivery is advisory; ingestion already succeeded.
		i.logger.Warn("ingest event publish failed", zap.String("id", rec.ID), zap.Error(err))
	}
}
