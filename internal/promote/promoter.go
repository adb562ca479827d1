// Package promote re-derives content from landing records and promotes it
// into the staging stores, isolating per-record failures.
package promote

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
	"github.com/kedra-data/wrc-harvester/internal/metrics"
)

// Summary aggregates the per-record outcomes of one promotion run.
type Summary struct {
	Found    int
	Promoted int
	Failed   int
}

// Promoter iterates landing metadata over a date range, normalizes markup
// content, and upserts the result into staging.
type Promoter struct {
	landing harvest.BlobStore
	staging harvest.BlobStore
	meta    harvest.MetadataStore
	hasher  harvest.Hasher
	clock   harvest.Clock
	logger  *zap.Logger
}

// New constructs a Promoter.
func New(
	landing harvest.BlobStore,
	staging harvest.BlobStore,
	meta harvest.MetadataStore,
	hasher harvest.Hasher,
	clock harvest.Clock,
	logger *zap.Logger,
) *Promoter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Promoter{
		landing: landing,
		staging: staging,
		meta:    meta,
		hasher:  hasher,
		clock:   clock,
		logger:  logger,
	}
}

// Run promotes every landing record whose partition date falls in [from, to].
// Each record is processed independently: a failure is logged with the
// record's Id and counted, and the batch continues.
func (p *Promoter) Run(ctx context.Context, from, to time.Time) (Summary, error) {
	recs, err := p.meta.FindLanding(ctx, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("query landing metadata: %w", err)
	}
	p.logger.Info("promotion started",
		zap.Int("records", len(recs)),
		zap.String("from", from.Format(harvest.PartitionLayout)),
		zap.String("to", to.Format(harvest.PartitionLayout)),
	)

	batch := BatchFolder(from, to)
	summary := Summary{Found: len(recs)}
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := p.promoteRecord(ctx, rec, batch); err != nil {
			summary.Failed++
			metrics.PromoteFailed()
			p.logger.Error("record promotion failed", zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		summary.Promoted++
		metrics.RecordPromoted()
	}

	p.logger.Info("promotion finished",
		zap.Int("promoted", summary.Promoted),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// BatchFolder names the staging folder for one promotion run's date range.
func BatchFolder(from, to time.Time) string {
	return fmt.Sprintf("from_%s_to_%s",
		from.Format(harvest.PartitionLayout),
		to.Format(harvest.PartitionLayout),
	)
}

func (p *Promoter) promoteRecord(ctx context.Context, rec harvest.HarvestRecord, batch string) error {
	key := objectKeyFromPath(rec.FilePath, p.landing.Bucket())
	data, err := p.landing.Get(ctx, key)
	if err != nil {
		return &harvest.StorageError{Op: "get", Key: key, Err: err}
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
	if ext == "" {
		ext = rec.FileType
	}
	if ext == "html" || ext == "htm" {
		data, err = NormalizeHTML(data)
		if err != nil {
			return fmt.Errorf("normalize %s: %w", rec.ID, err)
		}
	}

	hash, err := p.hasher.Hash(data)
	if err != nil {
		return fmt.Errorf("hash content: %w", err)
	}

	stagingKey := fmt.Sprintf("%s/%s.%s", batch, rec.ID, ext)
	storedPath, err := p.staging.Put(ctx, stagingKey, data)
	if err != nil {
		return &harvest.StorageError{Op: "put", Key: stagingKey, Err: err}
	}

	stg := harvest.StagingRecord{
		HarvestRecord: rec,
		ProcessedDate: p.clock.Now().UTC().Format(harvest.ProcessedLayout),
	}
	stg.FilePath = storedPath
	stg.FileHash = hash

	if err := p.meta.UpsertStaging(ctx, stg); err != nil {
		return &harvest.StorageError{Op: "upsert", Key: rec.ID, Err: err}
	}
	return nil
}

// objectKeyFromPath strips the "bucket/" prefix a landing FilePath carries.
func objectKeyFromPath(filePath, bucket string) string {
	return strings.TrimPrefix(filePath, bucket+"/")
}
