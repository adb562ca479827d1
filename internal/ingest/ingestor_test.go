package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
	"github.com/kedra-data/wrc-harvester/internal/hash/sha256"
	metamem "github.com/kedra-data/wrc-harvester/internal/metastore/memory"
	pubmem "github.com/kedra-data/wrc-harvester/internal/publisher/memory"
	blobmem "github.com/kedra-data/wrc-harvester/internal/storage/memory"
)

func completeRecord(t *testing.T) harvest.HarvestRecord {
	t.Helper()
	ts, err := time.Parse(harvest.DateLayout, "01/01/2024")
	require.NoError(t, err)
	return harvest.HarvestRecord{
		ID:            "ADJ-100",
		Title:         "A Worker v An Employer",
		Description:   "Unfair dismissal complaint.",
		Date:          "12/01/2024",
		PartitionDate: "01-01-2024",
		PartitionTS:   ts,
		SourceURL:     "http://wrc.test/en/search/",
		DocumentURL:   "http://wrc.test/docs/ADJ-100.pdf",
		FileType:      "pdf",
		RawContent:    []byte("%PDF-1.4 decision"),
		Category:      "3",
	}
}

func TestIngestLandsRecord(t *testing.T) {
	t.Parallel()

	blobs := blobmem.NewBlobStore("landing")
	meta := metamem.NewStore()
	ing := New(blobs, meta, sha256.New(), nil, Config{}, zap.NewNop())

	rec := completeRecord(t)
	require.NoError(t, ing.Ingest(context.Background(), rec))

	data, err := blobs.Get(context.Background(), "3_01-01-2024/ADJ-100.pdf")
	require.NoError(t, err)
	require.Equal(t, rec.RawContent, data)

	stored, ok := meta.Landing("ADJ-100")
	require.True(t, ok)
	require.Equal(t, "landing/3_01-01-2024/ADJ-100.pdf", stored.FilePath)
	require.Len(t, stored.FileHash, 64)
	require.Nil(t, stored.RawContent, "raw bytes must not reach the metadata store")
	require.Empty(t, stored.Category)
	require.Equal(t, rec.Title, stored.Title)
}

func TestIngestIsIdempotent(t *testing.T) {
	t.Parallel()

	blobs := blobmem.NewBlobStore("landing")
	meta := metamem.NewStore()
	ing := New(blobs, meta, sha256.New(), nil, Config{}, zap.NewNop())

	rec := completeRecord(t)
	require.NoError(t, ing.Ingest(context.Background(), rec))
	require.NoError(t, ing.Ingest(context.Background(), rec))

	require.Equal(t, 1, blobs.Len())
	require.Equal(t, 1, meta.LandingCount())
}

func TestIngestRejectsIncompleteRecord(t *testing.T) {
	t.Parallel()

	blobs := blobmem.NewBlobStore("landing")
	meta := metamem.NewStore()
	ing := New(blobs, meta, sha256.New(), nil, Config{}, zap.NewNop())

	rec := completeRecord(t)
	rec.RawContent = nil
	require.Error(t, ing.Ingest(context.Background(), rec))
	require.Zero(t, blobs.Len())
	require.Zero(t, meta.LandingCount())
}

func TestIngestWrapsStorageFailures(t *testing.T) {
	t.Parallel()

	meta := metamem.NewStore()
	ing := New(failingBlobStore{}, meta, sha256.New(), nil, Config{}, zap.NewNop())

	err := ing.Ingest(context.Background(), completeRecord(t))
	var storageErr *harvest.StorageError
	require.ErrorAs(t, err, &storageErr)
	require.Equal(t, "put", storageErr.Op)
	require.Zero(t, meta.LandingCount())
}

func TestIngestPublishesEvent(t *testing.T) {
	t.Parallel()

	blobs := blobmem.NewBlobStore("landing")
	meta := metamem.NewStore()
	pub := pubmem.New()
	ing := New(blobs, meta, sha256.New(), pub, Config{Topic: "harvested", RunID: "run-1"}, zap.NewNop())

	require.NoError(t, ing.Ingest(context.Background(), completeRecord(t)))

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "harvested", msgs[0].Topic)
	payload, ok := msgs[0].Payload.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "run-1", payload["run_id"])
	require.Equal(t, "ADJ-100", payload["id"])
}

func TestObjectKeyIsDeterministic(t *testing.T) {
	t.Parallel()

	rec := completeRecord(t)
	require.Equal(t, "3_01-01-2024/ADJ-100.pdf", ObjectKey(rec))
	require.Equal(t, ObjectKey(rec), ObjectKey(rec))
}

type failingBlobStore struct{}

func (failingBlobStore) Put(context.Context, string, []byte) (string, error) {
	return "", errors.New("bucket unavailable")
}

func (failingBlobStore) Get(context.Context, string) ([]byte, error) {
	return nil, harvest.ErrObjectNotFound
}

func (failingBlobStore) Bucket() string { return "landing" }
