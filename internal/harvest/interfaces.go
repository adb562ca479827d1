package harvest

import (
	"context"
	"time"
)

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Fetcher retrieves a URL and returns the response body plus metadata.
// Retries, throttling and politeness live inside the implementation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// BlobStore writes and reads raw document bytes in one logical bucket.
// Put returns the stored path in "bucket/key" form. Get reports a missing
// object by wrapping ErrObjectNotFound.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Bucket() string
}

// MetadataStore persists harvest metadata in the landing and staging
// collections. Upserts are keyed by record Id: re-running a harvest refreshes
// fields instead of creating duplicate rows.
type MetadataStore interface {
	UpsertLanding(ctx context.Context, rec HarvestRecord) error
	FindLanding(ctx context.Context, from, to time.Time) ([]HarvestRecord, error)
	UpsertStaging(ctx context.Context, rec StagingRecord) error
	Close(ctx context.Context) error
}

// Publisher pushes ingestion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Hasher computes content fingerprints for integrity and dedup.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}
