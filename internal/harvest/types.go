// Package harvest defines the core types and capability interfaces shared
// across the harvesting and promotion pipeline.
package harvest

import (
	"fmt"
	"time"
)

// Date layouts used at the configuration and storage boundaries.
const (
	// DateLayout is the site's dd/mm/yyyy format, used in search URLs and CLI flags.
	DateLayout = "02/01/2006"
	// PartitionLayout is the normalized dd-mm-yyyy partition identifier.
	PartitionLayout = "02-01-2006"
	// ProcessedLayout is the timestamp format stamped on promoted records.
	ProcessedLayout = "02-01-2006 15:04:05"
)

// Partition is one half-open date sub-window of a harvesting run. It bounds a
// single search query and later groups landing records into promotion batches.
type Partition struct {
	// From is the first day of the window (inclusive).
	From time.Time
	// To is the last day of the window (inclusive, clamped to the run's end date).
	To time.Time
	// URL is the first results page for this window.
	URL string
	// Category labels the landing folder for documents discovered in this window.
	Category string
}

// Key returns the normalized partition identifier derived from the window start.
func (p Partition) Key() string {
	return p.From.Format(PartitionLayout)
}

// HarvestRecord is built incrementally across the crawl: row extraction fills
// the descriptive fields, the document follow fills FileType and RawContent,
// and ingestion fills FileHash and FilePath.
type HarvestRecord struct {
	ID            string    `json:"Id" bson:"Id"`
	Title         string    `json:"title" bson:"title"`
	Description   string    `json:"description" bson:"description"`
	Date          string    `json:"date" bson:"date"`
	PartitionDate string    `json:"partitionDate" bson:"partitionDate"`
	PartitionTS   time.Time `json:"partitionTs" bson:"partitionTs"`
	SourceURL     string    `json:"sourceURL" bson:"sourceURL"`
	DocumentURL   string    `json:"documentURL" bson:"documentURL"`
	FileType      string    `json:"fileType" bson:"fileType"`
	FilePath      string    `json:"filePath,omitempty" bson:"filePath,omitempty"`
	FileHash      string    `json:"fileHash,omitempty" bson:"fileHash,omitempty"`

	// RawContent carries the fetched bytes between the document follow and
	// ingestion. It must never reach a metadata store.
	RawContent []byte `json:"-" bson:"-"`

	// Category routes the record to its landing folder. Transient, like RawContent.
	Category string `json:"-" bson:"-"`
}

// Complete reports whether the record has every field ingestion requires.
// Ingestion refuses partial records so that a cancelled crawl never upserts one.
func (r HarvestRecord) Complete() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("record is missing Id (document %s)", r.DocumentURL)
	case r.DocumentURL == "":
		return fmt.Errorf("record %s is missing documentURL", r.ID)
	case r.FileType == "":
		return fmt.Errorf("record %s is missing fileType", r.ID)
	case r.RawContent == nil:
		return fmt.Errorf("record %s has no raw content", r.ID)
	}
	return nil
}

// StagingRecord is the promoted form of a landing record: same identity and
// descriptive fields, staging-bucket FilePath/FileHash, plus a processing stamp.
type StagingRecord struct {
	HarvestRecord `bson:",inline"`

	ProcessedDate string `json:"processedDate" bson:"processedDate"`
}
