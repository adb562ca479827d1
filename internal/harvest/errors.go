package harvest

import (
	"errors"
	"fmt"
)

// ErrObjectNotFound is wrapped by BlobStore implementations when a requested
// object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ConfigError reports invalid run parameters. It is fatal and surfaces before
// any fetch begins.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// ExtractionError reports a result row missing a required field. Rows that
// fail extraction are skipped with a warning; the walk continues.
type ExtractionError struct {
	Field   string
	PageURL string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("row on %s is missing %s", e.PageURL, e.Field)
}

// FetchError reports a network or HTTP failure. During crawling it aborts only
// the branch that needed the response; during promotion it is caught per record.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StorageError reports a blob or metadata write/read failure.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
