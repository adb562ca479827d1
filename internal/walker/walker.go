// Package walker implements the crawl state machine: it fetches result pages,
// extracts rows, follows and classifies documents, and paginates until a
// partition is exhausted.
package walker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
	"github.com/kedra-data/wrc-harvester/internal/metrics"
)

// Sink receives each fully fetched record. The landing ingestor implements it.
type Sink interface {
	Ingest(ctx context.Context, rec harvest.HarvestRecord) error
}

// Config controls Walker behavior.
type Config struct {
	// PageParam is the results-page query parameter. Defaults to "page".
	PageParam string
	// FollowConcurrency bounds parallel document follows per page. Defaults to 4.
	FollowConcurrency int
	// PartitionConcurrency bounds parallel partition walks. Defaults to 2.
	PartitionConcurrency int
}

func (c Config) withDefaults() Config {
	if c.PageParam == "" {
		c.PageParam = "page"
	}
	if c.FollowConcurrency <= 0 {
		c.FollowConcurrency = 4
	}
	if c.PartitionConcurrency <= 0 {
		c.PartitionConcurrency = 2
	}
	return c
}

// Walker drives the crawl over one or more partitions.
type Walker struct {
	fetcher harvest.Fetcher
	sink    Sink
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Walker.
func New(fetcher harvest.Fetcher, sink Sink, cfg Config, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		fetcher: fetcher,
		sink:    sink,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

// Run walks all partitions, bounded-parallel. Partition walks are independent;
// a failed partition does not stop the others. The joined errors are returned.
func (w *Walker) Run(ctx context.Context, parts []harvest.Partition) error {
	sem := make(chan struct{}, w.cfg.PartitionConcurrency)
	errs := make([]error, len(parts))
	var wg sync.WaitGroup
	for i, part := range parts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, part harvest.Partition) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := w.WalkPartition(ctx, part); err != nil {
				errs[i] = fmt.Errorf("partition %s: %w", part.Key(), err)
			}
		}(i, part)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// WalkPartition paginates through one partition's result pages, following and
// ingesting every discovered document. Within a partition pages are strictly
// sequential: the next page URL depends on the current page's row count. The
// walk stops at the first empty page.
func (w *Walker) WalkPartition(ctx context.Context, part harvest.Partition) error {
	pageURL := part.URL
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := w.walkPage(ctx, pageURL, part)
		if err != nil {
			return err
		}
		if rows == 0 {
			w.logger.Info("partition exhausted",
				zap.String("partition", part.Key()),
				zap.Int("pages", page),
			)
			return nil
		}
		next, err := nextPageURL(pageURL, w.cfg.PageParam)
		if err != nil {
			return err
		}
		pageURL = next
	}
}

// walkPage fetches one results page, extracts its rows and follows each
// document concurrently. It returns the number of rows found in the markup;
// rows skipped for missing fields still count toward pagination.
func (w *Walker) walkPage(ctx context.Context, rawURL string, part harvest.Partition) (int, error) {
	resp, err := w.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	metrics.PageFetched(part.Key())

	pageURL, err := url.Parse(resp.URL)
	if err != nil {
		return 0, &harvest.FetchError{URL: rawURL, Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return 0, &harvest.FetchError{URL: rawURL, Err: fmt.Errorf("parse results page: %w", err)}
	}

	rows := doc.Find(rowSelector)
	var partials []harvest.HarvestRecord
	rows.Each(func(_ int, row *goquery.Selection) {
		rec, extractErr := extractRow(row, pageURL, part)
		if extractErr != nil {
			metrics.RowSkipped()
			w.logger.Warn("row skipped", zap.String("page", pageURL.String()), zap.Error(extractErr))
			return
		}
		partials = append(partials, rec)
	})

	sem := make(chan struct{}, w.cfg.FollowConcurrency)
	var wg sync.WaitGroup
	for _, rec := range partials {
		wg.Add(1)
		sem <- struct{}{}
		go func(rec harvest.HarvestRecord) {
			defer wg.Done()
			defer func() { <-sem }()
			w.followDocument(ctx, rec)
		}(rec)
	}
	wg.Wait()

	return rows.Length(), nil
}

// followDocument fetches the row's document, classifies it, and hands the
// completed record(s) to the sink. A markup document additionally fans out
// into one record per embedded binary attachment. Failures abort only this
// row's branch.
func (w *Walker) followDocument(ctx context.Context, rec harvest.HarvestRecord) {
	fileType, binary := classifyExtension(rec.DocumentURL)
	rec.FileType = fileType

	resp, err := w.fetcher.Fetch(ctx, rec.DocumentURL)
	if err != nil {
		w.logger.Error("document fetch failed", zap.String("id", rec.ID), zap.String("url", rec.DocumentURL), zap.Error(err))
		return
	}
	rec.RawContent = resp.Body
	w.deliver(ctx, rec)

	if binary {
		return
	}

	base, err := url.Parse(resp.URL)
	if err != nil {
		return
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		w.logger.Warn("attachment scan failed", zap.String("id", rec.ID), zap.Error(err))
		return
	}
	for _, link := range extractBinaryLinks(doc, base) {
		w.followAttachment(ctx, rec, link)
	}
}

// followAttachment fetches one embedded binary link as a derived record that
// shares the row's descriptive fields.
func (w *Walker) followAttachment(ctx context.Context, parent harvest.HarvestRecord, link string) {
	child := parent
	child.ID = attachmentID(parent.ID, link)
	child.DocumentURL = link
	child.FileType, _ = classifyExtension(link)

	resp, err := w.fetcher.Fetch(ctx, link)
	if err != nil {
		w.logger.Error("attachment fetch failed", zap.String("id", child.ID), zap.String("url", link), zap.Error(err))
		return
	}
	child.RawContent = resp.Body
	w.deliver(ctx, child)
}

func (w *Walker) deliver(ctx context.Context, rec harvest.HarvestRecord) {
	if err := w.sink.Ingest(ctx, rec); err != nil {
		metrics.IngestFailed()
		w.logger.Error("ingest failed", zap.String("id", rec.ID), zap.Error(err))
		return
	}
	metrics.DocumentHarvested(rec.FileType)
}

// nextPageURL strips any existing page-number parameter from the current URL
// and appends the incremented one. A URL without the parameter counts as page 1.
func nextPageURL(current, param string) (string, error) {
	u, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	q := u.Query()
	page := 1
	if v := q.Get(param); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			page = n
		}
	}
	q.Set(param, strconv.Itoa(page+1))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
