// Package planner converts a date range and search parameters into an ordered
// sequence of per-partition search URLs.
package planner

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
)

// DefaultBaseURL is the public document-search endpoint.
const DefaultBaseURL = "https://www.workplacerelations.ie/en/search/"

// bodyIDs maps the site's adjudicating-body keywords to their query identifiers.
var bodyIDs = map[string]string{
	"Employment Appeals Tribunal":    "2",
	"Equality Tribunal":              "1",
	"Labour Count":                   "3",
	"Workplace Relations Commission": "15376",
}

// Request carries the parameters of one harvesting run.
type Request struct {
	StartDate     time.Time
	EndDate       time.Time
	Query         string
	BodyKeywords  []string
	PartitionDays int
}

// Planner builds deterministic search URLs: same inputs always produce the
// same URL sequence.
type Planner struct {
	baseURL string
}

// New creates a Planner. An empty baseURL falls back to DefaultBaseURL.
func New(baseURL string) *Planner {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Planner{baseURL: baseURL}
}

// Plan walks from StartDate to EndDate in steps of PartitionDays, clamping the
// final window to EndDate, and yields one partition per window, earliest first.
func (p *Planner) Plan(req Request) ([]harvest.Partition, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	body, err := BodyParam(req.BodyKeywords)
	if err != nil {
		return nil, err
	}

	var parts []harvest.Partition
	for from := req.StartDate; !from.After(req.EndDate); from = from.AddDate(0, 0, req.PartitionDays) {
		to := from.AddDate(0, 0, req.PartitionDays-1)
		if to.After(req.EndDate) {
			to = req.EndDate
		}
		parts = append(parts, harvest.Partition{
			From:     from,
			To:       to,
			URL:      p.buildURL(req.Query, body, from, to),
			Category: body,
		})
	}
	return parts, nil
}

// BodyParam maps the given keywords to their identifiers, comma-joined in
// input order.
func BodyParam(keywords []string) (string, error) {
	if len(keywords) == 0 {
		return "", &harvest.ConfigError{Reason: "at least one body keyword is required"}
	}
	ids := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		id, ok := bodyIDs[strings.TrimSpace(kw)]
		if !ok {
			return "", &harvest.ConfigError{Reason: fmt.Sprintf("unknown body keyword %q", kw)}
		}
		ids = append(ids, id)
	}
	return strings.Join(ids, ","), nil
}

func validate(req Request) error {
	switch {
	case strings.TrimSpace(req.Query) == "":
		return &harvest.ConfigError{Reason: "query must not be empty"}
	case req.PartitionDays <= 0:
		return &harvest.ConfigError{Reason: fmt.Sprintf("partition days must be positive, got %d", req.PartitionDays)}
	case req.StartDate.After(req.EndDate):
		return &harvest.ConfigError{Reason: fmt.Sprintf(
			"start date %s is after end date %s",
			req.StartDate.Format(harvest.DateLayout),
			req.EndDate.Format(harvest.DateLayout),
		)}
	}
	return nil
}

func (p *Planner) buildURL(query, body string, from, to time.Time) string {
	q := url.Values{}
	q.Set("decisions", "1")
	q.Set("q", `"`+query+`"`)
	q.Set("from", from.Format(harvest.DateLayout))
	q.Set("to", to.Format(harvest.DateLayout))
	q.Set("body", body)
	return p.baseURL + "?" + q.Encode()
}
