package walker

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
)

// Selectors for the site's search-results markup.
const (
	rowSelector  = ".search-result"
	linkSelector = "h3 a, h2 a, a"
	refSelector  = ".search-result-reference, .refno"
	dateSelector = ".search-result-date, .date"
	descSelector = "p"
)

// binaryExtensions lists the document suffixes followed as raw bytes.
var binaryExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
}

var idSlugChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// classifyExtension decides binary vs. markup handling for a document URL.
// A URL whose path ends in .pdf/.doc/.docx (any case) is binary with the
// lowercased extension as file type; everything else is markup.
func classifyExtension(rawURL string) (fileType string, binary bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "html", false
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if _, ok := binaryExtensions[ext]; ok {
		return ext, true
	}
	return "html", false
}

// extractRow turns one result row into a partial HarvestRecord. The document
// link is resolved against the page URL. A row without a resolvable link or a
// derivable Id fails with an ExtractionError and is skipped by the caller.
func extractRow(row *goquery.Selection, pageURL *url.URL, part harvest.Partition) (harvest.HarvestRecord, error) {
	link := row.Find(linkSelector).First()
	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return harvest.HarvestRecord{}, &harvest.ExtractionError{Field: "documentURL", PageURL: pageURL.String()}
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return harvest.HarvestRecord{}, &harvest.ExtractionError{Field: "documentURL", PageURL: pageURL.String()}
	}
	docURL := pageURL.ResolveReference(ref)

	id := strings.TrimSpace(row.Find(refSelector).First().Text())
	if id == "" {
		id = idFromURL(docURL)
	}
	if id == "" {
		return harvest.HarvestRecord{}, &harvest.ExtractionError{Field: "Id", PageURL: pageURL.String()}
	}

	return harvest.HarvestRecord{
		ID:            id,
		Title:         strings.TrimSpace(link.Text()),
		Description:   strings.TrimSpace(row.Find(descSelector).First().Text()),
		Date:          strings.TrimSpace(row.Find(dateSelector).First().Text()),
		PartitionDate: part.Key(),
		PartitionTS:   part.From,
		SourceURL:     pageURL.String(),
		DocumentURL:   docURL.String(),
		Category:      part.Category,
	}, nil
}

// idFromURL derives a record Id from the last path segment of the document
// URL, with any extension stripped.
func idFromURL(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// attachmentID derives the Id for an embedded binary record so the page and
// its attachments each keep one metadata row under upsert-by-Id.
func attachmentID(rowID, attachmentURL string) string {
	base := attachmentURL
	if u, err := url.Parse(attachmentURL); err == nil {
		base = path.Base(u.Path)
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	base = idSlugChars.ReplaceAllString(base, "_")
	if base == "" {
		return rowID
	}
	return rowID + "-" + base
}

// extractBinaryLinks scans a markup document for anchors pointing at binary
// attachments, resolved against the document's own URL and deduplicated.
func extractBinaryLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if _, binary := classifyExtension(resolved.String()); !binary {
			return
		}
		s := resolved.String()
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		links = append(links, s)
	})
	return links
}
