package promote

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors are tried in order when looking for the primary content
// region of a landed page.
var contentSelectors = []string{"main", "div.main-content", "body"}

// NormalizeHTML collapses a markup document to its visible text. The primary
// content container is used when present, otherwise the whole document;
// scripts and styles are dropped and text segments are joined by single spaces.
func NormalizeHTML(raw []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var sel *goquery.Selection
	for _, selector := range contentSelectors {
		if s := doc.Find(selector).First(); s.Length() > 0 {
			sel = s
			break
		}
	}

	var text string
	if sel != nil {
		text = sel.Text()
	} else {
		text = doc.Text()
	}
	return []byte(strings.Join(strings.Fields(text), " ")), nil
}
