package networking

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
)

var errNoPageMeta = errors.New("html document has no title, description or image")

// PageMeta is a response shape for HTML pages, filled from OG tags with plain HTML fallbacks.
type PageMeta struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	ImageURL    string `json:"image_url" yaml:"image_url"`
}

// UnmarshalBody implements BodyUnmarshaler.
func (m *PageMeta) UnmarshalBody(data []byte) error {
	if len(data) > maxHTMLBodyBytes {
		data = data[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	pm := PageMeta{
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			doc.Find("title").First().Text(),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: extract(`meta[property="og:image"]`),
	}
	if pm == (PageMeta{}) {
		return errNoPageMeta
	}

	*m = pm
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
