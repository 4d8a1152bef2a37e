// Package extractor reads review records out of a rendered product page.
package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"review-harvester/pkg/models"
)

const (
	wrapperClass   = "list--itemContentTop--rXVH5KH"
	contentClass   = "list--itemContentTopLeft--jv7Zzf1"
	starSelector   = ".comet-icon-starreviewfilled"
	textSelector   = ".list--itemReview--d9Z9Z5Z"
	imageSelector  = ".list--itemThumbnails--TtUDHhl img"
	thumbnailTrail = "_220x220.jpg_.webp"
)

// ItemSelector matches both item shapes
const ItemSelector = "." + wrapperClass + ", ." + contentClass

// ScopeProbes are the containers that may hold the full review list, in
// priority order. The first one that contains items wins.
var ScopeProbes = []string{
	".review-modal",
	".feedback-modal",
	".comet-v2-drawer-content",
	".comet-v2-modal-content",
	`[class*="modal"][class*="review"]`,
	`[class*="drawer"][class*="review"]`,
	`[role="dialog"]`,
}

// shapeProbe resolves the node holding an item's rating and text.
// withImages reports whether the shape carries thumbnails.
type shapeProbe struct {
	name       string
	content    func(item *goquery.Selection) *goquery.Selection
	withImages bool
}

var shapeProbes = []shapeProbe{
	{
		name: "left-content",
		content: func(item *goquery.Selection) *goquery.Selection {
			if item.HasClass(contentClass) {
				return item
			}
			return nil
		},
	},
	{
		name: "wrapper",
		content: func(item *goquery.Selection) *goquery.Selection {
			if !item.HasClass(wrapperClass) {
				return nil
			}
			inner := item.Find("." + contentClass).First()
			if inner.Length() == 0 {
				return nil
			}
			return inner
		},
		withImages: true,
	},
}

// Extract parses the page snapshot and returns its reviews in document order
func Extract(html, pageURL string) ([]models.ReviewDraft, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	return ExtractDocument(doc, base), nil
}

// ExtractDocument reads reviews from an already parsed document.
// base may be nil, in which case image sources are kept as found.
func ExtractDocument(doc *goquery.Document, base *url.URL) []models.ReviewDraft {
	items := scopeItems(doc)

	drafts := make([]models.ReviewDraft, 0, items.Length())
	items.Each(func(_ int, item *goquery.Selection) {
		if draft, ok := extractItem(item, base); ok {
			drafts = append(drafts, draft)
		}
	})
	return drafts
}

func scopeItems(doc *goquery.Document) *goquery.Selection {
	for _, scope := range ScopeProbes {
		items := doc.Find(scope + " ." + wrapperClass + ", " + scope + " ." + contentClass)
		if items.Length() > 0 {
			return items
		}
	}
	return doc.Find(ItemSelector)
}

func extractItem(item *goquery.Selection, base *url.URL) (models.ReviewDraft, bool) {
	for _, shape := range shapeProbes {
		content := shape.content(item)
		if content == nil {
			continue
		}

		draft := models.ReviewDraft{
			Rating: content.Find(starSelector).Length(),
			Text:   strings.TrimSpace(content.Find(textSelector).First().Text()),
			Images: []string{},
		}
		if shape.withImages {
			draft.Images = images(item, base)
		}
		return draft, true
	}
	return models.ReviewDraft{}, false
}

func images(item *goquery.Selection, base *url.URL) []string {
	found := []string{}
	item.Find(imageSelector).Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		src = strings.TrimSpace(src)
		if !ok || src == "" {
			return
		}
		found = append(found, strings.TrimSuffix(resolve(base, src), thumbnailTrail))
	})
	return found
}

func resolve(base *url.URL, src string) string {
	ref, err := url.Parse(src)
	if err != nil || base == nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
