package extractor

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/project-tktt/p24-scraper/internal/common/cleaner"
	"github.com/project-tktt/p24-scraper/internal/domain"
)

// breadcrumb entries that are navigation chrome rather than location levels
var breadcrumbNoise = map[string]struct{}{
	"|":                 {},
	">":                 {},
	"Back to Results":   {},
	"Property for Sale": {},
}

// readLessSuffix is the "read more" affordance text the site appends to the
// expanded description.
const readLessSuffix = " Read Less"

// fieldRule binds a selector to a transform and the default used when the
// selector matches nothing.
type fieldRule struct {
	selector  string
	fallback  string
	transform func(string) string
	assign    func(*domain.Listing, string)
}

// ExtractListing builds a listing record from a parsed detail page. Every
// field is extracted independently and best effort: a missing element sets
// the field's documented default and never disturbs the other fields. No
// network or registry access happens here.
func ExtractListing(doc *goquery.Document, sel Selectors, cl *cleaner.Cleaner, sourceURL string) *domain.Listing {
	l := &domain.Listing{URL: sourceURL}

	rules := []fieldRule{
		{
			selector: sel.Price,
			fallback: domain.ValueUnset,
			assign:   func(l *domain.Listing, v string) { l.Price = v },
		},
		{
			selector:  sel.Size,
			fallback:  domain.ValueUnset,
			transform: sizeText,
			assign:    func(l *domain.Listing, v string) { l.Size = v },
		},
		{
			selector: sel.Address,
			fallback: domain.AddressNotFound,
			assign:   func(l *domain.Listing, v string) { l.Address = v },
		},
		{
			selector: sel.ListingNo,
			fallback: domain.ValueUnset,
			assign:   func(l *domain.Listing, v string) { l.ListingNo = v },
		},
	}

	for _, r := range rules {
		node := doc.Find(r.selector).First()
		if node.Length() == 0 {
			r.assign(l, r.fallback)
			continue
		}
		v := strings.TrimSpace(node.Text())
		if r.transform != nil {
			v = r.transform(v)
		}
		r.assign(l, v)
	}

	l.Description = extractDescription(doc, sel, cl)
	extractFeatures(doc, sel, l)
	extractLocation(doc, sel, l)

	if img, ok := doc.Find(sel.ImageWrapper).First().Attr(sel.ImageAttr); ok {
		l.ImageURL = img
	}

	return l
}

// sizeText keeps the text before the first colon and strips the superscript
// left over from the site's m² markup.
func sizeText(text string) string {
	if idx := strings.Index(text, ":"); idx >= 0 {
		text = strings.TrimSpace(text[:idx])
	}
	return cleaner.StripArtifacts(text)
}

func extractDescription(doc *goquery.Document, sel Selectors, cl *cleaner.Cleaner) string {
	node := doc.Find(sel.Description).First()
	if node.Length() == 0 {
		node = doc.Find(sel.DescriptionFallback).First()
	}
	if node.Length() == 0 {
		return domain.ValueUnset
	}

	html, err := node.Html()
	if err != nil {
		return domain.ValueUnset
	}
	text := cl.CleanToText(html)
	text = strings.ReplaceAll(text, readLessSuffix, "")
	text = cleaner.CleanDescription(text)
	return cleaner.StripArtifacts(text)
}

// extractFeatures walks the feature rows. A row with a colon is promoted to
// a top-level key:value field; anything else lands in the features list.
func extractFeatures(doc *goquery.Document, sel Selectors, l *domain.Listing) {
	doc.Find(sel.Features).Each(func(_ int, node *goquery.Selection) {
		text := strings.TrimSpace(node.Text())
		if text == "" {
			return
		}
		if key, val, found := strings.Cut(text, ":"); found && strings.TrimSpace(key) != "" {
			if l.Extras == nil {
				l.Extras = make(map[string]string)
			}
			l.Extras[strings.TrimSpace(key)] = strings.TrimSpace(val)
			return
		}
		l.Features = append(l.Features, text)
	})
}

// extractLocation mines the breadcrumb trail for up to three location
// levels, skipping separators and page-number entries. Fewer crumbs leave
// the later levels absent.
func extractLocation(doc *goquery.Document, sel Selectors, l *domain.Listing) {
	var crumbs []string
	doc.Find(sel.Breadcrumbs).Each(func(_ int, node *goquery.Selection) {
		text := strings.TrimSpace(node.Text())
		if text == "" || isNumeric(text) {
			return
		}
		if _, noise := breadcrumbNoise[text]; noise {
			return
		}
		crumbs = append(crumbs, text)
	})

	if len(crumbs) >= 1 {
		l.Province = crumbs[0]
	}
	if len(crumbs) >= 2 {
		l.City = crumbs[1]
	}
	if len(crumbs) >= 3 {
		l.Town = crumbs[2]
	}
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
