package domain

import "encoding/json"

// Sentinel values substituted when an expected element is missing from a page.
const (
	// ValueUnset marks a field whose element was not found. A listing whose
	// number equals this sentinel is never deduplicated: it is always kept.
	ValueUnset = "unset"
	// AddressNotFound marks a listing page without an address block.
	AddressNotFound = "not found"
)

// Listing is the structured record extracted from one property detail page.
// Immutable once built; either appended to the run's result set or dropped
// as a duplicate.
type Listing struct {
	Price       string
	Size        string
	Description string
	Features    []string
	Address     string

	// Breadcrumb hierarchy, populated left to right. Empty means the level
	// was absent and the key is omitted from the JSON output entirely.
	Province string
	City     string
	Town     string

	// ListingNo is the site-assigned listing number, the primary dedup key.
	ListingNo string
	ImageURL  string
	URL       string

	// Extras holds key:value rows promoted out of the feature block
	// (e.g. "Bedrooms": "3"). Serialized as top-level fields.
	Extras map[string]string
}

// MarshalJSON flattens Extras into the top-level object and omits absent
// location levels and the image URL when missing.
func (l *Listing) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(l.Extras)+12)
	m["price"] = l.Price
	m["size"] = l.Size
	m["description"] = l.Description
	if l.Features == nil {
		m["features"] = []string{}
	} else {
		m["features"] = l.Features
	}
	m["address"] = l.Address
	if l.Province != "" {
		m["province"] = l.Province
	}
	if l.City != "" {
		m["city"] = l.City
	}
	if l.Town != "" {
		m["town"] = l.Town
	}
	m["listing_no"] = l.ListingNo
	if l.ImageURL != "" {
		m["image_url"] = l.ImageURL
	}
	m["url"] = l.URL
	for k, v := range l.Extras {
		if _, taken := m[k]; !taken {
			m[k] = v
		}
	}
	return json.Marshal(m)
}
