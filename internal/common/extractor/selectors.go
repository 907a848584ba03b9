package extractor

// Selectors defines the CSS selectors driving extraction. Kept in one place
// so a site markup change is a data edit, not a control-flow edit.
type Selectors struct {
	// Search result pages
	Anchor string

	// Listing pages
	Price               string
	Size                string
	Description         string
	DescriptionFallback string
	Features            string
	Address             string
	Breadcrumbs         string
	ListingNo           string
	ImageWrapper        string
	ImageAttr           string
}

// DefaultSelectors returns the current Property24 markup bindings.
func DefaultSelectors() Selectors {
	return Selectors{
		Anchor:              "a[href]",
		Price:               ".p24_price",
		Size:                ".p24_size",
		Description:         ".js_readMoreText",
		DescriptionFallback: ".js_readMoreContainer",
		Features:            ".p24_listingFeatures",
		Address:             ".p24_addressPropOverview",
		Breadcrumbs:         "#breadCrumbContainer li:not(:first-child)",
		ListingNo:           ".p24_propertyOverviewRow:nth-child(1) .p24_info",
		ImageWrapper:        "div[class*='js_lightboxImageWrapper']",
		ImageAttr:           "data-image-url",
	}
}
