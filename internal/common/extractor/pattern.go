package extractor

import (
	"regexp"
	"strings"
)

// Host is the fixed site host used to absolutize root-relative links.
const Host = "https://www.property24.com"

// listingURLPattern matches canonical for-sale detail pages: three path
// segments followed by the numeric area and listing ids. Search pages,
// navigation links and the honeypot links seeded into search results all
// fail this pattern.
var listingURLPattern = regexp.MustCompile(
	`(?i)^https://(www\.)?property24\.com/for-sale/.+?/.+?/.+?/\d+/\d+/?(\?.*)?$`)

// NormalizeLink rewrites root-relative hrefs to absolute form against Host.
// Already-absolute links pass through unchanged.
func NormalizeLink(href string) string {
	if strings.HasPrefix(href, "/") {
		return Host + href
	}
	return href
}

// IsListingURL reports whether u points at a property detail page.
func IsListingURL(u string) bool {
	return listingURLPattern.MatchString(u)
}
