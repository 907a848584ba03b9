package cleaner

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// artifactPattern matches superscript and accent characters that leak out of
// the site's area (m²) and degree markup into extracted text.
var artifactPattern = regexp.MustCompile("[²³é°±]")

var whitespacePattern = regexp.MustCompile(`\s+`)

// Cleaner turns extracted HTML fragments into clean plain text.
type Cleaner struct {
	policy *bluemonday.Policy
}

// NewCleaner creates a cleaner that strips all markup.
func NewCleaner() *Cleaner {
	return &Cleaner{policy: bluemonday.StrictPolicy()}
}

// CleanToText removes all HTML and collapses runs of whitespace to single
// spaces.
func (c *Cleaner) CleanToText(html string) string {
	text := c.policy.Sanitize(html)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// StripArtifacts removes stray superscript/accent characters.
func StripArtifacts(s string) string {
	return artifactPattern.ReplaceAllString(s, "")
}

// CleanDescription undoes the site's occasional duplication of description
// text: when the first half of the string equals the second half after
// trimming, only the first half is kept. Already-clean input comes back
// trimmed and otherwise unchanged, so the function is idempotent.
func CleanDescription(desc string) string {
	runes := []rune(desc)
	half := len(runes) / 2
	first := strings.TrimSpace(string(runes[:half]))
	second := strings.TrimSpace(string(runes[half:]))
	if first == second {
		return first
	}
	return strings.TrimSpace(desc)
}
