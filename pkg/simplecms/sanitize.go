package simplecms

import (
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// WordsPerMinute is the reading speed used for article reading time.
const WordsPerMinute = 200

var plainText = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// EstimateReadingTime strips markup from html and returns the reading time in
// whole minutes, rounded up, never less than one.
func EstimateReadingTime(html string) int {
	words := len(strings.Fields(plainText.Sanitize(html)))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// HTMLSanitizer removes unsafe markup from rich text while keeping the
// formatting an editor produces.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer returns a sanitizer based on bluemonday's user generated
// content policy.
func NewHTMLSanitizer() *HTMLSanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("pre", "code", "span", "div", "figure", "img")
	return &HTMLSanitizer{policy: p}
}

func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
