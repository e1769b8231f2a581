package simplecms

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Slugify derives a URL-safe slug from a title: lowercase ASCII letters and
// digits, with every other run of characters collapsed into a single hyphen
// and no leading or trailing hyphen. "Hello World!" becomes "hello-world".
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingSep := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// ValidSlug reports whether slug is already in canonical form.
func ValidSlug(slug string) bool {
	return slug != "" && len(slug) <= maxSlugLength && slugPattern.MatchString(slug)
}

// slugOwnerFunc looks up which entity currently holds a slug.
type slugOwnerFunc func(ctx context.Context, slug string) (uuid.UUID, error)

// isSlugAvailable reports whether no entity other than excludeID holds slug.
// The resolver never suffixes or renames: a taken slug is the caller's
// problem.
func isSlugAvailable(ctx context.Context, owner slugOwnerFunc, slug string, excludeID uuid.UUID) (bool, error) {
	holder, err := owner(ctx, slug)
	if err != nil {
		return false, err
	}
	return holder == uuid.Nil || (excludeID != uuid.Nil && holder == excludeID), nil
}

// resolveSlug returns the explicit slug when given, otherwise one derived
// from the title. Derived slugs longer than maxSlugLength are cut at the last
// word boundary that fits; explicit slugs must already fit.
func resolveSlug(title, explicit string) (string, error) {
	if explicit != "" {
		if !ValidSlug(explicit) {
			return "", errInvalidf("invalid slug %q", explicit)
		}
		return explicit, nil
	}
	slug := truncateSlug(Slugify(title), maxSlugLength)
	if !ValidSlug(slug) {
		return "", errInvalidf("cannot derive a slug from %q", title)
	}
	return slug, nil
}

// truncateSlug shortens a canonical slug to at most max bytes, preferring
// to drop whole words.
func truncateSlug(slug string, max int) string {
	if len(slug) <= max {
		return slug
	}
	cut := slug[:max]
	if slug[max] != '-' {
		if i := strings.LastIndexByte(cut, '-'); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, "-")
}
