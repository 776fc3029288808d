package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9 -]`)
	slugSpaces     = regexp.MustCompile(`\s+`)
)

// MaxSlugSuffix bounds the collision-avoidance probe: base, base-1, ..., base-MaxSlugSuffix.
const MaxSlugSuffix = 1000

// Slugify derives a URL-safe slug from an event title: lower-case it, drop every character
// outside [a-z0-9 -], turn runs of spaces into a single hyphen and trim hyphens at both ends.
// Hyphen runs already present in the title are kept.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// reservedSlugs collide with fixed routes under /events.
var reservedSlugs = map[string]bool{"mine": true}

// IsReservedSlug reports whether s cannot be used as an event slug.
func IsReservedSlug(s string) bool {
	return reservedSlugs[s]
}

// SlugCandidate returns the n-th probe for base: base itself for n == 0, "base-n" otherwise.
func SlugCandidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
