package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9-]{1,120}$`)

var reservedSlugs = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"auth":     {},
	"search":   {},
	"settings": {},
	"users":    {},
	"posts":    {},
	"comments": {},
	"profile":  {},
	"metrics":  {},
	"health":   {},
	"login":    {},
	"signup":   {},
}

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRuns = regexp.MustCompile(`[\s-]+`)
)

// Slugify derives a URL slug from a post title: lowercase, alphanumerics
// and hyphens only, runs of whitespace collapsed to a single hyphen.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 120 {
		s = strings.Trim(s[:120], "-")
	}
	return s
}

// ValidateSlug validates slug format and reserved names.
func ValidateSlug(slug string) error {
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug must contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}

	if _, exists := reservedSlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}
