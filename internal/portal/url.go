package portal

import (
	"net/url"
	"strings"
)

// ResolveReference resolves href against base. Absolute URLs pass through
// unchanged; relative references resolve against the portal base. A
// malformed href comes back as-is rather than guessed at.
func ResolveReference(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
