package portal

import (
	"bytes"
	"strings"
)

// DefaultChallengeMarkers are the substrings that flag an anti-automation
// interstitial. The list is heuristic: false negatives are acceptable,
// ordinary result pages must never match.
var DefaultChallengeMarkers = []string{
	"captcha",
	"g-recaptcha",
	"cf-challenge",
	"please verify you are a human",
}

// Sentinel scans portal HTML for anti-automation challenge markers.
type Sentinel struct {
	markers [][]byte
}

// NewSentinel builds a Sentinel from the given marker list. Empty entries
// are dropped; a nil or empty list falls back to DefaultChallengeMarkers.
func NewSentinel(markers []string) *Sentinel {
	if len(markers) == 0 {
		markers = DefaultChallengeMarkers
	}
	lower := make([][]byte, 0, len(markers))
	for _, m := range markers {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		lower = append(lower, bytes.ToLower([]byte(m)))
	}
	return &Sentinel{markers: lower}
}

// IsChallenged reports whether html contains any challenge marker,
// case-insensitively.
func (s *Sentinel) IsChallenged(html string) bool {
	if s == nil || html == "" {
		return false
	}
	lowerBody := bytes.ToLower([]byte(html))
	for _, m := range s.markers {
		if bytes.Contains(lowerBody, m) {
			return true
		}
	}
	return false
}
