package portal

import "testing"

func TestSentinelIsChallenged(t *testing.T) {
	s := NewSentinel(nil)

	tests := []struct {
		name string
		html string
		want bool
	}{
		{name: "empty body", html: "", want: false},
		{name: "plain result page", html: "<html><table><tr><td>123/2025</td></tr></table></html>", want: false},
		{name: "captcha marker", html: "<html>Please solve the CAPTCHA below</html>", want: true},
		{name: "recaptcha widget", html: `<div class="g-recaptcha" data-sitekey="x"></div>`, want: true},
		{name: "cloudflare challenge", html: `<div id="cf-challenge-running"></div>`, want: true},
		{name: "human verification phrase", html: "<p>PLEASE VERIFY YOU ARE A HUMAN</p>", want: true},
		{name: "marker case insensitive", html: "<html>GCaptcha? No: CaPtChA</html>", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.IsChallenged(tt.html)
			if got != tt.want {
				t.Fatalf("expected %v got %v", tt.want, got)
			}
		})
	}
}

func TestSentinelCustomMarkers(t *testing.T) {
	s := NewSentinel([]string{"access denied", "  ", ""})

	if !s.IsChallenged("<html>Access Denied</html>") {
		t.Fatal("expected custom marker to flag")
	}
	if s.IsChallenged("<html>captcha</html>") {
		t.Fatal("default markers must not apply when a custom list is given")
	}
}
