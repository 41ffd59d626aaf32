package frame

import (
	"net/url"
	"strings"
)

// Allowlist holds the authorized URLs a message origin may match.
// Matching compares scheme, host and port; host labels may use "*" as a
// wildcard ("https://*.example.com"). Paths are ignored: an origin
// carries none.
type Allowlist struct {
	entries []authorizedOrigin
}

type authorizedOrigin struct {
	scheme string
	host   string // lowercase, may contain * labels
	port   string
}

// NewAllowlist parses authorized URLs, skipping unparseable entries.
func NewAllowlist(urls []string) *Allowlist {
	a := &Allowlist{}
	for _, raw := range urls {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Scheme == "" || u.Hostname() == "" {
			continue
		}
		a.entries = append(a.entries, authorizedOrigin{
			scheme: strings.ToLower(u.Scheme),
			host:   strings.ToLower(u.Hostname()),
			port:   u.Port(),
		})
	}
	return a
}

// Len returns the number of usable entries.
func (a *Allowlist) Len() int {
	return len(a.entries)
}

// Allows reports whether origin ("https://app.example.com:8000") matches
// any authorized URL.
func (a *Allowlist) Allows(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()

	for _, entry := range a.entries {
		if entry.scheme != scheme {
			continue
		}
		if !portsMatch(entry.port, port, scheme) {
			continue
		}
		if hostMatches(entry.host, host) {
			return true
		}
	}
	return false
}

// portsMatch treats an absent port as the scheme default.
func portsMatch(want, got, scheme string) bool {
	normalize := func(p string) string {
		if p != "" {
			return p
		}
		switch scheme {
		case "https":
			return "443"
		case "http":
			return "80"
		}
		return ""
	}
	return normalize(want) == normalize(got)
}

// hostMatches compares hosts label by label; a "*" pattern label matches
// exactly one origin label.
func hostMatches(pattern, host string) bool {
	if pattern == host {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}
	patternLabels := strings.Split(pattern, ".")
	hostLabels := strings.Split(host, ".")
	if len(patternLabels) != len(hostLabels) {
		return false
	}
	for i := range patternLabels {
		if patternLabels[i] == "*" {
			continue
		}
		if patternLabels[i] != hostLabels[i] {
			return false
		}
	}
	return true
}
