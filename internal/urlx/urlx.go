// Package urlx implements the URL matching rules shared by the extension
// bridge and the native-messaging host.
package urlx

import (
	"net/url"
	"strings"
)

// NormalizeDomain reduces a URL-ish string to its bare domain: scheme,
// "www." prefix, port and path are stripped and the result is lowercased.
// Returns "" when no host remains.
func NormalizeDomain(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if host, _, ok := strings.Cut(s, ":"); ok {
		s = host
	}
	s = strings.TrimPrefix(strings.ToLower(s), "www.")
	return s
}

// DomainsMatch reports whether two URL-ish strings name the same domain
// under NormalizeDomain. Empty domains never match anything.
func DomainsMatch(a, b string) bool {
	da := NormalizeDomain(a)
	db := NormalizeDomain(b)
	return da != "" && da == db
}

// NormalizeOrigin reduces a browser origin to "scheme://host". Only http
// and https are accepted; any other scheme, or an unparseable URL, yields
// ("", false).
func NormalizeOrigin(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	host := u.Hostname()
	if host == "" {
		return "", false
	}
	return u.Scheme + "://" + host, true
}
