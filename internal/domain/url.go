package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// multiPartTLDs lists public suffixes made of two labels, where the root
// domain is the last three labels instead of the last two.
var multiPartTLDs = map[string]bool{
	"co.uk":  true,
	"org.uk": true,
	"gov.uk": true,
	"ac.uk":  true,
	"me.uk":  true,
	"net.uk": true,
	"co.jp":  true,
	"ne.jp":  true,
	"or.jp":  true,
	"com.au": true,
	"net.au": true,
	"org.au": true,
	"co.nz":  true,
	"co.in":  true,
	"com.br": true,
	"com.mx": true,
	"co.za":  true,
	"com.sg": true,
	"com.cn": true,
	"com.tw": true,
}

// NormalizeURL canonicalizes a captured page address so that the same page
// always maps to the same bookmark:
//   - scheme forced to https (added when missing)
//   - host lowercased, leading "www." stripped, default ports dropped
//   - trailing slash removed from the path
//   - fragment dropped, query preserved
//
// Example: "HTTP://WWW.Example.com/path/" -> "https://example.com/path"
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Scheme = "https"

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}
	if port := u.Port(); port != "" && port != "80" && port != "443" {
		host = host + ":" + port
	}
	u.Host = host

	u.Path = strings.TrimRight(u.Path, "/")
	u.Fragment = ""

	return u.String(), nil
}

// ExtractRootDomain returns the registrable domain of a URL or hostname.
// Multi-part public suffixes are kept whole.
//
// Example: "https://blog.example.co.uk" -> "example.co.uk"
func ExtractRootDomain(raw string) string {
	host := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(host, "://") {
		if u, err := url.Parse(host); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	}
	host = strings.TrimPrefix(host, "www.")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}

	suffix := strings.Join(parts[len(parts)-2:], ".")
	if multiPartTLDs[suffix] && len(parts) >= 3 {
		return strings.Join(parts[len(parts)-3:], ".")
	}
	return suffix
}
