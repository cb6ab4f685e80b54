package utils

import (
	"net/url"
	"strings"
)

// NormalizeHost lower-cases a hostname and strips the port and a leading
// "www." so country and mobile variants compare equal.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}

// HostLabel reports whether label appears as a whole dot-separated label in
// host, e.g. HostLabel("smile.amazon.co.uk", "amazon") is true.
func HostLabel(host, label string) bool {
	for _, part := range strings.Split(NormalizeHost(host), ".") {
		if part == label {
			return true
		}
	}
	return false
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(strings.TrimSpace(relative))
	if err != nil {
		return "", err
	}
	if base == nil {
		return relURL.String(), nil
	}
	return base.ResolveReference(relURL).String(), nil
}
