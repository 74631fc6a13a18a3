package main

import (
	"net/url"
	"strings"
)

// matchCORSOrigin reports whether origin is allowed by one of patterns. A pattern is "*",
// an exact origin, or a scheme with a "*." host prefix that matches any subdomain but not
// the bare domain.
func matchCORSOrigin(origin string, patterns []string) bool {
	o, err := url.Parse(origin)
	if err != nil || o.Host == "" {
		return false
	}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		switch {
		case p == "*":
			return true
		case strings.EqualFold(p, origin):
			return true
		case strings.Contains(p, "://*."):
			scheme, host, _ := strings.Cut(p, "://")
			if !strings.EqualFold(scheme, o.Scheme) {
				continue
			}
			suffix := strings.ToLower(strings.TrimPrefix(host, "*"))
			h := strings.ToLower(o.Host)
			if strings.HasSuffix(h, suffix) && len(h) > len(suffix) {
				return true
			}
		}
	}
	return false
}
