package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchCORSOrigin(t *testing.T) {
	cases := []struct {
		name     string
		origin   string
		patterns []string
		want     bool
	}{
		{"exact", "https://app.outreach.example", []string{"https://app.outreach.example"}, true},
		{"exact pattern does not cover siblings", "https://other.outreach.example", []string{"https://app.outreach.example"}, false},
		{"star", "http://localhost:3000", []string{"*"}, true},
		{"wildcard subdomain", "https://app.outreach.example", []string{"https://*.outreach.example"}, true},
		{"wildcard nested subdomain", "https://a.b.outreach.example", []string{"https://*.outreach.example"}, true},
		{"wildcard excludes bare domain", "https://outreach.example", []string{"https://*.outreach.example"}, false},
		{"wildcard checks scheme", "http://app.outreach.example", []string{"https://*.outreach.example"}, false},
		{"padded dev origin", "http://localhost:5173", []string{"http://localhost:3000", " http://localhost:5173"}, true},
		{"other port", "http://localhost:8080", []string{"http://localhost:3000"}, false},
		{"invalid pattern", "https://origin.example.com", []string{"https://%gh&%ij"}, false},
		{"empty origin", "", []string{"*"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, matchCORSOrigin(tc.origin, tc.patterns))
		})
	}
}
