// Package blocklist supplies the URL patterns that are blocked one at a time
// while measuring a page, plus helpers to match and discover them.
package blocklist

import (
	"regexp"
	"strings"
	"sync"
)

// defaultPatterns are common ad, analytics and tag-manager hosts.
// Order only affects row grouping in the output.
var defaultPatterns = []string{
	"*googletagmanager.com*",
	"*google-analytics.com*",
	"*googlesyndication.com*",
	"*doubleclick.net*",
	"*adservice.google.com*",
	"*amazon-adsystem.com*",
	"*facebook.net*",
	"*hotjar.com*",
	"*criteo.com*",
	"*taboola.com*",
	"*outbrain.com*",
	"*scorecardresearch.com*",
	"*quantserve.com*",
	"*adnxs.com*",
	"*rubiconproject.com*",
	"*pubmatic.com*",
	"*cookielaw.org*",
	"*sentry-cdn.com*",
}

// DefaultPatterns returns a copy of the built-in pattern list.
func DefaultPatterns() []string {
	out := make([]string, len(defaultPatterns))
	copy(out, defaultPatterns)
	return out
}

// Matrix returns the patterns measured by a batch: the empty baseline first,
// then each non-blank pattern once, in input order.
func Matrix(patterns []string) []string {
	out := []string{""}
	seen := map[string]struct{}{"": {}}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// BlockedURLs returns the list handed to the browser for one cell:
// nothing for the baseline, otherwise just the pattern.
func BlockedURLs(pattern string) []string {
	if pattern == "" {
		return nil
	}
	return []string{pattern}
}

var (
	matcherMu    sync.Mutex
	matcherCache = map[string]*regexp.Regexp{}
)

// Match reports whether rawURL is blocked by pattern. '*' matches any run of
// characters, everything else is literal and the whole URL must match.
func Match(pattern, rawURL string) bool {
	if pattern == "" {
		return false
	}
	return compile(pattern).MatchString(rawURL)
}

// MatchAny reports whether any pattern blocks rawURL.
func MatchAny(patterns []string, rawURL string) bool {
	for _, p := range patterns {
		if Match(p, rawURL) {
			return true
		}
	}
	return false
}

func compile(pattern string) *regexp.Regexp {
	matcherMu.Lock()
	defer matcherMu.Unlock()

	if re, ok := matcherCache[pattern]; ok {
		return re
	}
	expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*") + "$"
	re := regexp.MustCompile(expr)
	matcherCache[pattern] = re
	return re
}
