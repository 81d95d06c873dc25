package blocklist

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/isolatedaudit/internal/common/errorwrapper"
	"golang.org/x/net/publicsuffix"
)

// resourceSelector matches elements that load a subresource.
const resourceSelector = "script[src], iframe[src], img[src], link[href]"

// Discover parses page HTML and returns one "*domain*" pattern per
// third-party registrable domain referenced by scripts, iframes, images and
// links, in document order. limit <= 0 means no limit.
func Discover(html, pageURL string, limit int) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Hostname() == "" {
		return nil, errorwrapper.NewValidationError("page_url", pageURL, "must be an absolute URL")
	}
	firstParty := registrableDomain(base.Hostname())

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse page HTML")
	}

	var patterns []string
	seen := map[string]struct{}{}

	doc.Find(resourceSelector).Each(func(_ int, s *goquery.Selection) {
		attr := "src"
		if goquery.NodeName(s) == "link" {
			attr = "href"
		}
		raw, _ := s.Attr(attr)
		domain := thirdPartyDomain(base, raw, firstParty)
		if domain == "" {
			return
		}
		if _, ok := seen[domain]; ok {
			return
		}
		seen[domain] = struct{}{}
		patterns = append(patterns, "*"+domain+"*")
	})

	if limit > 0 && len(patterns) > limit {
		patterns = patterns[:limit]
	}
	return patterns, nil
}

func thirdPartyDomain(base *url.URL, raw, firstParty string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") || strings.HasPrefix(raw, "javascript:") {
		return ""
	}

	ref, err := base.Parse(raw)
	if err != nil {
		return ""
	}
	switch ref.Scheme {
	case "http", "https":
	default:
		return ""
	}

	domain := registrableDomain(ref.Hostname())
	if domain == "" || domain == firstParty {
		return ""
	}
	return domain
}

// registrableDomain returns eTLD+1 for host, or the host itself for IPs and
// single-label names.
func registrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
