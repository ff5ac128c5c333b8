package newsfinder

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	urlPattern     = regexp.MustCompile(`(?im)^\s*URL:\s*(https?://[^\s)]+)`)
	summaryPattern = regexp.MustCompile(`(?is)SUMMARY:\s*(.*)`)
)

// Resolve parses free-form search output into a validated Article. The URL is
// taken from the first "URL:" line and the summary is everything after the
// "SUMMARY:" marker; if the marker is missing the whole output is used.
// Returns ErrNoArticle when no URL is found or the URL fails validation.
func Resolve(raw string, rules []SourceRule) (*Article, error) {
	match := urlPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil, ErrNoArticle
	}
	candidate := strings.TrimRight(match[1], ").,")

	if !ValidURL(candidate, rules) {
		return nil, ErrNoArticle
	}

	summary := raw
	if sm := summaryPattern.FindStringSubmatch(raw); sm != nil {
		summary = sm[1]
	}

	return &Article{
		URL:     candidate,
		Summary: strings.TrimSpace(summary),
	}, nil
}

// ValidURL reports whether raw points at an actual article on one of the
// allow-listed sources. Bare domains and homepages are rejected.
func ValidURL(raw string, rules []SourceRule) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := u.Path

	for _, rule := range rules {
		domain := strings.ToLower(rule.Domain)
		if host != domain && !strings.HasSuffix(host, "."+domain) {
			continue
		}
		if rule.PathPrefix != "" {
			if strings.HasPrefix(path, rule.PathPrefix) && len(path) > len(rule.PathPrefix) {
				return true
			}
			continue
		}
		if path != "" && path != "/" {
			return true
		}
	}
	return false
}
