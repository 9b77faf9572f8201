package imageload

import (
	"net/url"
	"strings"
)

// Strategy rewrites a remote URL into the URL actually fetched.
type Strategy interface {
	Name() string
	Rewrite(rawURL string) string
}

// Direct fetches the URL as is.
type Direct struct{}

func (Direct) Name() string              { return "direct" }
func (Direct) Rewrite(raw string) string { return raw }

// Template is a rewriting proxy. {url} is replaced by the query-escaped
// URL and {raw} by the URL verbatim.
type Template struct {
	Pattern string
}

func (t Template) Name() string {
	if u, err := url.Parse(t.Pattern); err == nil && u.Host != "" {
		return u.Host
	}
	return t.Pattern
}

func (t Template) Rewrite(raw string) string {
	return strings.NewReplacer("{url}", url.QueryEscape(raw), "{raw}", raw).Replace(t.Pattern)
}

// DefaultProxies is the public proxy chain tried after a direct fetch.
var DefaultProxies = []string{
	"https://images.weserv.nl/?url={url}",
	"https://corsproxy.io/?url={url}",
	"https://api.allorigins.win/raw?url={url}",
}

// Strategies builds a chain: Direct first, then one Template per pattern.
// The pattern "direct" is skipped since Direct always leads.
func Strategies(patterns []string) []Strategy {
	chain := []Strategy{Direct{}}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.EqualFold(p, "direct") {
			continue
		}
		chain = append(chain, Template{Pattern: p})
	}
	return chain
}
