// Package trust maps news source domains to a reputation score and label.
//
// Lookups never fail: a domain nobody knows about, a malformed URL or an
// unreachable reputation store all resolve to Default().
package trust

import (
	"context"
	"net/url"
	"strings"
)

const (
	// DefaultScore is reported for unknown domains.
	DefaultScore = 50
	// UnknownStatus is reported for unknown domains.
	UnknownStatus = "Unknown"
)

// Info is the trust verdict for one domain.
type Info struct {
	Score  int    `json:"score" yaml:"score"`
	Status string `json:"status" yaml:"status"`
}

// Default is the verdict for domains without a known reputation.
func Default() Info {
	return Info{Score: DefaultScore, Status: UnknownStatus}
}

// Provider resolves a normalized domain to its trust verdict.
type Provider interface {
	Lookup(ctx context.Context, domain string) Info
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, domain string) Info

// Lookup calls f.
func (f ProviderFunc) Lookup(ctx context.Context, domain string) Info { return f(ctx, domain) }

// StatusForScore labels a score when no explicit status is known.
func StatusForScore(score int) string {
	switch {
	case score >= 85:
		return "Highly Trusted"
	case score >= 70:
		return "Trusted"
	case score >= 50:
		return "Mixed"
	case score >= 30:
		return "Questionable"
	default:
		return "Untrusted"
	}
}

// DomainFromURL returns the normalized host of raw, or "" when raw has no usable host.
func DomainFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "//" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return NormalizeDomain(u.Hostname())
}

// NormalizeDomain lower-cases host and strips a leading "www." and a trailing dot.
func NormalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	host = strings.TrimPrefix(host, "www.")
	if host == "" || strings.ContainsAny(host, " /?#@") {
		return ""
	}
	return host
}

// parentDomains lists domain followed by its parents down to two labels:
// "edition.cnn.com" -> ["edition.cnn.com", "cnn.com"].
func parentDomains(domain string) []string {
	out := []string{domain}
	for {
		i := strings.IndexByte(domain, '.')
		if i < 0 {
			return out
		}
		rest := domain[i+1:]
		if !strings.Contains(rest, ".") {
			return out
		}
		out = append(out, rest)
		domain = rest
	}
}
