package trust

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DeafMist/news-trust-radar/backend/internal/metrics"
)

var builtinScores = map[string]int{
	"apnews.com":         95,
	"reuters.com":        95,
	"bbc.co.uk":          90,
	"bbc.com":            90,
	"bloomberg.com":      88,
	"economist.com":      88,
	"ft.com":             88,
	"npr.org":            88,
	"nytimes.com":        85,
	"theguardian.com":    85,
	"washingtonpost.com": 85,
	"wsj.com":            85,
	"cbsnews.com":        75,
	"cnn.com":            75,
	"nbcnews.com":        75,
	"aljazeera.com":      72,
	"usatoday.com":       72,
	"foxnews.com":        60,
	"nypost.com":         55,
	"dailymail.co.uk":    45,
	"breitbart.com":      30,
	"theonion.com":       20,
	"infowars.com":       10,
}

// Static answers lookups from an in-memory table.
type Static struct {
	table map[string]Info
}

// NewStatic builds the built-in table and applies overrides on top of it.
func NewStatic(overrides map[string]Info) *Static {
	table := make(map[string]Info, len(builtinScores)+len(overrides))
	for domain, score := range builtinScores {
		table[domain] = Info{Score: score, Status: StatusForScore(score)}
	}
	for domain, info := range overrides {
		domain = NormalizeDomain(domain)
		if domain == "" {
			continue
		}
		if info.Status == "" {
			info.Status = StatusForScore(info.Score)
		}
		table[domain] = info
	}
	return &Static{table: table}
}

// Lookup tries domain and then its parent domains.
func (s *Static) Lookup(_ context.Context, domain string) Info {
	if domain != "" {
		for _, candidate := range parentDomains(domain) {
			if info, ok := s.table[candidate]; ok {
				metrics.RecordTrustLookup("static")
				return info
			}
		}
	}
	metrics.RecordTrustLookup("default")
	return Default()
}

type tableFile struct {
	Domains []tableEntry `yaml:"domains"`
}

type tableEntry struct {
	Domain string `yaml:"domain"`
	Score  *int   `yaml:"score"`
	Status string `yaml:"status"`
}

// LoadTable reads domain overrides from a YAML file of the form
//
//	domains:
//	  - domain: example.com
//	    score: 80
//	    status: Trusted   # optional
func LoadTable(path string) (map[string]Info, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("trust table path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trust table: %w", err)
	}

	var file tableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse trust table: %w", err)
	}

	out := make(map[string]Info, len(file.Domains))
	for i, entry := range file.Domains {
		domain := NormalizeDomain(entry.Domain)
		if domain == "" {
			return nil, fmt.Errorf("trust table entry %d: domain is empty", i)
		}
		if entry.Score == nil {
			return nil, fmt.Errorf("trust table entry %q: score is required", domain)
		}
		if *entry.Score < 0 || *entry.Score > 100 {
			return nil, fmt.Errorf("trust table entry %q: score %d out of range 0..100", domain, *entry.Score)
		}
		out[domain] = Info{Score: *entry.Score, Status: strings.TrimSpace(entry.Status)}
	}
	return out, nil
}
