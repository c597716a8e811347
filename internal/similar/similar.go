// Package similar finds recent news articles related to a text passage and
// annotates each with the trust verdict for its source domain.
package similar

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/DeafMist/news-trust-radar/backend/internal/apperr"
	"github.com/DeafMist/news-trust-radar/backend/internal/keywords"
	"github.com/DeafMist/news-trust-radar/backend/internal/logger"
	"github.com/DeafMist/news-trust-radar/backend/internal/newsapi"
	"github.com/DeafMist/news-trust-radar/backend/internal/trust"
)

const (
	queryTextLimit   = 100
	descriptionLimit = 200
	ellipsis         = "..."
	unknownSource    = "Unknown"

	msgAPIKeyMissing = "NewsAPI key not configured. Please set NEWS_API_KEY environment variable."
	msgEmptyText     = "Text parameter is required and cannot be empty"
	msgNoKeywords    = "Could not extract meaningful keywords from text"
)

// Searcher runs a boolean query against the news search API.
type Searcher interface {
	Search(ctx context.Context, query string) ([]newsapi.Article, error)
}

// Config is the per-process configuration a Service needs.
type Config struct {
	APIKey           string
	KeywordLimit     int
	KeywordMinLength int
}

// Response is the payload returned for a successful search.
type Response struct {
	QueryText     string    `json:"query_text"`
	KeywordsUsed  []string  `json:"keywords_used"`
	ArticlesFound int       `json:"articles_found"`
	Articles      []Article `json:"articles"`
}

// Article is an upstream article merged with its trust verdict.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	Description string `json:"description"`
	TrustScore  int    `json:"trust_score"`
	TrustStatus string `json:"trust_status"`
}

// Service runs similar-news searches. It holds no per-request state.
type Service struct {
	cfg      Config
	searcher Searcher
	trust    trust.Provider
	log      *slog.Logger
}

// New builds a Service.
func New(cfg Config, searcher Searcher, provider trust.Provider, log *slog.Logger) *Service {
	if cfg.KeywordLimit <= 0 {
		cfg.KeywordLimit = 10
	}
	if provider == nil {
		provider = trust.NewStatic(nil)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{cfg: cfg, searcher: searcher, trust: provider, log: log}
}

// CheckConfig fails with *apperr.ConfigError while the news API key is missing.
func (s *Service) CheckConfig() error {
	if s.cfg.APIKey == "" {
		return &apperr.ConfigError{Message: msgAPIKeyMissing}
	}
	return nil
}

// Configured reports whether searches can reach the news API.
func (s *Service) Configured() bool {
	return s.CheckConfig() == nil
}

// Find runs the whole pipeline for text. Every error it returns carries an apperr kind.
func (s *Service) Find(ctx context.Context, text string) (*Response, error) {
	if err := s.CheckConfig(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation(msgEmptyText)
	}

	extracted := keywords.Extract(text, s.cfg.KeywordLimit, s.cfg.KeywordMinLength)
	if len(extracted) == 0 {
		return nil, apperr.Validation(msgNoKeywords)
	}

	top := newsapi.TopKeywords(extracted)
	query := newsapi.BuildQuery(top)
	s.log.Debug("searching news", slog.String("query", query), slog.Int("keywords", len(extracted)))

	found, err := s.searcher.Search(ctx, query)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	articles := s.annotate(ctx, found)
	return &Response{
		QueryText:     Truncate(text, queryTextLimit),
		KeywordsUsed:  top,
		ArticlesFound: len(articles),
		Articles:      articles,
	}, nil
}

func (s *Service) annotate(ctx context.Context, found []newsapi.Article) []Article {
	out := make([]Article, 0, len(found))
	for _, a := range found {
		if a.Title == "" || a.URL == "" {
			continue
		}

		info := s.trust.Lookup(ctx, trust.DomainFromURL(a.URL))
		source := a.Source.Name
		if source == "" {
			source = unknownSource
		}

		out = append(out, Article{
			Title:       a.Title,
			URL:         a.URL,
			Source:      source,
			PublishedAt: a.PublishedAt,
			Description: Truncate(a.Description, descriptionLimit),
			TrustScore:  info.Score,
			TrustStatus: info.Status,
		})
	}
	return out
}

// Truncate cuts s to limit characters and appends "..." when anything was cut.
// The marker is added on top of limit, so a cut result is limit+3 characters long.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + ellipsis
}
