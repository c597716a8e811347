package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/DeafMist/news-trust-radar/backend/internal/apperr"
	"github.com/DeafMist/news-trust-radar/backend/internal/metrics"
)

const (
	// PageSize is the number of articles requested per search.
	PageSize = 5
	// LookbackDays bounds how old returned articles may be.
	LookbackDays = 30

	sortBy   = "relevancy"
	language = "en"
	okStatus = "ok"
)

// Article is one entry of the news API "articles" array.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      Source `json:"source"`
	PublishedAt string `json:"publishedAt"`
	Description string `json:"description"`
}

// Source identifies the publisher of an article.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type searchResponse struct {
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// Client queries the news API "everything" endpoint.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
	now     func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithClock overrides the clock used to compute the lookback window.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a client bound to baseURL. Requests exceeding timeout fail as network errors.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		baseURL: baseURL,
		apiKey:  apiKey,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Params returns the query parameters sent for query.
func (c *Client) Params(query string) map[string]string {
	return map[string]string{
		"q":        query,
		"from":     c.now().AddDate(0, 0, -LookbackDays).Format(time.DateOnly),
		"sortBy":   sortBy,
		"pageSize": strconv.Itoa(PageSize),
		"language": language,
		"apiKey":   c.apiKey,
	}
}

// Search runs query against the news API and returns the articles in upstream order.
// Transport failures come back as *apperr.NetworkError, rejected requests as *apperr.UpstreamError.
func (c *Client) Search(ctx context.Context, query string) ([]Article, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(c.Params(query)).
		Get(c.baseURL)
	if err != nil {
		metrics.RecordUpstream(string(apperr.KindNetwork), time.Since(start))
		return nil, &apperr.NetworkError{Err: err}
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		metrics.RecordUpstream(string(apperr.KindUpstream), time.Since(start))
		return nil, &apperr.UpstreamError{
			StatusCode: resp.StatusCode(),
			Detail:     responseSnippet(body),
		}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.RecordUpstream(string(apperr.KindInternal), time.Since(start))
		return nil, apperr.Internal(fmt.Errorf("decode news api response: %w", err))
	}

	if parsed.Status != okStatus {
		metrics.RecordUpstream(string(apperr.KindUpstream), time.Since(start))
		msg := parsed.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, &apperr.UpstreamError{
			StatusCode: resp.StatusCode(),
			Message:    msg,
			Detail:     parsed.Code,
		}
	}

	metrics.RecordUpstream("ok", time.Since(start))
	return parsed.Articles, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
