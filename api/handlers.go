package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DeafMist/news-trust-radar/backend/internal/apperr"
	"github.com/DeafMist/news-trust-radar/backend/internal/metrics"
	"github.com/DeafMist/news-trust-radar/backend/internal/similar"
)

const (
	maxBodyBytes    = 1 << 20
	msgMissingField = "Missing 'text' field in JSON request"
)

type searchService interface {
	CheckConfig() error
	Configured() bool
	Find(ctx context.Context, text string) (*similar.Response, error)
}

type healthChecker interface {
	Health(ctx context.Context) error
}

type server struct {
	log   *slog.Logger
	svc   searchService
	store healthChecker
	now   func() time.Time
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status     string `json:"status"`
	NewsAPI    string `json:"news_api"`
	TrustStore string `json:"trust_store"`
	Timestamp  string `json:"timestamp"`
}

type homeResponse struct {
	Message   string   `json:"message"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}

func newRouter(s *server, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverJSON)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleHome)
	r.Get("/health", s.handleHealth)
	r.Get("/similar", s.handleSimilar)
	r.Post("/similar", s.handleSimilar)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *server) handleHome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, homeResponse{
		Message:   "News trust radar API is running!",
		Status:    "Server is running successfully",
		Endpoints: []string{"/similar", "/health", "/metrics"},
	})
}

// handleHealth always answers 200; problems show up as a degraded status.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:     "healthy",
		NewsAPI:    "configured",
		TrustStore: "disabled",
		Timestamp:  s.now().UTC().Format(time.RFC3339),
	}

	if !s.svc.Configured() {
		resp.NewsAPI = "not configured"
		resp.Status = "degraded"
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.store.Health(ctx); err != nil {
			s.log.Warn("trust store health check failed", slog.Any("err", err))
			resp.TrustStore = "unavailable"
			resp.Status = "degraded"
		} else {
			resp.TrustStore = "connected"
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.CheckConfig(); err != nil {
		s.writeError(w, r, err)
		return
	}

	text, err := readText(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.svc.Find(r.Context(), text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	metrics.RecordSearch("ok")
	metrics.RecordArticles(resp.ArticlesFound)
	s.log.Info("similar search served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("keywords", len(resp.KeywordsUsed)),
		slog.Int("articles", resp.ArticlesFound),
	)
	writeJSON(w, http.StatusOK, resp)
}

// readText takes "text" from the JSON body of a POST or the query string otherwise.
func readText(r *http.Request) (string, error) {
	if r.Method != http.MethodPost {
		return r.URL.Query().Get("text"), nil
	}

	var body struct {
		Text *string `json:"text"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil || body.Text == nil {
		return "", apperr.Validation(msgMissingField)
	}
	return *body.Text, nil
}

// writeError is the single place where failures turn into HTTP responses.
// Upstream and network failures are logged differently; clients only see the public message.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	attrs := []any{
		slog.String("kind", string(kind)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Any("err", err),
	}

	switch kind {
	case apperr.KindValidation:
		s.log.Info("search request rejected", attrs...)
	case apperr.KindConfig:
		s.log.Error("news api not configured", attrs...)
	case apperr.KindUpstream:
		var ue *apperr.UpstreamError
		if errors.As(err, &ue) {
			attrs = append(attrs, slog.Int("upstream_status", ue.StatusCode), slog.String("upstream_detail", ue.Detail))
		}
		s.log.Error("news api returned an error", attrs...)
	case apperr.KindNetwork:
		s.log.Error("news api request failed", attrs...)
	default:
		s.log.Error("search failed", attrs...)
	}

	metrics.RecordSearch(string(kind))
	writeJSON(w, apperr.HTTPStatus(err), errorResponse{Error: apperr.PublicMessage(err)})
}

func (s *server) recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.writeError(w, r, &apperr.InternalError{Err: fmt.Errorf("panic: %v", rec)})
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
