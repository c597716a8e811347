package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/DeafMist/news-trust-radar/backend/internal/config"
	"github.com/DeafMist/news-trust-radar/backend/internal/elasticsearch"
	"github.com/DeafMist/news-trust-radar/backend/internal/logger"
	"github.com/DeafMist/news-trust-radar/backend/internal/newsapi"
	"github.com/DeafMist/news-trust-radar/backend/internal/similar"
	"github.com/DeafMist/news-trust-radar/backend/internal/trust"
)

func main() {
	log := logger.New("api")
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", slog.Any("err", err))
	}

	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	if cfg.NewsAPIKey == "" {
		log.Warn("NEWS_API_KEY is not set, searches will fail until it is configured")
	}

	provider, store, err := buildTrust(cfg, log)
	if err != nil {
		log.Error("init trust provider", slog.Any("err", err))
		os.Exit(1)
	}

	searcher := newsapi.NewClient(cfg.NewsAPIURL, cfg.NewsAPIKey, cfg.NewsAPITimeout)
	svc := similar.New(similar.Config{
		APIKey:           cfg.NewsAPIKey,
		KeywordLimit:     cfg.KeywordLimit,
		KeywordMinLength: cfg.KeywordMinLength,
	}, searcher, provider, log)

	srv := &server{log: log, svc: svc, store: store, now: time.Now}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           newRouter(srv, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.NewsAPITimeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// buildTrust assembles the static table and, when enabled, the reputation store in front of it.
// The returned checker is nil when no store is used.
func buildTrust(cfg *config.API, log *slog.Logger) (trust.Provider, healthChecker, error) {
	var overrides map[string]trust.Info
	if cfg.TrustTablePath != "" {
		table, err := trust.LoadTable(cfg.TrustTablePath)
		if err != nil {
			return nil, nil, err
		}
		overrides = table
		log.Info("trust table loaded", slog.String("path", cfg.TrustTablePath), slog.Int("domains", len(table)))
	}
	static := trust.NewStatic(overrides)

	if !cfg.TrustStoreEnabled {
		return static, nil, nil
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		return nil, nil, fmt.Errorf("init elasticsearch: %w", err)
	}
	log.Info("trust store enabled",
		slog.String("addr", cfg.ElasticsearchAddr),
		slog.String("index", cfg.ElasticsearchIndex),
	)
	return trust.NewStore(esClient, static, cfg.TrustLookupTimeout, log), esClient, nil
}
