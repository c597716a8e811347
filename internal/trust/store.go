package trust

import (
	"context"
	"log/slog"
	"time"

	"github.com/DeafMist/news-trust-radar/backend/internal/logger"
	"github.com/DeafMist/news-trust-radar/backend/internal/metrics"
	"github.com/DeafMist/news-trust-radar/backend/internal/models"
)

// ReputationReader fetches a stored reputation. A missing domain is (nil, nil).
type ReputationReader interface {
	GetReputation(ctx context.Context, domain string) (*models.Reputation, error)
}

// Store answers lookups from the reputation index and defers to fallback for
// domains it does not know or when the index cannot be reached.
type Store struct {
	reader   ReputationReader
	fallback Provider
	timeout  time.Duration
	log      *slog.Logger
}

// NewStore wires a reputation reader in front of fallback.
func NewStore(reader ReputationReader, fallback Provider, timeout time.Duration, log *slog.Logger) *Store {
	if fallback == nil {
		fallback = NewStatic(nil)
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Store{reader: reader, fallback: fallback, timeout: timeout, log: log}
}

// Lookup implements Provider.
func (s *Store) Lookup(ctx context.Context, domain string) Info {
	if domain == "" {
		return s.fallback.Lookup(ctx, domain)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	rep, err := s.reader.GetReputation(lookupCtx, domain)
	cancel()
	if err != nil {
		s.log.Warn("reputation lookup failed, using fallback",
			slog.String("domain", domain),
			slog.Any("err", err),
		)
		return s.fallback.Lookup(ctx, domain)
	}
	if rep == nil {
		return s.fallback.Lookup(ctx, domain)
	}

	metrics.RecordTrustLookup("store")
	status := rep.Status
	if status == "" {
		status = StatusForScore(rep.Score)
	}
	return Info{Score: rep.Score, Status: status}
}
