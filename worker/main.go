package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/news-trust-radar/backend/internal/config"
	"github.com/DeafMist/news-trust-radar/backend/internal/dedupe"
	"github.com/DeafMist/news-trust-radar/backend/internal/elasticsearch"
	"github.com/DeafMist/news-trust-radar/backend/internal/logger"
	"github.com/DeafMist/news-trust-radar/backend/internal/metrics"
	"github.com/DeafMist/news-trust-radar/backend/internal/models"
	"github.com/DeafMist/news-trust-radar/backend/internal/trust"
)

const defaultSource = "feed"

// rawReputation is one message of the reputation topic. Either domain or url must be set.
type rawReputation struct {
	Domain    string `json:"domain"`
	URL       string `json:"url"`
	Score     *int   `json:"score"`
	Status    string `json:"status"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

type reputationIndexer interface {
	IndexReputation(ctx context.Context, doc models.Reputation) error
}

func main() {
	log := logger.New("worker")
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", slog.Any("err", err))
	}

	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1,
		MaxBytes:       1e6,
		CommitInterval: 0,
	})
	defer reader.Close()

	dlqTopic := cfg.KafkaTopic + "_dlq"
	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       dlqTopic,
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", dlqTopic),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, esClient, cache, msg, time.Now); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			if !sendToDLQ(ctx, log, dlqWriter, msg, err) {
				if ctx.Err() != nil {
					return
				}
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// sendToDLQ forwards a rejected message with its origin and failure reason,
// retrying with exponential backoff. It reports whether the write succeeded.
func sendToDLQ(ctx context.Context, log *slog.Logger, w messageWriter, msg kafka.Message, cause error) bool {
	dlqMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := 0; attempt < 5; attempt++ {
		dlqErr := w.WriteMessages(ctx, dlqMsg)
		if dlqErr == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", dlqErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			log.Info("context canceled during DLQ retry")
			return false
		}
	}
	return false
}

// processMessage validates one reputation update and writes it to the index.
// An update identical to the last one written for the same domain is skipped.
func processMessage(ctx context.Context, log *slog.Logger, indexer reputationIndexer, cache *dedupe.Cache, msg kafka.Message, now func() time.Time) error {
	doc, err := parseReputation(msg.Value, now)
	if err != nil {
		metrics.RecordReputationUpdate("rejected")
		return err
	}

	fp := doc.Fingerprint()
	if cache.Unchanged(doc.Domain, fp) {
		metrics.RecordReputationUpdate("unchanged")
		log.Debug("reputation unchanged", slog.String("domain", doc.Domain))
		return nil
	}

	if err := indexer.IndexReputation(ctx, doc); err != nil {
		metrics.RecordReputationUpdate("failed")
		return err
	}

	cache.Record(doc.Domain, fp)
	metrics.RecordReputationUpdate("indexed")
	log.Info("indexed reputation",
		slog.String("domain", doc.Domain),
		slog.Int("score", doc.Score),
		slog.String("status", doc.Status),
	)
	return nil
}

func parseReputation(raw []byte, now func() time.Time) (models.Reputation, error) {
	var payload rawReputation
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.Reputation{}, fmt.Errorf("decode reputation: %w", err)
	}

	domain := trust.NormalizeDomain(payload.Domain)
	if domain == "" {
		domain = trust.DomainFromURL(payload.URL)
	}
	if domain == "" {
		return models.Reputation{}, errors.New("reputation has no usable domain or url")
	}

	if payload.Score == nil {
		return models.Reputation{}, fmt.Errorf("reputation for %s has no score", domain)
	}
	score := *payload.Score
	if score < 0 || score > 100 {
		return models.Reputation{}, fmt.Errorf("reputation for %s: score %d out of range 0..100", domain, score)
	}

	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = trust.StatusForScore(score)
	}

	source := strings.TrimSpace(payload.Source)
	if source == "" {
		source = defaultSource
	}

	ts := parseTimestamp(payload.Timestamp)
	if ts.IsZero() {
		ts = now()
	}

	return models.Reputation{
		Domain:    domain,
		Score:     score,
		Status:    status,
		Source:    source,
		UpdatedAt: ts.UTC(),
		UpdateID:  uuid.NewString(),
	}, nil
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		time.DateTime,
		time.DateOnly,
	}

	for _, f := range formats {
		if ts, err := time.Parse(f, raw); err == nil {
			return ts
		}
	}

	return time.Time{}
}
