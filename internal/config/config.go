package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultCORSOrigins lists the local frontend origins allowed by default.
const DefaultCORSOrigins = "http://localhost:3000,http://localhost:3001,http://127.0.0.1:3000,http://localhost:8080"

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr           string
	NewsAPIKey         string
	NewsAPIURL         string
	NewsAPITimeout     time.Duration
	CORSAllowedOrigins []string
	KeywordLimit       int
	KeywordMinLength   int
	TrustTablePath     string
	TrustStoreEnabled  bool
	TrustLookupTimeout time.Duration
}

// Worker holds configuration for the Kafka -> Elasticsearch reputation worker.
type Worker struct {
	Common
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
}

// Retention configures the stale reputation cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "source_reputation"),
	}
}

// LoadAPI builds an API config from environment variables.
// A missing NEWS_API_KEY is not an error here; searches report it per request.
func LoadAPI() (*API, error) {
	c := &API{
		Common:             loadCommon(),
		BindAddr:           getEnv("API_BIND_ADDR", "0.0.0.0:5000"),
		NewsAPIKey:         strings.TrimSpace(os.Getenv("NEWS_API_KEY")),
		NewsAPIURL:         getEnv("NEWS_API_URL", "https://newsapi.org/v2/everything"),
		NewsAPITimeout:     getDuration("NEWS_API_TIMEOUT", "10s"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", DefaultCORSOrigins)),
		KeywordLimit:       getInt("KEYWORD_LIMIT", 10),
		KeywordMinLength:   getInt("KEYWORD_MIN_LEN", 4),
		TrustTablePath:     strings.TrimSpace(os.Getenv("TRUST_TABLE_PATH")),
		TrustStoreEnabled:  getBool("TRUST_STORE_ENABLED", false),
		TrustLookupTimeout: getDuration("TRUST_LOOKUP_TIMEOUT", "2s"),
	}

	if c.NewsAPITimeout <= 0 {
		return nil, fmt.Errorf("NEWS_API_TIMEOUT must be positive")
	}
	if c.KeywordLimit <= 0 {
		return nil, fmt.Errorf("KEYWORD_LIMIT must be positive")
	}
	if c.KeywordMinLength < 0 {
		return nil, fmt.Errorf("KEYWORD_MIN_LEN cannot be negative")
	}
	if c.TrustLookupTimeout <= 0 {
		return nil, fmt.Errorf("TRUST_LOOKUP_TIMEOUT must be positive")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "source_reputation"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "reputation-worker"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "1h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "2160h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
