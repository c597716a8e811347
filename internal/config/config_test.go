package config_test

import (
	"testing"
	"time"

	"github.com/DeafMist/news-trust-radar/backend/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadAPIDefaults(t *testing.T) {
	for _, key := range []string{
		"NEWS_API_KEY", "NEWS_API_URL", "NEWS_API_TIMEOUT", "API_BIND_ADDR",
		"CORS_ALLOWED_ORIGINS", "KEYWORD_LIMIT", "KEYWORD_MIN_LEN", "TRUST_TABLE_PATH",
		"TRUST_STORE_ENABLED", "TRUST_LOOKUP_TIMEOUT", "ELASTICSEARCH_ADDR", "ELASTICSEARCH_INDEX",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Empty(t, cfg.NewsAPIKey)
	require.Equal(t, "https://newsapi.org/v2/everything", cfg.NewsAPIURL)
	require.Equal(t, 10*time.Second, cfg.NewsAPITimeout)
	require.Equal(t, "0.0.0.0:5000", cfg.BindAddr)
	require.Len(t, cfg.CORSAllowedOrigins, 4)
	require.Equal(t, "http://localhost:3000", cfg.CORSAllowedOrigins[0])
	require.Equal(t, 10, cfg.KeywordLimit)
	require.Equal(t, 4, cfg.KeywordMinLength)
	require.False(t, cfg.TrustStoreEnabled)
	require.Equal(t, 2*time.Second, cfg.TrustLookupTimeout)
	require.Equal(t, "source_reputation", cfg.ElasticsearchIndex)
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("NEWS_API_KEY", " secret ")
	t.Setenv("NEWS_API_URL", "http://news.local/v2/everything")
	t.Setenv("NEWS_API_TIMEOUT", "3s")
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")
	t.Setenv("KEYWORD_LIMIT", "7")
	t.Setenv("KEYWORD_MIN_LEN", "3")
	t.Setenv("TRUST_TABLE_PATH", "/etc/trust.yaml")
	t.Setenv("TRUST_STORE_ENABLED", "true")
	t.Setenv("TRUST_LOOKUP_TIMEOUT", "500ms")
	t.Setenv("ELASTICSEARCH_ADDR", "http://api-es:9200")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "secret", cfg.NewsAPIKey)
	require.Equal(t, "http://news.local/v2/everything", cfg.NewsAPIURL)
	require.Equal(t, 3*time.Second, cfg.NewsAPITimeout)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 7, cfg.KeywordLimit)
	require.Equal(t, 3, cfg.KeywordMinLength)
	require.Equal(t, "/etc/trust.yaml", cfg.TrustTablePath)
	require.True(t, cfg.TrustStoreEnabled)
	require.Equal(t, 500*time.Millisecond, cfg.TrustLookupTimeout)
	require.Equal(t, "http://api-es:9200", cfg.ElasticsearchAddr)
}

func TestLoadAPIRejectsInvalidLimit(t *testing.T) {
	t.Setenv("KEYWORD_LIMIT", "-1")

	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")
	t.Setenv("WORKER_DEDUPE_TTL", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "source_reputation", cfg.ElasticsearchIndex)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "source_reputation", cfg.KafkaTopic)
	require.Equal(t, "reputation-worker", cfg.KafkaConsumer)
	require.Equal(t, time.Hour, cfg.DedupeTTL)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-a:29092,broker-b:29093")
	t.Setenv("KAFKA_TOPIC", "custom_topic")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")
	t.Setenv("WORKER_BATCH_SIZE", "3")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Len(t, cfg.KafkaBrokers, 2)
	require.Equal(t, "broker-b:29093", cfg.KafkaBrokers[1])
	require.Equal(t, "custom_topic", cfg.KafkaTopic)
	require.Equal(t, "custom-group", cfg.KafkaConsumer)
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 3, cfg.BatchSize)
}

func TestLoadWorkerInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("WORKER_DEDUPE_TTL", "soon")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)
	require.Equal(t, time.Hour, cfg.DedupeTTL)
}

func TestLoadRetention(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://ret-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "ret-index")
	t.Setenv("RETENTION_CRON", "12h")
	t.Setenv("RETENTION_MAX_AGE", "36h")
	t.Setenv("RETENTION_BATCH_SIZE", "123")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 36*time.Hour, cfg.MaxAge)
	require.Equal(t, 123, cfg.BatchSize)
	require.Equal(t, "http://ret-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "ret-index", cfg.ElasticsearchIndex)
}

func TestLoadRetentionDefaults(t *testing.T) {
	t.Setenv("RETENTION_CRON", "")
	t.Setenv("RETENTION_MAX_AGE", "")
	t.Setenv("RETENTION_BATCH_SIZE", "")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, cfg.Interval)
	require.Equal(t, 90*24*time.Hour, cfg.MaxAge)
	require.Equal(t, 500, cfg.BatchSize)
}
