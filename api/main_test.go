package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-trust-radar/backend/internal/config"
	"github.com/DeafMist/news-trust-radar/backend/internal/logger"
)

func TestBuildTrustStaticOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trust.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domains:\n  - domain: local.example\n    score: 80\n"), 0o600))

	provider, store, err := buildTrust(&config.API{TrustTablePath: path}, logger.Discard())
	require.NoError(t, err)
	require.Nil(t, store)

	info := provider.Lookup(context.Background(), "local.example")
	require.Equal(t, 80, info.Score)
	require.Equal(t, "Trusted", info.Status)
	require.Equal(t, 95, provider.Lookup(context.Background(), "reuters.com").Score)
}

func TestBuildTrustBadTable(t *testing.T) {
	_, _, err := buildTrust(&config.API{TrustTablePath: filepath.Join(t.TempDir(), "missing.yaml")}, logger.Discard())
	require.Error(t, err)
}

func TestBuildTrustWithStore(t *testing.T) {
	cfg := &config.API{
		Common:            config.Common{ElasticsearchAddr: "http://127.0.0.1:1", ElasticsearchIndex: "source_reputation"},
		TrustStoreEnabled: true,
	}
	provider, store, err := buildTrust(cfg, logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, store)
	require.NotNil(t, provider)
}
