package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-trust-radar/backend/internal/metrics"
)

func TestRecordSearch(t *testing.T) {
	before := testutil.ToFloat64(metrics.SearchesTotal.WithLabelValues("validation"))
	metrics.RecordSearch("validation")
	metrics.RecordSearch("validation")
	require.Equal(t, before+2, testutil.ToFloat64(metrics.SearchesTotal.WithLabelValues("validation")))
}

func TestRecordTrustLookup(t *testing.T) {
	before := testutil.ToFloat64(metrics.TrustLookupsTotal.WithLabelValues("static"))
	metrics.RecordTrustLookup("static")
	require.Equal(t, before+1, testutil.ToFloat64(metrics.TrustLookupsTotal.WithLabelValues("static")))
}

func TestRecordUpstreamObserves(t *testing.T) {
	metrics.RecordUpstream("ok", 150*time.Millisecond)
	require.GreaterOrEqual(t, testutil.CollectAndCount(metrics.UpstreamDuration), 1)
}
