package newsapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-trust-radar/backend/internal/apperr"
	"github.com/DeafMist/news-trust-radar/backend/internal/newsapi"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 31, 15, 4, 5, 0, time.UTC) }

func TestSearchSendsParameters(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
	}))
	defer srv.Close()

	client := newsapi.NewClient(srv.URL, "test-key", time.Second, newsapi.WithClock(fixedNow))
	articles, err := client.Search(context.Background(), "NASA AND orbit")
	require.NoError(t, err)
	require.Empty(t, articles)

	require.Equal(t, "NASA AND orbit", got.Get("q"))
	require.Equal(t, "2024-03-01", got.Get("from"))
	require.Equal(t, "relevancy", got.Get("sortBy"))
	require.Equal(t, "5", got.Get("pageSize"))
	require.Equal(t, "en", got.Get("language"))
	require.Equal(t, "test-key", got.Get("apiKey"))
}

func TestSearchParsesArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","totalResults":2,"articles":[
			{"source":{"id":"reuters","name":"Reuters"},"title":"First","url":"https://www.reuters.com/a","publishedAt":"2024-03-30T10:00:00Z","description":"one"},
			{"source":{"id":null,"name":"Blog"},"title":"Second","url":"https://blog.example/b","publishedAt":"2024-03-29T10:00:00Z","description":null}
		]}`))
	}))
	defer srv.Close()

	client := newsapi.NewClient(srv.URL, "k", time.Second)
	articles, err := client.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, articles, 2)
	require.Equal(t, "First", articles[0].Title)
	require.Equal(t, "Reuters", articles[0].Source.Name)
	require.Equal(t, "2024-03-30T10:00:00Z", articles[0].PublishedAt)
	require.Equal(t, "Second", articles[1].Title)
	require.Empty(t, articles[1].Description)
}

func TestSearchNon200IsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`))
	}))
	defer srv.Close()

	_, err := newsapi.NewClient(srv.URL, "bad", time.Second).Search(context.Background(), "q")
	require.Error(t, err)

	var ue *apperr.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, http.StatusUnauthorized, ue.StatusCode)
	require.Contains(t, ue.Detail, "apiKeyInvalid")
	require.Equal(t, "NewsAPI request failed with status 401", apperr.PublicMessage(err))
}

func TestSearchBodyStatusNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"Too many requests"}`))
	}))
	defer srv.Close()

	_, err := newsapi.NewClient(srv.URL, "k", time.Second).Search(context.Background(), "q")
	var ue *apperr.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "Too many requests", ue.Message)
	require.Equal(t, "rateLimited", ue.Detail)
	require.Equal(t, "NewsAPI error: Too many requests", apperr.PublicMessage(err))
}

func TestSearchBodyStatusWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"weird"}`))
	}))
	defer srv.Close()

	_, err := newsapi.NewClient(srv.URL, "k", time.Second).Search(context.Background(), "q")
	require.Equal(t, "NewsAPI error: Unknown error", apperr.PublicMessage(err))
}

func TestSearchTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newsapi.NewClient(srv.URL, "k", 50*time.Millisecond).Search(context.Background(), "q")
	var ne *apperr.NetworkError
	require.ErrorAs(t, err, &ne)
	require.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
}

func TestSearchConnectionRefusedIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := newsapi.NewClient(addr, "k", time.Second).Search(context.Background(), "q")
	require.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
}

func TestSearchUndecodableBodyIsInternal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	_, err := newsapi.NewClient(srv.URL, "k", time.Second).Search(context.Background(), "q")
	require.Error(t, err)
	require.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
