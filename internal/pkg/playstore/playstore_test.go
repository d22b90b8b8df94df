// Copyright 2026 Peter Edge
//
// All rights reserved.

package playstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInAppPriceRange(t *testing.T) {
	t.Parallel()
	server, queries := newTestServer(t)
	client := NewClient(ClientWithBaseURL(server.URL), ClientWithLanguage("zh-TW"))

	// Embedded data path.
	price, err := client.GetInAppPriceRange(context.Background(), "com.miHoYo.GenshinImpact", "US")
	require.NoError(t, err)
	require.Equal(t, "US$0.99 - US$99.99 per item", price)
	query := queries.get("com.miHoYo.GenshinImpact")
	require.Equal(t, "zh-TW", query.Get("hl"))
	require.Equal(t, "us", query.Get("gl"))

	// Rendered text fallback.
	price, err = client.GetInAppPriceRange(context.Background(), "com.rendered", "TW")
	require.NoError(t, err)
	require.Equal(t, "每個項目 NT$30 - NT$3,290", price)
}

func TestGetInAppPriceRangeErrors(t *testing.T) {
	t.Parallel()
	server, _ := newTestServer(t)
	client := NewClient(ClientWithBaseURL(server.URL))

	_, err := client.GetInAppPriceRange(context.Background(), "com.free", "US")
	require.ErrorIs(t, err, ErrNoInAppPrice)
	_, err = client.GetInAppPriceRange(context.Background(), "com.missing", "US")
	require.ErrorContains(t, err, "unexpected status 404")
	_, err = client.GetInAppPriceRange(context.Background(), "", "US")
	require.Error(t, err)
	_, err = client.GetInAppPriceRange(context.Background(), "com.free", "")
	require.Error(t, err)
}

// recordedQueries records the last query string seen per package ID.
type recordedQueries struct {
	mu      sync.Mutex
	queries map[string]url.Values
}

func (r *recordedQueries) get(packageID string) url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries[packageID]
}

func newTestServer(t *testing.T) (*httptest.Server, *recordedQueries) {
	t.Helper()
	pages := map[string]string{
		"com.miHoYo.GenshinImpact": "testdata/details.html",
		"com.rendered":             "testdata/rendered.html",
		"com.free":                 "testdata/free.html",
	}
	recorded := &recordedQueries{queries: make(map[string]url.Values)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		packageID := query.Get("id")
		recorded.mu.Lock()
		recorded.queries[packageID] = query
		recorded.mu.Unlock()
		filePath, ok := pages[packageID]
		if !ok {
			http.NotFound(w, r)
			return
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server, recorded
}
