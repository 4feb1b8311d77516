package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

type fakeCluster struct {
	mu       sync.Mutex
	exists   bool
	docs     map[string]map[string]any
	lastBody map[string]any
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	body, _ := io.ReadAll(r.Body)
	path := strings.Trim(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	switch {
	case path == "":
		_, _ = io.WriteString(w, `{"version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)
	case r.Method == http.MethodHead && len(parts) == 1:
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && len(parts) == 1:
		f.exists = true
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodDelete:
		if _, ok := f.docs[parts[2]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		delete(f.docs, parts[2])
		_, _ = io.WriteString(w, `{"result":"deleted"}`)
	case len(parts) == 3 && parts[1] == "_doc":
		var doc map[string]any
		_ = json.Unmarshal(body, &doc)
		f.docs[parts[2]] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case len(parts) == 2 && parts[1] == "_search":
		_ = json.Unmarshal(body, &f.lastBody)
		type hit struct {
			ID string `json:"_id"`
		}
		var hits []hit
		for id := range f.docs {
			hits = append(hits, hit{ID: id})
		}
		hits = append(hits, hit{ID: "not-a-uuid"})
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{
				"total": map[string]any{"value": len(hits)},
				"hits":  hits,
			},
		})
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unexpected request"}`)
	}
}

func newTestIndex(t *testing.T) (*Index, *fakeCluster) {
	t.Helper()

	cluster := &fakeCluster{docs: map[string]map[string]any{}}
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), Config{URL: srv.URL})
	require.NoError(t, err)
	return &Index{ES: client, Name: "products"}, cluster
}

func TestIndex_Lifecycle(t *testing.T) {
	t.Parallel()

	ix, cluster := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.EnsureIndex(ctx))
	assert.True(t, cluster.exists)
	require.NoError(t, ix.EnsureIndex(ctx))

	p := &models.Product{
		ID:          uuid.New(),
		Name:        "Cast iron pan",
		Description: "pre-seasoned",
		Category:    "kitchen",
		Price:       decimal.RequireFromString("35.5"),
		Stock:       4,
	}
	require.NoError(t, ix.IndexProduct(ctx, p))
	require.Contains(t, cluster.docs, p.ID.String())
	assert.Equal(t, "35.50", cluster.docs[p.ID.String()]["price"])
	assert.Equal(t, "kitchen", cluster.docs[p.ID.String()]["category"])

	total, ids, err := ix.Search(ctx, "pan", "kitchen", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []uuid.UUID{p.ID}, ids)

	query := cluster.lastBody["query"].(map[string]any)["bool"].(map[string]any)
	assert.Contains(t, query, "filter")
	assert.EqualValues(t, 10, cluster.lastBody["size"])

	require.NoError(t, ix.DeleteProduct(ctx, p.ID))
	require.NoError(t, ix.DeleteProduct(ctx, p.ID))
	assert.Empty(t, cluster.docs)
}

func TestNewClient_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"security_exception"}`)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(context.Background(), Config{URL: srv.URL})
	require.Error(t, err)
}
