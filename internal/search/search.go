package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Config struct {
	URL      string
	User     string
	Password string
}

// NewClient connects and checks the cluster answers before returning.
func NewClient(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	l := logging.FromContext(ctx).With("component", "search")
	l.Info("es_connecting", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("search: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("search: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res.StatusCode, res.Body)
	}

	l.Info("es_connected")
	return client, nil
}

// Index keeps a searchable copy of the catalog. Only the id of a hit is
// trusted; prices and stock are read from the database.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

type document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Stock       int64  `json:"stock"`
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "name":        {"type": "text"},
      "description": {"type": "text"},
      "category":    {"type": "keyword"},
      "price":       {"type": "scaled_float", "scaling_factor": 100},
      "stock":       {"type": "long"}
    }
  }
}`

func (ix *Index) EnsureIndex(ctx context.Context) error {
	res, err := ix.ES.Indices.Exists([]string{ix.Name}, ix.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("search: index exists: status %d", res.StatusCode)
	}

	res, err = ix.ES.Indices.Create(ix.Name,
		ix.ES.Indices.Create.WithContext(ctx),
		ix.ES.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res.StatusCode, res.Body)
	}
	return nil
}

func (ix *Index) IndexProduct(ctx context.Context, p *models.Product) error {
	body, err := json.Marshal(document{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
	})
	if err != nil {
		return err
	}

	res, err := ix.ES.Index(ix.Name, bytes.NewReader(body),
		ix.ES.Index.WithContext(ctx),
		ix.ES.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("search: index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index product", res.StatusCode, res.Body)
	}
	return nil
}

func (ix *Index) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := ix.ES.Delete(ix.Name, id.String(), ix.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete product", res.StatusCode, res.Body)
	}
	return nil
}

// Search runs a fuzzy multi_match over name and description, optionally
// filtered by category, and returns the matching product ids in rank order.
func (ix *Index) Search(ctx context.Context, q, category string, offset, limit int) (int64, []uuid.UUID, error) {
	boolQuery := map[string]any{
		"must": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if category != "" {
		boolQuery["filter"] = map[string]any{
			"term": map[string]any{"category": category},
		}
	}
	body := map[string]any{
		"query":   map[string]any{"bool": boolQuery},
		"from":    offset,
		"size":    limit,
		"_source": false,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(ctx),
		ix.ES.Search.WithIndex(ix.Name),
		ix.ES.Search.WithBody(&buf),
		ix.ES.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("query", res.StatusCode, res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return r.Hits.Total.Value, ids, nil
}

func responseError(op string, status int, body io.Reader) error {
	msg, _ := io.ReadAll(io.LimitReader(body, 512))
	return fmt.Errorf("search: %s: status %d: %s", op, status, strings.TrimSpace(string(msg)))
}
