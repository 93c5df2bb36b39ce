package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const eventsIndex = "events"

// ElasticsearchClient maintains a search index over events. Indexing is
// best-effort; Postgres remains the source of truth and listing falls back
// to SQL when search is not configured.
type ElasticsearchClient struct {
	client *elasticsearch.Client
}

type Config struct {
	Addresses string // comma-separated
	Username  string
	Password  string
}

// Enabled reports whether a search backend is configured.
func (c Config) Enabled() bool {
	return c.Addresses != ""
}

func NewElasticsearchClient(cfg Config) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     strings.Split(cfg.Addresses, ","),
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{client: es}

	if err := client.ensureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{eventsIndex},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", eventsIndex)
		return nil
	}

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":         map[string]interface{}{"type": "long"},
				"event_name": map[string]interface{}{"type": "text"},
				"category":   map[string]interface{}{"type": "keyword"},
				"organiser":  map[string]interface{}{"type": "text"},
				"venue":      map[string]interface{}{"type": "text"},
				"theme":      map[string]interface{}{"type": "text"},
				"date": map[string]interface{}{
					"type":   "date",
					"format": "strict_date_optional_time||yyyy-MM-dd",
				},
				"status": map[string]interface{}{"type": "boolean"},
			},
		},
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal index mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: eventsIndex,
		Body:  bytes.NewReader(mappingJSON),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("index creation failed: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", eventsIndex)
	return nil
}

// EventDocument is the indexed projection of an event.
type EventDocument struct {
	ID        int64  `json:"id"`
	EventName string `json:"event_name"`
	Category  string `json:"category"`
	Organiser string `json:"organiser"`
	Venue     string `json:"venue"`
	Theme     string `json:"theme"`
	Date      string `json:"date"`
	Status    bool   `json:"status"`
}

// IndexEvent upserts one event document.
func (c *ElasticsearchClient) IndexEvent(ctx context.Context, doc EventDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal event document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      eventsIndex,
		DocumentID: strconv.FormatInt(doc.ID, 10),
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("event indexing failed: %s", res.String())
	}

	return nil
}

// SearchEvents runs a full-text query over event name, organiser, venue and
// theme and returns matching event ids in relevance order.
func (c *ElasticsearchClient) SearchEvents(ctx context.Context, query string, limit int) ([]int64, error) {
	searchBody := map[string]interface{}{
		"size":    limit,
		"_source": []string{"id"},
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"event_name^2", "organiser", "venue", "theme"},
				"fuzziness": "AUTO",
			},
		},
	}

	payload, err := json.Marshal(searchBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(eventsIndex),
		c.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search returned error: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]int64, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}

	return ids, nil
}
