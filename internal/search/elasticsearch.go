package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"hunttickets/internal/config"
	"hunttickets/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// MaxResults caps a search without an explicit limit.
const MaxResults = 1000

// ElasticsearchClient keeps the full-text event index in step with the
// events table and answers free-text event queries.
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

func NewElasticsearchClient(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	if err := client.ensureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

// indexMapping analyzes text fields as Spanish and keeps the filterable
// fields as keywords.
func indexMapping() map[string]any {
	text := map[string]any{"type": "text", "analyzer": "spanish_folded"}
	keyword := map[string]any{"type": "keyword"}

	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"spanish_folded": map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "asciifolding", "spanish_stop", "spanish_stemmer"},
					},
				},
				"filter": map[string]any{
					"spanish_stop":    map[string]any{"type": "stop", "stopwords": "_spanish_"},
					"spanish_stemmer": map[string]any{"type": "stemmer", "language": "light_spanish"},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id": map[string]any{"type": "long"},
				"title": map[string]any{
					"type":     "text",
					"analyzer": "spanish_folded",
					"fields": map[string]any{
						"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
					},
				},
				"description":  text,
				"location":     text,
				"status":       keyword,
				"category":     keyword,
				"organizer_id": keyword,
				"event_date":   map[string]any{"type": "date", "format": "strict_date_optional_time||epoch_millis"},
				"created_at":   map[string]any{"type": "date"},
				"updated_at":   map[string]any{"type": "date"},
			},
		},
	}
}

func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mappingJSON, err := json.Marshal(indexMapping())
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(mappingJSON),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// eventDocument is the indexed projection of an event.
type eventDocument struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
	Category    string    `json:"category"`
	OrganizerID string    `json:"organizer_id,omitempty"`
	EventDate   time.Time `json:"event_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newEventDocument(ev *models.Event) eventDocument {
	doc := eventDocument{
		ID:        ev.ID,
		Title:     ev.Title,
		Location:  ev.Location,
		Status:    ev.Status,
		Category:  ev.Category,
		EventDate: ev.EventDate,
		CreatedAt: ev.CreatedAt,
		UpdatedAt: ev.UpdatedAt,
	}
	if ev.Description != nil {
		doc.Description = *ev.Description
	}
	if ev.OrganizerID != nil {
		doc.OrganizerID = *ev.OrganizerID
	}
	return doc
}

// Search returns the ids of matching events ordered by event date.
func (c *ElasticsearchClient) Search(ctx context.Context, f *models.EventFilters) ([]int64, error) {
	searchJSON, err := json.Marshal(buildSearchRequest(f))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index:          []string{c.config.Index},
		Body:           bytes.NewReader(searchJSON),
		SourceIncludes: []string{"id"},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]int64, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			slog.Warn("Skipping search hit with non-numeric id", "id", hit.ID)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func buildSearchRequest(f *models.EventFilters) map[string]any {
	limit, offset := models.Page(f.Limit, f.Offset)
	if limit == 0 {
		limit = MaxResults
	}
	return map[string]any{
		"query": buildSearchQuery(f),
		"sort":  buildSortQuery(),
		"from":  offset,
		"size":  limit,
	}
}

func buildSearchQuery(f *models.EventFilters) map[string]any {
	var must, filter []map[string]any

	if f.Query != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     f.Query,
				"fields":    []string{"title^2", "description", "location"},
				"fuzziness": "AUTO",
			},
		})
	}
	if f.Location != "" {
		must = append(must, map[string]any{
			"match": map[string]any{"location": f.Location},
		})
	}

	terms := map[string]string{
		"status":       f.Status,
		"category":     f.Category,
		"organizer_id": f.OrganizerID,
	}
	for _, field := range []string{"status", "category", "organizer_id"} {
		if v := terms[field]; v != "" {
			filter = append(filter, map[string]any{"term": map[string]any{field: v}})
		}
	}

	if f.DateFrom != nil || f.DateTo != nil {
		rng := map[string]any{}
		if f.DateFrom != nil {
			rng["gte"] = f.DateFrom.UTC().Format(time.RFC3339)
		}
		if f.DateTo != nil {
			rng["lte"] = f.DateTo.UTC().Format(time.RFC3339)
		}
		filter = append(filter, map[string]any{"range": map[string]any{"event_date": rng}})
	}

	if len(must) == 0 && len(filter) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}

	boolQuery := map[string]any{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	return map[string]any{"bool": boolQuery}
}

// buildSortQuery orders hits like the database listing; relevance only
// decides which events match.
func buildSortQuery() []map[string]any {
	return []map[string]any{
		{"event_date": map[string]any{"order": "asc"}},
		{"id": map[string]any{"order": "asc"}},
	}
}

func (c *ElasticsearchClient) IndexEvent(ctx context.Context, event *models.Event) error {
	eventJSON, err := json.Marshal(newEventDocument(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(event.ID, 10),
		Body:       bytes.NewReader(eventJSON),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}

	return nil
}

// BulkIndex writes every event in one bulk request and returns how many
// documents the cluster rejected.
func (c *ElasticsearchClient) BulkIndex(ctx context.Context, events []models.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	body, err := bulkBody(c.config.Index, events)
	if err != nil {
		return 0, err
	}

	req := esapi.BulkRequest{
		Body:    bytes.NewReader(body),
		Refresh: "true",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("failed to execute bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("bulk error: %s", res.String())
	}

	var response struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode bulk response: %w", err)
	}

	failed := 0
	if response.Errors {
		for _, item := range response.Items {
			for _, result := range item {
				if result.Status > 299 {
					failed++
				}
			}
		}
	}
	return failed, nil
}

func bulkBody(index string, events []models.Event) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range events {
		meta := map[string]any{
			"index": map[string]any{"_index": index, "_id": strconv.FormatInt(events[i].ID, 10)},
		}
		if err := enc.Encode(meta); err != nil {
			return nil, fmt.Errorf("failed to encode bulk meta: %w", err)
		}
		if err := enc.Encode(newEventDocument(&events[i])); err != nil {
			return nil, fmt.Errorf("failed to encode event %d: %w", events[i].ID, err)
		}
	}
	return buf.Bytes(), nil
}

func (c *ElasticsearchClient) DeleteEvent(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(id, 10),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete error: %s", res.String())
	}

	return nil
}

func (c *ElasticsearchClient) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       c.config.Timeout,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}

	return nil
}

// IndexName is the configured index, for log lines.
func (c *ElasticsearchClient) IndexName() string {
	return c.config.Index
}
