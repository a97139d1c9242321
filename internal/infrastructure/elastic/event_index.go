package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
)

// Mapping is the index definition used when the events index is missing.
const Mapping = `{
  "mappings": {
    "properties": {
      "id":                  {"type": "keyword"},
      "title":               {"type": "text"},
      "description":         {"type": "text"},
      "location":            {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "date":                {"type": "date"},
      "creatorId":           {"type": "keyword"},
      "maxParticipants":     {"type": "integer"},
      "currentParticipants": {"type": "integer"}
    }
  }
}`

// EventIndex mirrors events into an Elasticsearch index for full-text search.
type EventIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewEventIndex(es *elasticsearch.Client, index string) *EventIndex {
	return &EventIndex{es: es, index: index}
}

// Ensure creates the index with Mapping when it does not exist yet.
func (x *EventIndex) Ensure(ctx context.Context) error {
	return helpers.EnsureIndex(ctx, x.es, x.index, Mapping)
}

type eventDoc struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Location            string    `json:"location"`
	Date                time.Time `json:"date"`
	CreatorID           string    `json:"creatorId"`
	MaxParticipants     int       `json:"maxParticipants"`
	CurrentParticipants int       `json:"currentParticipants"`
}

func (x *EventIndex) Index(ctx context.Context, e *entity.Event) error {
	b, err := json.Marshal(eventDoc{
		ID:                  e.ID,
		Title:               e.Title,
		Description:         e.Description,
		Location:            e.Location,
		Date:                e.Date,
		CreatorID:           e.CreatorID,
		MaxParticipants:     e.MaxParticipants,
		CurrentParticipants: e.CurrentParticipants,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: e.ID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("es index -> %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *EventIndex) Remove(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: x.index, DocumentID: id}.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("es delete -> %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// SearchQuery builds the multi_match body used by Search.
func SearchQuery(q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"title^2", "description", "location"},
				"fuzziness": "AUTO",
			},
		},
		"size":    size,
		"_source": false,
	}
}

func (x *EventIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	b, _ := json.Marshal(SearchQuery(q, size))

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.ID)
	}
	return out, nil
}
