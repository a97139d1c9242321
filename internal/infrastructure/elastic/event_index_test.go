package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
)

// fakeES answers the few endpoints EventIndex calls.
func fakeES(t *testing.T, seen *[]string) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*seen = append(*seen, r.Method+" "+r.URL.Path+" "+string(body))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		switch {
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_, _ = io.WriteString(w, `{"hits":{"hits":[{"_id":"b"},{"_id":"a"}]}}`)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
		default:
			_, _ = io.WriteString(w, `{"result":"created"}`)
		}
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestEventIndex_IndexSearchRemove(t *testing.T) {
	var seen []string
	x := NewEventIndex(fakeES(t, &seen), "events")
	ctx := context.Background()

	require.NoError(t, x.Index(ctx, &entity.Event{ID: "a", Title: "Jazz"}))
	require.Len(t, seen, 1)
	assert.Contains(t, seen[0], "/events/_doc/a")
	assert.Contains(t, seen[0], `"title":"Jazz"`)

	ids, err := x.Search(ctx, "jazz", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)

	// a missing document is already removed
	assert.NoError(t, x.Remove(ctx, "gone"))
}

func TestSearchQuery(t *testing.T) {
	b, err := json.Marshal(SearchQuery("go", 5))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"query": {"multi_match": {"query": "go", "fields": ["title^2", "description", "location"], "fuzziness": "AUTO"}},
		"size": 5,
		"_source": false
	}`, string(b))
}
