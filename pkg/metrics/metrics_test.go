package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/Sternrassler/pagedseq/pkg/cache"
	_ "github.com/Sternrassler/pagedseq/pkg/client"
	_ "github.com/Sternrassler/pagedseq/pkg/jsonbridge"
	_ "github.com/Sternrassler/pagedseq/pkg/sqlsource"
	"github.com/prometheus/client_golang/prometheus"
)

func TestRegistry(t *testing.T) {
	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
	if Gatherer != prometheus.DefaultGatherer {
		t.Error("Gatherer should be the default Prometheus gatherer")
	}
}

func TestHandlerServesCatalogue(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)

	// Unlabelled metrics are exported from registration on.
	for _, name := range []string{
		"pagedseq_jsonbridge_malformed_documents_total",
		"pagedseq_client_pages_fetched_total",
		"pagedseq_cache_hits_total",
		"pagedseq_sqlsource_rows_total",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("Metric %s missing from /metrics output", name)
		}
	}
}
