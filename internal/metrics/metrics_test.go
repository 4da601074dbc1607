package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func scrape(t *testing.T) string {
	t.Helper()
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Middleware)
	router.HandleFunc("/widgets/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods(http.MethodGet)

	for _, path := range []string{"/widgets/a", "/widgets/b?x=1"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t)
	want := `ucsb_api_http_requests_total{method="GET",route="/widgets/{name}",status="418"} 2`
	if !strings.Contains(body, want) {
		t.Fatalf("expected %q in metrics output:\n%s", want, body)
	}
	if strings.Contains(body, `route="/widgets/a"`) {
		t.Fatal("raw paths must not be used as labels")
	}
}

func TestRecordEntityOperation(t *testing.T) {
	RecordEntityOperation("Widget", "get", "not_found")

	body := scrape(t)
	want := `ucsb_api_entities_operations_total{entity="Widget",operation="get",outcome="not_found"} 1`
	if !strings.Contains(body, want) {
		t.Fatalf("expected %q in metrics output", want)
	}
}

func TestRouteTemplateWithoutRoute(t *testing.T) {
	if got := RouteTemplate(httptest.NewRequest(http.MethodGet, "/x", nil)); got != "unmatched" {
		t.Fatalf("RouteTemplate = %q", got)
	}
}
