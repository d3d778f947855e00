package services

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type engineResponse struct {
	status int
	body   string
}

// fakeEngine is an HTTP server standing in for Elasticsearch or OpenSearch.
// Responses are looked up by request path; unknown paths answer 500.
type fakeEngine struct {
	mu       sync.Mutex
	routes   map[string]engineResponse
	requests []string
	bodies   map[string]string
}

func newFakeEngine(t *testing.T, routes map[string]engineResponse) (*fakeEngine, string) {
	t.Helper()
	e := &fakeEngine{routes: routes, bodies: make(map[string]string)}
	server := httptest.NewServer(http.HandlerFunc(e.serveHTTP))
	t.Cleanup(server.Close)
	return e, server.URL
}

func (e *fakeEngine) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	e.mu.Lock()
	e.requests = append(e.requests, r.URL.Path)
	e.bodies[r.URL.Path] = string(body)
	response, ok := e.routes[r.URL.Path]
	e.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"unexpected request"}`)
		return
	}
	status := response.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		io.WriteString(w, response.body)
	}
}

func (e *fakeEngine) paths() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.requests...)
}

func (e *fakeEngine) body(path string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bodies[path]
}

const (
	acknowledged      = `{"acknowledged":true}`
	sampleHitResponse = `{"hits":{"total":{"value":1},"hits":[{"_id":"1","_source":{"title":"Shoe","id":1}}]}}`
	notFoundResponse  = `{"error":{"type":"index_not_found_exception"},"status":404}`
	conflictResponse  = `{"error":{"type":"illegal_argument_exception","reason":"mapper [title] cannot be changed from type [text] to [long]"},"status":400}`
)
