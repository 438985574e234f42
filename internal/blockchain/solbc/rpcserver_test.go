package solbc

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

// fakeRPC отвечает на JSON-RPC запросы заранее заданными результатами.
type fakeRPC struct {
	mu      sync.Mutex
	results map[string]string
	errors  map[string]string
	calls   map[string]int
}

func newFakeRPC(t *testing.T) (*fakeRPC, *httptest.Server) {
	t.Helper()
	f := &fakeRPC{
		results: make(map[string]string),
		errors:  make(map[string]string),
		calls:   make(map[string]int),
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeRPC) on(method, result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[method] = result
}

func (f *fakeRPC) fail(method, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[method] = message
}

func (f *fakeRPC) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeRPC) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     jsoniter.RawMessage `json:"id"`
		Method string              `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.ID) == 0 {
		req.ID = jsoniter.RawMessage("1")
	}

	f.mu.Lock()
	f.calls[req.Method]++
	result, ok := f.results[req.Method]
	errMsg, failing := f.errors[req.Method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case failing:
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"error":{"code":-32000,"message":"` + errMsg + `"}}`))
	case ok:
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + result + `}`))
	default:
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"error":{"code":-32601,"message":"method not found"}}`))
	}
}
