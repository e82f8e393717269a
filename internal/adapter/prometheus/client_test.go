package prometheus

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/probeworks/slaq/internal/eval"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWindow() eval.Window {
	return eval.NewWindow(time.Now(), 30*time.Minute)
}

func TestClient_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got == "" {
			t.Error("expected query parameter")
		}
		if got := r.URL.Query().Get("time"); got == "" {
			t.Error("expected time parameter")
		}

		resp := QueryResponse{
			Status: "success",
			Data: QueryData{
				ResultType: "vector",
				Result: []VectorResult{
					{
						Metric: map[string]string{"group": "api"},
						Value:  SamplePair{float64(time.Now().Unix()), "1000"},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(DefaultConfig(server.URL), discardLogger())

	rows, err := client.Query(context.Background(), "sum(increase(requests_total[30m]))", testWindow(), 1)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0][eval.ValueField] != "1000" {
		t.Errorf("expected value=1000, got %q", rows[0][eval.ValueField])
	}
	if rows[0]["group"] != "api" {
		t.Errorf("expected label group=api, got %q", rows[0]["group"])
	}
}

func TestClient_BearerTokenAndSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("expected bearer header, got %q", got)
		}
		if got := r.Header.Get("X-Scope-Source"); got != "slaqd-test" {
			t.Errorf("expected source header, got %q", got)
		}
		json.NewEncoder(w).Encode(QueryResponse{Status: "success"})
	}))
	defer server.Close()

	config := DefaultConfig(server.URL)
	config.BearerToken = "sekrit"
	config.SourceLabel = "slaqd-test"
	client := NewClient(config, discardLogger())

	client.Query(context.Background(), "up", testWindow(), 1)
}

func TestClient_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := QueryResponse{
			Status: "success",
			Data: QueryData{
				ResultType: "vector",
				Result:     []VectorResult{},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(DefaultConfig(server.URL), discardLogger())

	rows, err := client.Query(context.Background(), "missing_metric", testWindow(), 1)
	if err != nil {
		t.Fatalf("empty result should not be an error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(DefaultConfig(server.URL), discardLogger())

	rows, err := client.Query(context.Background(), "up", testWindow(), 1)
	if err == nil {
		t.Error("expected error for 500 response")
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows on failure, got %d", len(rows))
	}
}

func TestClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewClient(DefaultConfig(server.URL), discardLogger())

	rows, err := client.Query(context.Background(), "up", testWindow(), 1)
	if err == nil {
		t.Error("expected error for malformed body")
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows on failure, got %d", len(rows))
	}
}

func TestClient_PrometheusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(QueryResponse{
			Status: "error",
			Error:  "invalid query",
		})
	}))
	defer server.Close()

	client := NewClient(DefaultConfig(server.URL), discardLogger())

	rows, err := client.Query(context.Background(), "invalid(", testWindow(), 1)
	if err == nil {
		t.Error("expected error for prometheus error status")
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(QueryResponse{Status: "success"})
	}))
	defer server.Close()

	config := DefaultConfig(server.URL)
	config.Timeout = 50 * time.Millisecond
	client := NewClient(config, discardLogger())

	rows, err := client.Query(context.Background(), "up", testWindow(), 1)
	if err == nil {
		t.Error("expected timeout error")
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows on timeout, got %d", len(rows))
	}
}

func TestClient_MaxResultsTruncation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := QueryResponse{
			Status: "success",
			Data: QueryData{
				ResultType: "vector",
				Result: []VectorResult{
					{Value: SamplePair{0.0, "1"}},
					{Value: SamplePair{0.0, "2"}},
					{Value: SamplePair{0.0, "3"}},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(DefaultConfig(server.URL), discardLogger())

	rows, err := client.Query(context.Background(), "up", testWindow(), 2)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows after truncation, got %d", len(rows))
	}
}

func TestSamplePair_RawValue(t *testing.T) {
	tests := []struct {
		name     string
		pair     SamplePair
		expected string
	}{
		{"string value", SamplePair{0.0, "42.5"}, "42.5"},
		{"float value", SamplePair{0.0, 42.5}, "42.5"},
		{"missing value", SamplePair{0.0, nil}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pair.RawValue(); got != tt.expected {
				t.Errorf("RawValue() = %q, want %q", got, tt.expected)
			}
		})
	}
}
