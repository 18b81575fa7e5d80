package performance

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMeasureReportsSizeAndRequestCount(t *testing.T) {
	body := make([]byte, 2048)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer server.Close()

	result, err := Measure(server.URL)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if result.NumRequests != 1 {
		t.Errorf("num_requests = %d, want 1", result.NumRequests)
	}
	if result.TotalSizeKB != 2 {
		t.Errorf("total_size_kb = %d, want 2", result.TotalSizeKB)
	}
	if result.LoadTimeMs < 1 {
		t.Errorf("load_time_ms = %d, want >= 1", result.LoadTimeMs)
	}
}

func TestMeasurePropagatesFetchError(t *testing.T) {
	_, err := Measure("http://127.0.0.1:1/unreachable")
	if err == nil {
		t.Error("expected error for unreachable host")
	}
}
