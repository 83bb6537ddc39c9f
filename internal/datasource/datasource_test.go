package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yourusername/skill-tracker/internal/config"
)

// TestResultsAPIFetchResults tests fetching and converting results from the API
func TestResultsAPIFetchResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/results" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "r1", "white": "shusaku", "black": "shusai", "playedOn": "2024-03-01", "outcome": "B", "event": "castle game"},
			{"id": "r2", "white": "dosaku", "black": "jowa", "playedOn": "2024-03-02", "outcome": "W", "handicap": "2", "handicapKind": "fixed"},
			{"id": "r3", "white": "a", "black": "b", "playedOn": "not-a-date", "outcome": "W"}
		]`))
	}))
	defer server.Close()

	httpClient := NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), nil)
	defer httpClient.Close()

	client := NewResultsAPIClient(httpClient, server.URL, "test-key", true, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	records, err := client.FetchResults(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("failed to fetch results: %v", err)
	}

	// The record with the bad date is skipped, not fatal
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].SourceID != "r1" || records[0].White != "shusaku" || records[0].Outcome != "B" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[0].Label != "castle game" {
		t.Errorf("expected label from event field, got %q", records[0].Label)
	}
	if records[1].Handicap != "2" || records[1].HandicapKind != "fixed" {
		t.Errorf("unexpected handicap fields: %+v", records[1])
	}
}

// TestResultsAPIAuthenticationFailure tests the unauthorized path
func TestResultsAPIAuthenticationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	httpClient := NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), nil)
	defer httpClient.Close()

	client := NewResultsAPIClient(httpClient, server.URL, "wrong-key", true, nil)

	_, err := client.FetchResults(context.Background(), time.Now().AddDate(0, 0, -1), time.Now())
	if err == nil {
		t.Fatal("expected error for unauthorized response")
	}

	var dsErr DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatalf("expected DataSourceError, got %T", err)
	}
	if dsErr.Code != ErrCodeAuthenticationFailed {
		t.Errorf("expected code %q, got %q", ErrCodeAuthenticationFailed, dsErr.Code)
	}
}

// TestResultsAPIDisabled tests that a disabled source refuses to fetch
func TestResultsAPIDisabled(t *testing.T) {
	client := NewResultsAPIClient(nil, "http://localhost", "", false, nil)

	_, err := client.FetchResults(context.Background(), time.Now(), time.Now())
	if err == nil {
		t.Fatal("expected error from disabled source")
	}
	if client.IsEnabled() {
		t.Error("expected IsEnabled to be false")
	}
}

// TestCSVSourceFetchResults tests CSV parsing and date filtering
func TestCSVSourceFetchResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	csvData := `source_id,white,black,played_on,outcome,handicap,handicap_kind,label
c1,shusaku,shusai,2024-03-01,B,,,castle game
c2,dosaku,jowa,2024-03-10,W,2,fixed,
c3,honinbo,inoue,2024-04-01,D,,,
`
	if err := os.WriteFile(path, []byte(csvData), 0o644); err != nil {
		t.Fatalf("failed to write CSV fixture: %v", err)
	}

	source := NewCSVSource(path, true, nil)

	records, err := source.FetchResults(context.Background(),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("failed to fetch CSV results: %v", err)
	}

	// The April game is outside the range
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Handicap != "2" || records[1].HandicapKind != "fixed" {
		t.Errorf("unexpected handicap fields: %+v", records[1])
	}
}

// TestCSVSourceBadHeader tests CSV header validation
func TestCSVSourceBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("id,winner,loser\n1,a,b\n"), 0o644); err != nil {
		t.Fatalf("failed to write CSV fixture: %v", err)
	}

	source := NewCSVSource(path, true, nil)
	_, err := source.FetchResults(context.Background(), time.Time{}, time.Now())
	if err == nil {
		t.Fatal("expected error for bad CSV header")
	}
}

// TestCSVSourceFetchResult tests lookup by source ID
func TestCSVSourceFetchResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	csvData := `source_id,white,black,played_on,outcome,handicap,handicap_kind,label
c1,shusaku,shusai,2024-03-01,B,,,
`
	if err := os.WriteFile(path, []byte(csvData), 0o644); err != nil {
		t.Fatalf("failed to write CSV fixture: %v", err)
	}

	source := NewCSVSource(path, true, nil)

	record, err := source.FetchResult(context.Background(), "c1")
	if err != nil {
		t.Fatalf("failed to fetch result: %v", err)
	}
	if record.Black != "shusai" {
		t.Errorf("expected black 'shusai', got %q", record.Black)
	}

	_, err = source.FetchResult(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for unknown result ID")
	}
}

// TestHTTPClientRateLimit tests that the limiter spaces out requests
func TestHTTPClientRateLimit(t *testing.T) {
	cfg := DefaultHTTPClientConfig()
	cfg.RateLimit = 10
	client := NewRateLimitedHTTPClient(cfg, nil)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := client.limiter.Wait(ctx); err != nil {
			t.Fatalf("limiter wait %d failed: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// 5 requests at 10 req/s with burst 1 needs roughly 400ms
	if elapsed < 300*time.Millisecond {
		t.Errorf("expected rate limiting to take at least 300ms, took %v", elapsed)
	}
}

// TestHTTPClientRetriesServerErrors tests the retry policy against a flaky server
func TestHTTPClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	client := NewRateLimitedHTTPClient(cfg, nil)
	defer client.Close()

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected request to eventually succeed: %v", err)
	}
	defer resp.Body.Close()

	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

// TestDataSourceFactory tests factory creation from feed config
func TestDataSourceFactory(t *testing.T) {
	factory := NewFactory(nil, nil)
	httpClient := NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), nil)
	defer httpClient.Close()

	tests := []struct {
		name        string
		cfg         config.FeedConfig
		httpClient  *RateLimitedHTTPClient
		shouldError bool
	}{
		{"results API", config.FeedConfig{Source: "results_api", APIURL: "http://localhost"}, httpClient, false},
		{"results API without client", config.FeedConfig{Source: "results_api"}, nil, true},
		{"CSV", config.FeedConfig{Source: "csv", APIURL: "/tmp/results.csv"}, nil, false},
		{"CSV without path", config.FeedConfig{Source: "csv"}, nil, true},
		{"unknown", config.FeedConfig{Source: "carrier_pigeon"}, httpClient, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.NewDataSource(tt.cfg, tt.httpClient)
			if (err != nil) != tt.shouldError {
				t.Errorf("expected error=%v, got error=%v", tt.shouldError, err)
			}
		})
	}
}

// TestFactoryStreamRequiresEnabled tests stream construction guards
func TestFactoryStreamRequiresEnabled(t *testing.T) {
	factory := NewFactory(nil, nil)

	_, err := factory.NewResultStreamFromConfig(config.FeedConfig{StreamEnabled: false})
	if err == nil {
		t.Fatal("expected error when streaming disabled")
	}

	_, err = factory.NewResultStreamFromConfig(config.FeedConfig{StreamEnabled: true})
	if err == nil {
		t.Fatal("expected error when stream URL missing")
	}

	stream, err := factory.NewResultStreamFromConfig(config.FeedConfig{StreamEnabled: true, StreamURL: "ws://localhost/stream"})
	if err != nil {
		t.Fatalf("expected stream to be created: %v", err)
	}
	if stream.IsConnected() {
		t.Error("expected stream to start disconnected")
	}
}
