package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const resultsAPISourceName = "results_api"

// ResultsAPIClient implements DataSource for a JSON results feed
type ResultsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *log.Logger
}

// apiResult represents a game result from the results API
type apiResult struct {
	ID           string  `json:"id"`
	White        string  `json:"white"`
	Black        string  `json:"black"`
	PlayedOn     string  `json:"playedOn"`
	Outcome      string  `json:"outcome"`
	Handicap     *string `json:"handicap"`
	HandicapKind *string `json:"handicapKind"`
	Event        *string `json:"event"`
}

// NewResultsAPIClient creates a new results API client
func NewResultsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *log.Logger) *ResultsAPIClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ResultsAPIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchResults retrieves game results within the specified date range
func (c *ResultsAPIClient) FetchResults(ctx context.Context, startDate, endDate time.Time) ([]GameRecord, error) {
	if !c.enabled {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}

	url := fmt.Sprintf("%s/results?from=%s&to=%s", c.baseURL, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeNetworkError, "failed to create request", err)
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeNetworkError, "failed to fetch results", err)
	}
	defer resp.Body.Close()

	// Handle authentication errors
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	}

	// Handle rate limiting
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var apiResults []apiResult
	if err := json.NewDecoder(resp.Body).Decode(&apiResults); err != nil {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	records := make([]GameRecord, 0, len(apiResults))
	for _, result := range apiResults {
		record, err := c.convertResult(&result)
		if err != nil {
			c.logger.Printf("Failed to convert result %s: %v", result.ID, err)
			continue
		}
		records = append(records, *record)
	}

	return records, nil
}

// FetchResult retrieves a single game result by provider ID
func (c *ResultsAPIClient) FetchResult(ctx context.Context, resultID string) (*GameRecord, error) {
	if !c.enabled {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}

	url := fmt.Sprintf("%s/results/%s", c.baseURL, resultID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeNetworkError, "failed to create request", err)
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeNetworkError, "failed to fetch result", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeNotFound, "result not found", nil)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var result apiResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, NewDataSourceError(resultsAPISourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	return c.convertResult(&result)
}

// Name returns the data source name
func (c *ResultsAPIClient) Name() string {
	return resultsAPISourceName
}

// IsEnabled returns whether this data source is enabled
func (c *ResultsAPIClient) IsEnabled() bool {
	return c.enabled
}

func (c *ResultsAPIClient) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")
}

// convertResult converts the API result format to a GameRecord
func (c *ResultsAPIClient) convertResult(result *apiResult) (*GameRecord, error) {
	playedOn, err := time.Parse("2006-01-02", result.PlayedOn)
	if err != nil {
		// Some providers send full timestamps
		playedOn, err = time.Parse(time.RFC3339, result.PlayedOn)
		if err != nil {
			return nil, fmt.Errorf("invalid played_on date %q: %w", result.PlayedOn, err)
		}
	}

	record := &GameRecord{
		SourceID:  result.ID,
		White:     result.White,
		Black:     result.Black,
		PlayedOn:  playedOn.UTC(),
		Outcome:   result.Outcome,
		FetchedAt: time.Now().UTC(),
	}
	if result.Handicap != nil {
		record.Handicap = *result.Handicap
	}
	if result.HandicapKind != nil {
		record.HandicapKind = *result.HandicapKind
	}
	if result.Event != nil {
		record.Label = *result.Event
	}

	return record, nil
}
