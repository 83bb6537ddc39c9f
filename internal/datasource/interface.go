package datasource

import (
	"context"
	"errors"
	"time"
)

// DataSource defines the interface for fetching game results from external providers
type DataSource interface {
	// FetchResults retrieves game results within the specified date range
	FetchResults(ctx context.Context, startDate, endDate time.Time) ([]GameRecord, error)

	// FetchResult retrieves a single game result by its provider ID
	FetchResult(ctx context.Context, resultID string) (*GameRecord, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// GameRecord represents a raw game result from any data source
type GameRecord struct {
	SourceID      string    `json:"source_id"`      // Provider's unique result ID
	White         string    `json:"white"`          // White player name as reported
	Black         string    `json:"black"`          // Black player name as reported
	PlayedOn      time.Time `json:"played_on"`      // Game date UTC
	Outcome       string    `json:"outcome"`        // Raw outcome code from the provider
	Handicap      string    `json:"handicap"`       // Raw handicap value, empty if none
	HandicapKind  string    `json:"handicap_kind"`  // Raw handicap kind, empty if none
	Label         string    `json:"label"`          // Event or tournament label
	FetchedAt     time.Time `json:"fetched_at"`     // When data was fetched
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

const dataSourceDisabledMsg = "data source is disabled"

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
