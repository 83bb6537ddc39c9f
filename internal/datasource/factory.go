package datasource

import (
	"fmt"
	"io"
	"log"

	"github.com/yourusername/skill-tracker/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// Results API data source type
	ResultsAPISourceType SourceType = "results_api"
	// CSV file data source type
	CSVSourceType SourceType = "csv"
)

// Factory creates DataSource implementations based on configuration
type Factory struct {
	logger *log.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewDataSource creates a DataSource based on the feed configuration
func (f *Factory) NewDataSource(cfg config.FeedConfig, httpClient *RateLimitedHTTPClient) (DataSource, error) {
	switch SourceType(cfg.Source) {
	case ResultsAPISourceType:
		if httpClient == nil {
			return nil, fmt.Errorf("HTTP client is required for the results API source")
		}
		return NewResultsAPIClient(httpClient, cfg.APIURL, cfg.APIKey, true, f.logger), nil

	case CSVSourceType:
		// For the CSV source the API URL is a local file path
		if cfg.APIURL == "" {
			return nil, fmt.Errorf("CSV source requires a file path")
		}
		return NewCSVSource(cfg.APIURL, true, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Source)
	}
}

// NewResultStreamFromConfig creates a live result stream if streaming is enabled
func (f *Factory) NewResultStreamFromConfig(cfg config.FeedConfig) (*ResultStream, error) {
	if !cfg.StreamEnabled {
		return nil, fmt.Errorf("streaming is disabled")
	}
	if cfg.StreamURL == "" {
		return nil, fmt.Errorf("stream URL is required")
	}
	return NewResultStream(cfg.StreamURL, cfg.APIKey, f.logger), nil
}

// ListAvailableSources returns the known source types
func (f *Factory) ListAvailableSources() []SourceType {
	return []SourceType{ResultsAPISourceType, CSVSourceType}
}
