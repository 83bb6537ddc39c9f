package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

const csvSourceName = "csv"

// Expected CSV header: source_id,white,black,played_on,outcome,handicap,handicap_kind,label
var csvColumns = []string{"source_id", "white", "black", "played_on", "outcome", "handicap", "handicap_kind", "label"}

// CSVSource implements DataSource for local CSV result files, used for
// offline backfills.
type CSVSource struct {
	path    string
	enabled bool
	logger  *log.Logger
}

// NewCSVSource creates a data source reading results from a CSV file
func NewCSVSource(path string, enabled bool, logger *log.Logger) *CSVSource {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &CSVSource{path: path, enabled: enabled, logger: logger}
}

// FetchResults reads all results from the file and filters by date range
func (s *CSVSource) FetchResults(ctx context.Context, startDate, endDate time.Time) ([]GameRecord, error) {
	if !s.enabled {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}

	all, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	var records []GameRecord
	for _, record := range all {
		if record.PlayedOn.Before(startDate) || record.PlayedOn.After(endDate) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// FetchResult retrieves a single result by its source ID
func (s *CSVSource) FetchResult(ctx context.Context, resultID string) (*GameRecord, error) {
	if !s.enabled {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}

	all, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].SourceID == resultID {
			return &all[i], nil
		}
	}
	return nil, NewDataSourceError(csvSourceName, ErrCodeNotFound, "result not found", nil)
}

// Name returns the data source name
func (s *CSVSource) Name() string {
	return csvSourceName
}

// IsEnabled returns whether this data source is enabled
func (s *CSVSource) IsEnabled() bool {
	return s.enabled
}

func (s *CSVSource) readAll(ctx context.Context) ([]GameRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNotFound, "failed to open results file", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(csvColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "failed to read CSV header", err)
	}
	for i, col := range csvColumns {
		if i >= len(header) || header[i] != col {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData,
				fmt.Sprintf("unexpected CSV header, want columns %v", csvColumns), nil)
		}
	}

	var records []GameRecord
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData,
				fmt.Sprintf("failed to read CSV line %d", line), err)
		}

		playedOn, err := time.Parse("2006-01-02", row[3])
		if err != nil {
			s.logger.Printf("Skipping CSV line %d: invalid date %q", line, row[3])
			continue
		}

		records = append(records, GameRecord{
			SourceID:     row[0],
			White:        row[1],
			Black:        row[2],
			PlayedOn:     playedOn.UTC(),
			Outcome:      row[4],
			Handicap:     row[5],
			HandicapKind: row[6],
			Label:        row[7],
			FetchedAt:    time.Now().UTC(),
		})
	}

	return records, nil
}
