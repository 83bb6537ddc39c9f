package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/skill-tracker/internal/datasource"
	"github.com/yourusername/skill-tracker/internal/logger"
	"github.com/yourusername/skill-tracker/internal/metrics"
	"github.com/yourusername/skill-tracker/internal/models"
	"github.com/yourusername/skill-tracker/internal/repository"
)

// IngestionService handles the result ingestion workflow
type IngestionService struct {
	sources    []datasource.DataSource
	playerRepo repository.PlayerRepository
	gameRepo   repository.GameRepository
	normalizer *GameNormalizer
	metrics    *IngestionMetrics
	ingestLog  *logger.IngestLogger
	batchSize  int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	sources []datasource.DataSource,
	playerRepo repository.PlayerRepository,
	gameRepo repository.GameRepository,
	normalizer *GameNormalizer,
	baseLogger *logrus.Logger,
	batchSize int,
) (*IngestionService, error) {
	if playerRepo == nil || gameRepo == nil {
		return nil, fmt.Errorf("player and game repositories are required")
	}
	if normalizer == nil {
		return nil, fmt.Errorf("normalizer is required")
	}
	if baseLogger == nil {
		baseLogger = logrus.New()
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	return &IngestionService{
		sources:    sources,
		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		normalizer: normalizer,
		metrics:    NewIngestionMetrics(),
		ingestLog:  logger.NewIngestLogger(baseLogger),
		batchSize:  batchSize,
	}, nil
}

// IngestHistorical fetches and ingests results from a named source for a date range
func (s *IngestionService) IngestHistorical(ctx context.Context, sourceName string, startDate, endDate time.Time) (*IngestionMetrics, error) {
	s.metrics.Reset()
	startTime := time.Now()

	source := s.findSource(sourceName)
	if source == nil {
		return nil, fmt.Errorf("data source not found: %s", sourceName)
	}

	records, err := source.FetchResults(ctx, startDate, endDate)
	if err != nil {
		s.metrics.RecordError()
		return s.metrics, fmt.Errorf("failed to fetch results: %w", err)
	}

	s.metrics.mu.Lock()
	s.metrics.TotalRecords = len(records)
	s.metrics.mu.Unlock()

	for i := 0; i < len(records); i += s.batchSize {
		end := i + s.batchSize
		if end > len(records) {
			end = len(records)
		}
		for j := i; j < end; j++ {
			if err := ctx.Err(); err != nil {
				return s.metrics, err
			}
			if err := s.ProcessRecord(ctx, source.Name(), &records[j]); err != nil {
				s.ingestLog.LogRejectedRecord(source.Name(), records[j].SourceID, err.Error())
			}
		}
	}

	s.metrics.mu.Lock()
	s.metrics.Duration = time.Since(startTime)
	fetched := s.metrics.TotalRecords
	accepted := s.metrics.AcceptedGames
	duration := s.metrics.Duration
	s.metrics.mu.Unlock()

	s.ingestLog.LogBatchComplete(source.Name(), fetched, accepted, fetched-accepted,
		float64(duration.Milliseconds()))
	metrics.RecordIngestBatchDuration(duration.Seconds())

	return s.metrics, nil
}

// ProcessRecord normalizes and persists a single raw result. It is also used
// as the handler for stream-delivered results.
func (s *IngestionService) ProcessRecord(ctx context.Context, sourceName string, record *datasource.GameRecord) error {
	normalized, err := s.normalizer.Normalize(record)
	if err != nil {
		s.metrics.RecordValidationError()
		metrics.RecordGameRejected()
		return fmt.Errorf("failed to normalize record: %w", err)
	}

	white, err := s.playerRepo.GetOrCreateByName(ctx, normalized.White, sourceName)
	if err != nil {
		s.metrics.RecordError()
		return fmt.Errorf("failed to resolve white player: %w", err)
	}
	black, err := s.playerRepo.GetOrCreateByName(ctx, normalized.Black, sourceName)
	if err != nil {
		s.metrics.RecordError()
		return fmt.Errorf("failed to resolve black player: %w", err)
	}

	duplicate, err := s.isDuplicate(ctx, white.ID, black.ID, normalized)
	if err != nil {
		s.metrics.RecordError()
		return err
	}
	if duplicate {
		s.metrics.RecordDuplicate()
		return nil
	}

	game := &models.Game{
		ID:            uuid.New(),
		WhiteID:       white.ID,
		BlackID:       black.ID,
		PlayedOn:      normalized.PlayedOn,
		Outcome:       normalized.Outcome,
		Handicap:      normalized.Handicap,
		HandicapKind:  normalized.HandicapKind,
		HandicapScale: normalized.HandicapScale,
		Source:        sourceName,
		Label:         normalized.Label,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.gameRepo.Create(ctx, game); err != nil {
		s.metrics.RecordError()
		return fmt.Errorf("failed to create game: %w", err)
	}

	s.metrics.RecordGame()
	metrics.RecordGameIngested()
	s.ingestLog.LogGameRecorded(game.ID.String(), normalized.White, normalized.Black,
		game.Outcome, sourceName, game.PlayedOn)

	return nil
}

// StreamHandler returns a datasource.ResultHandler that feeds live results
// through the normal ingestion path.
func (s *IngestionService) StreamHandler(ctx context.Context, sourceName string) datasource.ResultHandler {
	return func(record datasource.GameRecord) error {
		return s.ProcessRecord(ctx, sourceName, &record)
	}
}

// isDuplicate reports whether an equivalent game is already stored for the day
func (s *IngestionService) isDuplicate(ctx context.Context, whiteID, blackID uuid.UUID, normalized *NormalizedGame) (bool, error) {
	existing, err := s.gameRepo.GetByDateRange(ctx, normalized.PlayedOn, normalized.PlayedOn)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicates: %w", err)
	}
	for _, game := range existing {
		if game.WhiteID == whiteID && game.BlackID == blackID && game.Outcome == normalized.Outcome {
			return true, nil
		}
	}
	return false, nil
}

// GetMetrics returns current ingestion metrics
func (s *IngestionService) GetMetrics() *IngestionMetrics {
	return s.metrics
}

func (s *IngestionService) findSource(name string) datasource.DataSource {
	for _, src := range s.sources {
		if src.Name() == name {
			return src
		}
	}
	return nil
}
