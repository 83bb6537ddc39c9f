package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/skill-tracker/internal/config"
	"github.com/yourusername/skill-tracker/internal/logger"
	"github.com/yourusername/skill-tracker/internal/metrics"
	"github.com/yourusername/skill-tracker/internal/models"
	"github.com/yourusername/skill-tracker/internal/repository"
	"github.com/yourusername/skill-tracker/internal/whr"
)

// RatingService maintains the in-memory rating base and the persisted rating
// histories. A full recompute rebuilds the base from every stored game; reads
// are served from the base through a TTL cache.
type RatingService struct {
	playerRepo repository.PlayerRepository
	gameRepo   repository.GameRepository
	ratingRepo repository.RatingRepository
	cfg        config.RatingConfig
	epoch      time.Time
	cache      *gocache.Cache
	ratingLog  *logger.RatingLogger
	logger     *logrus.Logger

	mu   sync.RWMutex
	base *whr.Base
}

// NewRatingService creates a rating service from the repository container and
// rating configuration.
func NewRatingService(repos *repository.Repositories, cfg config.RatingConfig, baseLogger *logrus.Logger) (*RatingService, error) {
	if repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if baseLogger == nil {
		baseLogger = logrus.New()
	}
	epoch, err := time.Parse("2006-01-02", cfg.Epoch)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rating epoch: %w", err)
	}
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &RatingService{
		playerRepo: repos.Player,
		gameRepo:   repos.Game,
		ratingRepo: repos.Rating,
		cfg:        cfg,
		epoch:      epoch,
		cache:      gocache.New(ttl, ttl*2),
		ratingLog:  logger.NewRatingLogger(baseLogger),
		logger:     baseLogger,
	}, nil
}

// Recompute rebuilds the rating base from all stored games, runs the
// optimizer to convergence, and persists every player's rating history.
func (s *RatingService) Recompute(ctx context.Context) error {
	startTime := time.Now()

	players, err := s.playerRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}
	games, err := s.gameRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}

	s.ratingLog.LogRecomputeStart(len(players), len(games))

	base, err := s.buildBase(players, games)
	if err != nil {
		return err
	}

	passes, err := base.IterateUntil(ctx, s.cfg.MaxIterations, s.cfg.ConvergenceTolerance)
	metrics.NewtonPassesTotal.Add(float64(passes))
	if err != nil {
		var instErr *whr.InstabilityError
		if errors.As(err, &instErr) {
			metrics.RecordInstabilityError()
			s.ratingLog.LogInstability(instErr.Player, instErr.Error())
		}
		return fmt.Errorf("failed to optimize ratings: %w", err)
	}
	s.ratingLog.LogConvergence(passes, 0, s.cfg.ConvergenceTolerance)

	if err := base.RefreshUncertainties(); err != nil {
		return fmt.Errorf("failed to refresh uncertainties: %w", err)
	}
	logLikelihood, err := base.LogLikelihood()
	if err != nil {
		return fmt.Errorf("failed to evaluate log-likelihood: %w", err)
	}

	if err := s.persistHistories(ctx, base, players); err != nil {
		return err
	}

	s.mu.Lock()
	s.base = base
	s.mu.Unlock()
	s.cache.Flush()

	duration := time.Since(startTime)
	metrics.RecordRecompute(duration.Seconds(), passes, logLikelihood)
	metrics.UpdateBaseSize(len(players), len(games))
	s.ratingLog.LogRecomputeComplete(len(players), len(games), passes, logLikelihood,
		float64(duration.Milliseconds()))

	return nil
}

// buildBase feeds every stored game into a fresh whr base.
func (s *RatingService) buildBase(players []*models.Player, games []*models.Game) (*whr.Base, error) {
	base := whr.NewBase(whr.Config{
		W2:             s.cfg.W2,
		HessianEpsilon: s.cfg.HessianEpsilon,
	}, s.logger)

	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID.String()] = p.Name
		base.Player(p.Name)
	}

	for _, g := range games {
		white, ok := names[g.WhiteID.String()]
		if !ok {
			return nil, fmt.Errorf("game %s references unknown white player %s", g.ID, g.WhiteID)
		}
		black, ok := names[g.BlackID.String()]
		if !ok {
			return nil, fmt.Errorf("game %s references unknown black player %s", g.ID, g.BlackID)
		}

		outcome, err := gameOutcome(g.Outcome)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", g.ID, err)
		}

		handicap := whr.FixedHandicap(g.Handicap)
		if g.HandicapKind == models.HandicapKindRatingDependent {
			handicap = whr.RatingDependentHandicap(g.HandicapScale)
		}

		if _, err := base.CreateGame(white, black, outcome, g.DayNumber(s.epoch), handicap); err != nil {
			return nil, fmt.Errorf("failed to add game %s: %w", g.ID, err)
		}
	}

	return base, nil
}

// persistHistories upserts every player's full rating history.
func (s *RatingService) persistHistories(ctx context.Context, base *whr.Base, players []*models.Player) error {
	now := time.Now().UTC()
	for _, player := range players {
		estimates, err := base.Ratings(player.Name)
		if errors.Is(err, whr.ErrNoHistory) {
			// Player exists but has no games yet
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read ratings for %s: %w", player.Name, err)
		}
		entries := make([]*models.RatingEntry, 0, len(estimates))
		for _, est := range estimates {
			entries = append(entries, &models.RatingEntry{
				PlayerID:    player.ID,
				Day:         int(est.Day),
				Elo:         est.Elo,
				Uncertainty: est.Uncertainty,
				ComputedAt:  now,
			})
		}
		if err := s.ratingRepo.UpsertBatch(ctx, entries); err != nil {
			return fmt.Errorf("failed to persist ratings for %s: %w", player.Name, err)
		}
	}
	return nil
}

// RatingAt returns a player's rating estimate at an arbitrary day, served
// from the in-memory base through the TTL cache. Days between rating points
// are interpolated; days outside the played range are extrapolated.
func (s *RatingService) RatingAt(name string, day float64) (whr.RatingEstimate, error) {
	key := fmt.Sprintf("rating:%s:%.4f", name, day)
	if cached, found := s.cache.Get(key); found {
		metrics.RecordRatingQuery(true)
		return cached.(whr.RatingEstimate), nil
	}
	metrics.RecordRatingQuery(false)

	s.mu.RLock()
	base := s.base
	s.mu.RUnlock()
	if base == nil {
		return whr.RatingEstimate{}, fmt.Errorf("no ratings computed yet")
	}

	estimate, err := base.RatingAt(name, day)
	if err != nil {
		return whr.RatingEstimate{}, err
	}

	s.cache.SetDefault(key, estimate)
	if s.cfg.CacheMaxSize > 0 && s.cache.ItemCount() > s.cfg.CacheMaxSize {
		s.cache.DeleteExpired()
	}

	return estimate, nil
}

// CurrentRating returns a player's most recent persisted rating.
func (s *RatingService) CurrentRating(ctx context.Context, name string) (*models.RatingEntry, error) {
	player, err := s.playerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find player %s: %w", name, err)
	}
	entry, err := s.ratingRepo.GetLatest(ctx, player.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest rating for %s: %w", name, err)
	}
	return entry, nil
}

// RatingHistory returns a player's full persisted rating history ordered by day.
func (s *RatingService) RatingHistory(ctx context.Context, name string) ([]*models.RatingEntry, error) {
	player, err := s.playerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find player %s: %w", name, err)
	}
	history, err := s.ratingRepo.GetHistory(ctx, player.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating history for %s: %w", name, err)
	}
	return history, nil
}

// HasBase reports whether an in-memory base is available for interpolated
// queries.
func (s *RatingService) HasBase() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base != nil
}

func gameOutcome(code string) (whr.Outcome, error) {
	switch code {
	case models.OutcomeWhiteWins:
		return whr.WhiteWins, nil
	case models.OutcomeBlackWins:
		return whr.BlackWins, nil
	case models.OutcomeDraw:
		return whr.Draw, nil
	default:
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidOutcome, code)
	}
}
