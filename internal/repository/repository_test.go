package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/skill-tracker/internal/database"
	"github.com/yourusername/skill-tracker/internal/models"
)

// These are integration tests; SetupTestDB skips them when no test
// database is reachable.

func setupRepos(t *testing.T) (*Repositories, *database.DB) {
	t.Helper()
	db := database.SetupTestDB(t)

	repos, err := NewRepositories(db)
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}
	return repos, db
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	if err == nil {
		t.Fatal("expected error for nil database")
	}
}

// TestPlayerRepositoryRoundTrip tests player creation and retrieval
func TestPlayerRepositoryRoundTrip(t *testing.T) {
	repos, db := setupRepos(t)
	defer database.TeardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	player := models.NewPlayer("test-player-"+uuid.NewString(), "test")
	if err := repos.Player.Create(ctx, player); err != nil {
		t.Fatalf("failed to create player: %v", err)
	}
	defer repos.Player.Delete(ctx, player.ID)

	retrieved, err := repos.Player.GetByID(ctx, player.ID)
	if err != nil {
		t.Fatalf("failed to retrieve player: %v", err)
	}

	if retrieved.Name != player.Name {
		t.Errorf("expected player name %q, got %q", player.Name, retrieved.Name)
	}
}

// TestPlayerRepositoryGetOrCreate tests idempotent player creation
func TestPlayerRepositoryGetOrCreate(t *testing.T) {
	repos, db := setupRepos(t)
	defer database.TeardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	name := "test-player-" + uuid.NewString()
	first, err := repos.Player.GetOrCreateByName(ctx, name, "test")
	if err != nil {
		t.Fatalf("failed to get-or-create player: %v", err)
	}
	defer repos.Player.Delete(ctx, first.ID)

	second, err := repos.Player.GetOrCreateByName(ctx, name, "test")
	if err != nil {
		t.Fatalf("failed on second get-or-create: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected same player ID, got %v and %v", first.ID, second.ID)
	}
}

// TestGameRepositoryBatch tests batch game insertion and range queries
func TestGameRepositoryBatch(t *testing.T) {
	repos, db := setupRepos(t)
	defer database.TeardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	white, err := repos.Player.GetOrCreateByName(ctx, "test-white-"+uuid.NewString(), "test")
	if err != nil {
		t.Fatalf("failed to create white player: %v", err)
	}
	black, err := repos.Player.GetOrCreateByName(ctx, "test-black-"+uuid.NewString(), "test")
	if err != nil {
		t.Fatalf("failed to create black player: %v", err)
	}

	playedOn := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	games := make([]*models.Game, 10)
	for i := range games {
		games[i] = &models.Game{
			ID:           uuid.New(),
			WhiteID:      white.ID,
			BlackID:      black.ID,
			PlayedOn:     playedOn.AddDate(0, 0, i),
			Outcome:      models.OutcomeWhiteWins,
			HandicapKind: models.HandicapKindFixed,
			Source:       "test",
			CreatedAt:    time.Now().UTC(),
		}
	}

	if err := repos.Game.CreateBatch(ctx, games); err != nil {
		t.Fatalf("failed to batch insert games: %v", err)
	}
	defer func() {
		for _, g := range games {
			repos.Game.Delete(ctx, g.ID)
		}
	}()

	retrieved, err := repos.Game.GetByPlayerID(ctx, white.ID)
	if err != nil {
		t.Fatalf("failed to retrieve games by player: %v", err)
	}
	if len(retrieved) != len(games) {
		t.Errorf("expected %d games, got %d", len(games), len(retrieved))
	}

	ranged, err := repos.Game.GetByDateRange(ctx, playedOn, playedOn.AddDate(0, 0, 4))
	if err != nil {
		t.Fatalf("failed to retrieve games by range: %v", err)
	}
	for i := 1; i < len(ranged); i++ {
		if ranged[i].PlayedOn.Before(ranged[i-1].PlayedOn) {
			t.Error("expected games ordered by played_on ascending")
		}
	}
}

// TestRatingRepositoryUpsert tests that upserting the same day replaces the entry
func TestRatingRepositoryUpsert(t *testing.T) {
	repos, db := setupRepos(t)
	defer database.TeardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	player, err := repos.Player.GetOrCreateByName(ctx, "test-rated-"+uuid.NewString(), "test")
	if err != nil {
		t.Fatalf("failed to create player: %v", err)
	}
	defer func() {
		repos.Rating.DeleteForPlayer(ctx, player.ID)
		repos.Player.Delete(ctx, player.ID)
	}()

	entry := &models.RatingEntry{
		ID:          uuid.New(),
		PlayerID:    player.ID,
		Day:         731,
		Elo:         120.5,
		Uncertainty: 45.0,
		ComputedAt:  time.Now().UTC(),
	}
	if err := repos.Rating.Upsert(ctx, entry); err != nil {
		t.Fatalf("failed to upsert rating entry: %v", err)
	}

	// Second upsert for the same player and day must replace, not duplicate
	entry.ID = uuid.New()
	entry.Elo = 131.2
	if err := repos.Rating.Upsert(ctx, entry); err != nil {
		t.Fatalf("failed to re-upsert rating entry: %v", err)
	}

	history, err := repos.Rating.GetHistory(ctx, player.ID)
	if err != nil {
		t.Fatalf("failed to get rating history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 rating entry after upsert, got %d", len(history))
	}
	if history[0].Elo != 131.2 {
		t.Errorf("expected updated elo 131.2, got %v", history[0].Elo)
	}

	latest, err := repos.Rating.GetLatest(ctx, player.ID)
	if err != nil {
		t.Fatalf("failed to get latest rating: %v", err)
	}
	if latest.Day != 731 {
		t.Errorf("expected latest day 731, got %d", latest.Day)
	}
}
