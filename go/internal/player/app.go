package player

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/michalkopec1981/saper-gra/go/internal/events"
	"github.com/michalkopec1981/saper-gra/go/internal/models"
)

// PlayersRepository defines what the app layer needs from the repository.
type PlayersRepository interface {
	CreatePlayer(ctx context.Context, name string) (*models.Player, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayersByScore(ctx context.Context) ([]models.Player, error)
	DeletePlayer(ctx context.Context, id int) error
	IncrementWarnings(ctx context.Context, id int) (int, error)
}

// Broadcaster pushes leaderboard snapshots after roster mutations.
type Broadcaster interface {
	BroadcastLeaderboard(ctx context.Context)
}

// App handles player roster business logic.
type App struct {
	repo        PlayersRepository
	broadcaster Broadcaster
	bus         events.Bus
}

func NewApp(repo PlayersRepository, broadcaster Broadcaster, bus events.Bus) *App {
	return &App{
		repo:        repo,
		broadcaster: broadcaster,
		bus:         bus,
	}
}

// Register creates a new player and announces the updated leaderboard.
func (a *App) Register(ctx context.Context, name string) (*models.Player, error) {
	player, err := a.repo.CreatePlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	log.Info().Int("player_id", player.ID).Str("name", player.Name).Msg("player registered")
	a.broadcaster.BroadcastLeaderboard(ctx)
	return player, nil
}

// List returns players in leaderboard order.
func (a *App) List(ctx context.Context) ([]models.Player, error) {
	return a.repo.ListPlayersByScore(ctx)
}

// Delete removes a player from the session.
func (a *App) Delete(ctx context.Context, id int) error {
	if err := a.repo.DeletePlayer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	log.Info().Int("player_id", id).Msg("player deleted")
	a.broadcaster.BroadcastLeaderboard(ctx)
	return nil
}

// Warn bumps a player's warning count and notifies the host console.
func (a *App) Warn(ctx context.Context, id int) (int, error) {
	warnings, err := a.repo.IncrementWarnings(ctx, id)
	if err != nil {
		return 0, err
	}
	ev, err := events.New(events.TypePlayerWarned, events.PlayerWarnedPayload{
		PlayerID: id,
		Warnings: warnings,
	})
	if err != nil {
		return warnings, err
	}
	if err := a.bus.Publish(ctx, ev); err != nil {
		log.Error().Err(err).Int("player_id", id).Msg("failed to publish player warning")
	}
	return warnings, nil
}
