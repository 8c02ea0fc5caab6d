package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/michalkopec1981/saper-gra/go/internal/events"
	"github.com/michalkopec1981/saper-gra/go/internal/gametimer"
	"github.com/michalkopec1981/saper-gra/go/internal/models"
)

// SessionRepository defines what the app layer needs for lifecycle resets.
type SessionRepository interface {
	ResetGameData(ctx context.Context, whiteCount, redCount int) ([]models.QRCode, error)
}

// PlayersRepository defines what the session app needs from player storage.
type PlayersRepository interface {
	ListPlayersByScore(ctx context.Context) ([]models.Player, error)
	UnionRevealedLetters(ctx context.Context) (string, error)
}

// SettingsRepository defines what the session app needs from the settings store.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, v bool) error
}

// TimerControl defines what the session app needs from the game timer.
type TimerControl interface {
	Start(ctx context.Context, seconds float64) (gametimer.Snapshot, error)
	PauseToggle(ctx context.Context) (gametimer.Snapshot, error)
	Reset(ctx context.Context) (gametimer.Snapshot, error)
	Snapshot(ctx context.Context) (gametimer.Snapshot, error)
}

// Config holds session defaults applied when a start request omits fields.
type Config struct {
	DefaultWhiteCodes int
	DefaultRedCodes   int
	DefaultMinutes    int
	FallbackPassword  string
}

func DefaultConfig() Config {
	return Config{
		DefaultWhiteCodes: 5,
		DefaultRedCodes:   5,
		DefaultMinutes:    10,
		FallbackPassword:  "SAPEREVENT",
	}
}

// App controls the game session lifecycle and the derived broadcast
// snapshots (leaderboard, masked password, full game state).
type App struct {
	repo     SessionRepository
	players  PlayersRepository
	settings SettingsRepository
	timer    TimerControl
	bus      events.Bus
	cfg      Config
}

func NewApp(repo SessionRepository, players PlayersRepository, settings SettingsRepository, timer TimerControl, bus events.Bus, cfg Config) *App {
	return &App{
		repo:     repo,
		players:  players,
		settings: settings,
		timer:    timer,
		bus:      bus,
		cfg:      cfg,
	}
}

// StartGame destroys all prior session data, seeds fresh QR codes,
// marks the game active and arms the countdown. Returns the effective
// duration in minutes.
func (a *App) StartGame(ctx context.Context, whiteCodes, redCodes, minutes int) (int, error) {
	if whiteCodes <= 0 {
		whiteCodes = a.cfg.DefaultWhiteCodes
	}
	if redCodes <= 0 {
		redCodes = a.cfg.DefaultRedCodes
	}
	if minutes <= 0 {
		minutes = a.cfg.DefaultMinutes
	}

	codes, err := a.repo.ResetGameData(ctx, whiteCodes, redCodes)
	if err != nil {
		return 0, fmt.Errorf("failed to reset game data: %w", err)
	}
	if err := a.settings.SetBool(ctx, models.SettingGameActive, true); err != nil {
		return 0, err
	}
	if _, err := a.timer.Start(ctx, float64(minutes*60)); err != nil {
		return 0, fmt.Errorf("failed to start game timer: %w", err)
	}

	log.Info().
		Int("white_codes", whiteCodes).
		Int("red_codes", redCodes).
		Int("minutes", minutes).
		Int("seeded", len(codes)).
		Msg("game started")

	a.BroadcastLeaderboard(ctx)
	a.BroadcastPassword(ctx)
	a.BroadcastGameState(ctx)
	return minutes, nil
}

// StopGame marks the game inactive and resets the countdown.
func (a *App) StopGame(ctx context.Context) error {
	if err := a.settings.SetBool(ctx, models.SettingGameActive, false); err != nil {
		return err
	}
	if _, err := a.timer.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset game timer: %w", err)
	}
	log.Info().Msg("game stopped")
	a.BroadcastGameState(ctx)
	return nil
}

// PauseTimer toggles the countdown and rebroadcasts the game state,
// since is_timer_running just changed.
func (a *App) PauseTimer(ctx context.Context) error {
	if _, err := a.timer.PauseToggle(ctx); err != nil {
		return err
	}
	a.BroadcastGameState(ctx)
	return nil
}

// GameStatus is the GET /api/game/state response.
type GameStatus struct {
	GameActive     bool    `json:"game_active"`
	IsTimerRunning bool    `json:"is_timer_running"`
	TimeLeft       float64 `json:"time_left"`
}

// Status reports whether the game is active and where the timer stands.
func (a *App) Status(ctx context.Context) (*GameStatus, error) {
	active, err := a.settings.GetBool(ctx, models.SettingGameActive)
	if err != nil {
		return nil, err
	}
	snap, err := a.timer.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &GameStatus{
		GameActive:     active,
		IsTimerRunning: snap.Running,
		TimeLeft:       snap.TimeLeft,
	}, nil
}

// FullState builds the game_state_update payload.
func (a *App) FullState(ctx context.Context) (*events.GameStatePayload, error) {
	active, err := a.settings.GetBool(ctx, models.SettingGameActive)
	if err != nil {
		return nil, err
	}
	masked, err := a.MaskedPassword(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := a.timer.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &events.GameStatePayload{
		Password:       masked,
		GameActive:     active,
		IsTimerRunning: snap.Running,
	}, nil
}

// MaskedPassword renders the target phrase with every character hidden
// unless some player has revealed it.
func (a *App) MaskedPassword(ctx context.Context) (string, error) {
	password, ok, err := a.settings.Get(ctx, models.SettingPassword)
	if err != nil {
		return "", err
	}
	if !ok || password == "" {
		password = a.cfg.FallbackPassword
	}
	revealed, err := a.players.UnionRevealedLetters(ctx)
	if err != nil {
		return "", err
	}
	return maskPassword(password, revealed), nil
}

// Leaderboard returns player standings sorted by score descending.
func (a *App) Leaderboard(ctx context.Context) ([]events.LeaderboardEntry, error) {
	players, err := a.players.ListPlayersByScore(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]events.LeaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = events.LeaderboardEntry{Name: p.Name, Score: p.Score}
	}
	return entries, nil
}

// BroadcastLeaderboard pushes a fresh leaderboard snapshot. Broadcast
// failures are logged, never surfaced: the mutation already committed.
func (a *App) BroadcastLeaderboard(ctx context.Context) {
	entries, err := a.Leaderboard(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to build leaderboard")
		return
	}
	a.publish(ctx, events.TypeLeaderboardUpdate, entries)
}

// BroadcastPassword pushes the current password mask.
func (a *App) BroadcastPassword(ctx context.Context) {
	masked, err := a.MaskedPassword(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to build password mask")
		return
	}
	a.publish(ctx, events.TypePasswordUpdate, events.PasswordPayload{Password: masked})
}

// BroadcastGameState pushes the full game-state snapshot.
func (a *App) BroadcastGameState(ctx context.Context) {
	state, err := a.FullState(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to build game state")
		return
	}
	a.publish(ctx, events.TypeGameStateUpdate, state)
}

// CatchUp builds the events a newly connected viewer needs to render
// the current state: full game state plus the leaderboard.
func (a *App) CatchUp(ctx context.Context) ([]events.Event, error) {
	state, err := a.FullState(ctx)
	if err != nil {
		return nil, err
	}
	stateEv, err := events.New(events.TypeGameStateUpdate, state)
	if err != nil {
		return nil, err
	}
	entries, err := a.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	boardEv, err := events.New(events.TypeLeaderboardUpdate, entries)
	if err != nil {
		return nil, err
	}
	return []events.Event{stateEv, boardEv}, nil
}

func (a *App) publish(ctx context.Context, typ events.Type, payload any) {
	ev, err := events.New(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to build event")
		return
	}
	if err := a.bus.Publish(ctx, ev); err != nil {
		log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to publish event")
	}
}

// maskPassword shows a character of the phrase only if it appears in
// the revealed set, comparing case-insensitively. Only letters ever
// make it into the set, so spaces and punctuation stay hidden too.
func maskPassword(phrase, revealed string) string {
	upperPhrase := strings.ToUpper(phrase)
	upperRevealed := strings.ToUpper(revealed)
	var b strings.Builder
	for _, r := range upperPhrase {
		if strings.ContainsRune(upperRevealed, r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
