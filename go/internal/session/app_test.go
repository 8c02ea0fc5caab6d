package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michalkopec1981/saper-gra/go/internal/events"
	"github.com/michalkopec1981/saper-gra/go/internal/gametimer"
	"github.com/michalkopec1981/saper-gra/go/internal/models"
)

type fakeSessionRepo struct {
	whiteCount int
	redCount   int
	resets     int
}

func (f *fakeSessionRepo) ResetGameData(_ context.Context, whiteCount, redCount int) ([]models.QRCode, error) {
	f.whiteCount = whiteCount
	f.redCount = redCount
	f.resets++
	codes := make([]models.QRCode, 0, whiteCount+redCount)
	for i := 0; i < redCount+whiteCount; i++ {
		codes = append(codes, models.QRCode{ID: i + 1})
	}
	return codes, nil
}

type fakePlayersRepo struct {
	players  []models.Player
	revealed string
}

func (f *fakePlayersRepo) ListPlayersByScore(context.Context) ([]models.Player, error) {
	return f.players, nil
}

func (f *fakePlayersRepo) UnionRevealedLetters(context.Context) (string, error) {
	return f.revealed, nil
}

type fakeSettings struct {
	values map[string]string
	bools  map[string]bool
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{values: map[string]string{}, bools: map[string]bool{}}
}

func (f *fakeSettings) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeSettings) GetBool(_ context.Context, key string) (bool, error) {
	return f.bools[key], nil
}

func (f *fakeSettings) SetBool(_ context.Context, key string, v bool) error {
	f.bools[key] = v
	return nil
}

type fakeTimer struct {
	startedSeconds float64
	pauses         int
	resets         int
	snap           gametimer.Snapshot
}

func (f *fakeTimer) Start(_ context.Context, seconds float64) (gametimer.Snapshot, error) {
	f.startedSeconds = seconds
	f.snap = gametimer.Snapshot{TimeLeft: seconds, Running: true}
	return f.snap, nil
}

func (f *fakeTimer) PauseToggle(context.Context) (gametimer.Snapshot, error) {
	f.pauses++
	f.snap.Running = !f.snap.Running
	return f.snap, nil
}

func (f *fakeTimer) Reset(context.Context) (gametimer.Snapshot, error) {
	f.resets++
	f.snap = gametimer.Snapshot{}
	return f.snap, nil
}

func (f *fakeTimer) Snapshot(context.Context) (gametimer.Snapshot, error) {
	return f.snap, nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, ev events.Event) error {
	b.published = append(b.published, ev)
	return nil
}

func (b *recordingBus) types() []events.Type {
	out := make([]events.Type, len(b.published))
	for i, ev := range b.published {
		out[i] = ev.Type
	}
	return out
}

func newTestApp() (*App, *fakeSessionRepo, *fakePlayersRepo, *fakeSettings, *fakeTimer, *recordingBus) {
	repo := &fakeSessionRepo{}
	players := &fakePlayersRepo{}
	settings := newFakeSettings()
	timer := &fakeTimer{}
	bus := &recordingBus{}
	app := NewApp(repo, players, settings, timer, bus, DefaultConfig())
	return app, repo, players, settings, timer, bus
}

func TestStartGameAppliesDefaults(t *testing.T) {
	app, repo, _, settings, timer, bus := newTestApp()

	minutes, err := app.StartGame(context.Background(), 0, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 10, minutes)
	assert.Equal(t, 5, repo.whiteCount)
	assert.Equal(t, 5, repo.redCount)
	assert.Equal(t, 600.0, timer.startedSeconds)
	assert.True(t, settings.bools[models.SettingGameActive])
	assert.Equal(t, []events.Type{
		events.TypeLeaderboardUpdate,
		events.TypePasswordUpdate,
		events.TypeGameStateUpdate,
	}, bus.types())
}

func TestStartGameHonorsExplicitValues(t *testing.T) {
	app, repo, _, _, timer, _ := newTestApp()

	minutes, err := app.StartGame(context.Background(), 3, 2, 7)
	require.NoError(t, err)

	assert.Equal(t, 7, minutes)
	assert.Equal(t, 3, repo.whiteCount)
	assert.Equal(t, 2, repo.redCount)
	assert.Equal(t, 420.0, timer.startedSeconds)
}

func TestStopGameDeactivatesAndResetsTimer(t *testing.T) {
	app, _, _, settings, timer, bus := newTestApp()
	settings.bools[models.SettingGameActive] = true

	require.NoError(t, app.StopGame(context.Background()))

	assert.False(t, settings.bools[models.SettingGameActive])
	assert.Equal(t, 1, timer.resets)
	require.Len(t, bus.published, 1)
	assert.Equal(t, events.TypeGameStateUpdate, bus.published[0].Type)
}

func TestPauseTimerRebroadcastsState(t *testing.T) {
	app, _, _, _, timer, bus := newTestApp()

	require.NoError(t, app.PauseTimer(context.Background()))

	assert.Equal(t, 1, timer.pauses)
	require.Len(t, bus.published, 1)
	assert.Equal(t, events.TypeGameStateUpdate, bus.published[0].Type)
}

func TestMaskedPasswordFallsBackWhenUnset(t *testing.T) {
	app, _, players, _, _, _ := newTestApp()
	players.revealed = "SE"

	masked, err := app.MaskedPassword(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "S__E_E_E__", masked)
}

func TestFullStateReflectsRevealedLetters(t *testing.T) {
	app, _, players, settings, timer, _ := newTestApp()
	settings.values[models.SettingPassword] = "CAT"
	settings.bools[models.SettingGameActive] = true
	players.revealed = "ct"
	timer.snap = gametimer.Snapshot{TimeLeft: 42, Running: true}

	state, err := app.FullState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "C_T", state.Password)
	assert.True(t, state.GameActive)
	assert.True(t, state.IsTimerRunning)
}

func TestLeaderboardPreservesRepositoryOrder(t *testing.T) {
	app, _, players, _, _, _ := newTestApp()
	players.players = []models.Player{
		{Name: "Ala", Score: 70},
		{Name: "Bartek", Score: 25},
	}

	entries, err := app.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, events.LeaderboardEntry{Name: "Ala", Score: 70}, entries[0])
	assert.Equal(t, events.LeaderboardEntry{Name: "Bartek", Score: 25}, entries[1])
}

func TestCatchUpDeliversStateThenLeaderboard(t *testing.T) {
	app, _, players, settings, _, _ := newTestApp()
	settings.values[models.SettingPassword] = "GO"
	players.players = []models.Player{{Name: "Ala", Score: 10}}

	evs, err := app.CatchUp(context.Background())
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, events.TypeGameStateUpdate, evs[0].Type)
	assert.Equal(t, events.TypeLeaderboardUpdate, evs[1].Type)

	var board []events.LeaderboardEntry
	require.NoError(t, json.Unmarshal(evs[1].Data, &board))
	require.Len(t, board, 1)
	assert.Equal(t, "Ala", board[0].Name)
}

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		name     string
		phrase   string
		revealed string
		want     string
	}{
		{"nothing revealed", "CAT", "", "___"},
		{"partial", "CAT", "CT", "C_T"},
		{"case insensitive", "Cat", "c", "C__"},
		{"repeated letters", "SAPEREVENT", "E", "___E_E_E__"},
		{"all revealed", "GO", "og", "GO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskPassword(tt.phrase, tt.revealed))
		})
	}
}
