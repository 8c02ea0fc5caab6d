package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope pushed to every connected viewer and republished
// on the NATS bridge.
type Event struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Type names a realtime channel event.
type Type string

const (
	TypeGameStateUpdate        Type = "game_state_update"
	TypeLeaderboardUpdate      Type = "leaderboard_update"
	TypePasswordUpdate         Type = "password_update"
	TypeTimerStarted           Type = "timer_started"
	TypeTimerPaused            Type = "timer_paused"
	TypeTimerTick              Type = "timer_tick"
	TypeTimerFinished          Type = "timer_finished"
	TypeTimerReset             Type = "timer_reset"
	TypePlayerWarned           Type = "player_warned"
	TypeCompetitionStateUpdate Type = "competition_state_update"
)

// New builds an event envelope around a JSON payload. A nil payload
// produces an event with no data (timer_finished, timer_reset).
func New(t Type, payload any) (Event, error) {
	ev := Event{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now().UTC(),
	}
	if payload == nil {
		return ev, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", t, err)
	}
	ev.Data = data
	return ev, nil
}

// LeaderboardEntry is one row of the leaderboard_update payload,
// ordered by score descending.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameStatePayload is the full game-state snapshot.
type GameStatePayload struct {
	Password       string `json:"password"`
	GameActive     bool   `json:"game_active"`
	IsTimerRunning bool   `json:"is_timer_running"`
}

// PasswordPayload carries the current masked password.
type PasswordPayload struct {
	Password string `json:"password"`
}

// TimerPayload carries the remaining time on timer events.
type TimerPayload struct {
	TimeLeft float64 `json:"time_left"`
}

// PlayerWarnedPayload notifies the host console of a warning.
type PlayerWarnedPayload struct {
	PlayerID int `json:"player_id"`
	Warnings int `json:"warnings"`
}

// CompetitionPayload announces a minigame being switched on or off.
type CompetitionPayload struct {
	Game   string `json:"game"`
	Active bool   `json:"active"`
}
