package scan

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/michalkopec1981/saper-gra/go/internal/apperr"
	"github.com/michalkopec1981/saper-gra/go/internal/events"
	"github.com/michalkopec1981/saper-gra/go/internal/models"
)

// PlayersRepository defines what the scan app needs from player storage.
type PlayersRepository interface {
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	AddScore(ctx context.Context, id, delta int) (int, error)
	AppendRevealedLetter(ctx context.Context, id int, letter string) error
}

// QuestionsRepository defines what the scan app needs from question storage.
type QuestionsRepository interface {
	GetQuestion(ctx context.Context, id int) (*models.Question, error)
	RandomUnansweredQuestion(ctx context.Context, playerID int) (*models.Question, error)
}

// CodesRepository defines what the scan app needs from QR code storage.
type CodesRepository interface {
	GetByIdentifier(ctx context.Context, identifier string) (*models.QRCode, error)
	ClaimIfUnclaimed(ctx context.Context, codeID, playerID int) (bool, error)
}

// SettingsRepository defines what the scan app needs from the settings store.
type SettingsRepository interface {
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, v bool) error
}

// HistoryRepository defines what the scan app needs from scan/answer history.
type HistoryRepository interface {
	LastScanTime(ctx context.Context, playerID, codeID int) (time.Time, bool, error)
	RecordScan(ctx context.Context, playerID, codeID int, at time.Time) error
	RecordAnswer(ctx context.Context, playerID, questionID int) (bool, error)
}

// Broadcaster defines the session snapshots the scan app pushes after
// score-affecting mutations.
type Broadcaster interface {
	BroadcastLeaderboard(ctx context.Context)
	BroadcastPassword(ctx context.Context)
}

// Config holds the scoring and anti-abuse tunables.
type Config struct {
	Cooldown       time.Duration
	RedBonusPoints int
	CorrectPoints  int
	WrongPenalty   int
	MinigameReward int
	MinigameLetter string
	MinigameGame   string
	MinigameCodes  []string
}

// DefaultConfig returns the event's standard scoring rules.
func DefaultConfig() Config {
	return Config{
		Cooldown:       5 * time.Minute,
		RedBonusPoints: 50,
		CorrectPoints:  10,
		WrongPenalty:   5,
		MinigameReward: 15,
		MinigameLetter: "T",
		MinigameGame:   "tetris",
		MinigameCodes:  []string{"bialy1", "bialy2", "bialy3"},
	}
}

// App validates scans and answers, applies scoring and cooldown rules
// and reveals password letters.
type App struct {
	players   PlayersRepository
	questions QuestionsRepository
	codes     CodesRepository
	settings  SettingsRepository
	history   HistoryRepository
	state     Broadcaster
	bus       events.Bus
	clock     clockwork.Clock
	cfg       Config
}

func NewApp(players PlayersRepository, questions QuestionsRepository, codes CodesRepository, settings SettingsRepository, history HistoryRepository, state Broadcaster, bus events.Bus, clock clockwork.Clock, cfg Config) *App {
	return &App{
		players:   players,
		questions: questions,
		codes:     codes,
		settings:  settings,
		history:   history,
		state:     state,
		bus:       bus,
		clock:     clock,
		cfg:       cfg,
	}
}

// Scan statuses returned to the player's client.
const (
	StatusInfo     = "info"
	StatusQuestion = "question"
	StatusMinigame = "minigame"
)

// QuestionPayload is a question served to a player, correct answer withheld.
type QuestionPayload struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	OptionC string `json:"option_c"`
}

// ScanResult is the outcome of a successful scan.
type ScanResult struct {
	Status   string           `json:"status"`
	Message  string           `json:"message,omitempty"`
	Game     string           `json:"game,omitempty"`
	Question *QuestionPayload `json:"question,omitempty"`
}

// AnswerResult is the outcome of a scored answer.
type AnswerResult struct {
	Correct bool   `json:"correct"`
	Letter  string `json:"letter,omitempty"`
	Points  int    `json:"points,omitempty"`
}

// Scan processes a QR scan: red codes pay a one-time bonus, white codes
// serve a question (or the minigame when it is switched on).
func (a *App) Scan(ctx context.Context, playerID int, codeIdentifier string) (*ScanResult, error) {
	player, err := a.players.GetPlayer(ctx, playerID)
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, apperr.Unauthorizedf("ID gracza jest nieprawidłowe.")
		}
		return nil, err
	}

	code, err := a.codes.GetByIdentifier(ctx, codeIdentifier)
	if err != nil {
		return nil, err
	}

	active, err := a.settings.GetBool(ctx, models.SettingGameActive)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperr.Forbiddenf("Gra nie jest aktywna.")
	}

	if code.IsRed {
		return a.claimRedCode(ctx, player, code)
	}
	return a.scanWhiteCode(ctx, player, code)
}

func (a *App) claimRedCode(ctx context.Context, player *models.Player, code *models.QRCode) (*ScanResult, error) {
	claimed, err := a.codes.ClaimIfUnclaimed(ctx, code.ID, player.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperr.Conflictf("Ten kod został już wykorzystany.")
	}
	if _, err := a.players.AddScore(ctx, player.ID, a.cfg.RedBonusPoints); err != nil {
		return nil, err
	}

	log.Info().
		Int("player_id", player.ID).
		Str("code", code.CodeIdentifier).
		Int("points", a.cfg.RedBonusPoints).
		Msg("red code claimed")

	a.state.BroadcastLeaderboard(ctx)
	return &ScanResult{
		Status:  StatusInfo,
		Message: fmt.Sprintf("Zdobyłeś %d punktów za czerwony kod!", a.cfg.RedBonusPoints),
	}, nil
}

func (a *App) scanWhiteCode(ctx context.Context, player *models.Player, code *models.QRCode) (*ScanResult, error) {
	now := a.clock.Now()

	lastScan, found, err := a.history.LastScanTime(ctx, player.ID, code.ID)
	if err != nil {
		return nil, err
	}
	if found && now.Before(lastScan.Add(a.cfg.Cooldown)) {
		wait := int(math.Ceil(lastScan.Add(a.cfg.Cooldown).Sub(now).Seconds()))
		return nil, apperr.RateLimitedf(wait, "Odczekaj jeszcze %d min %d s.", wait/60, wait%60)
	}
	if err := a.history.RecordScan(ctx, player.ID, code.ID, now); err != nil {
		return nil, err
	}

	// Minigame override: while the competition runs, the reserved white
	// codes launch it instead of serving a question.
	minigameActive, err := a.settings.GetBool(ctx, models.SettingTetrisActive)
	if err != nil {
		return nil, err
	}
	if minigameActive && a.isMinigameCode(code.CodeIdentifier) {
		return &ScanResult{Status: StatusMinigame, Game: a.cfg.MinigameGame}, nil
	}

	question, err := a.questions.RandomUnansweredQuestion(ctx, player.ID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return &ScanResult{Status: StatusInfo, Message: "Odpowiedziałeś na wszystkie pytania!"}, nil
	}
	return &ScanResult{
		Status: StatusQuestion,
		Question: &QuestionPayload{
			ID:      question.ID,
			Text:    question.Text,
			OptionA: question.OptionA,
			OptionB: question.OptionB,
			OptionC: question.OptionC,
		},
	}, nil
}

// Answer scores a player's answer. Each (player, question) pair is
// scored at most once; repeats are rejected as a conflict.
func (a *App) Answer(ctx context.Context, playerID, questionID int, answer string) (*AnswerResult, error) {
	player, err := a.players.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	question, err := a.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	recorded, err := a.history.RecordAnswer(ctx, player.ID, question.ID)
	if err != nil {
		return nil, err
	}
	if !recorded {
		return nil, apperr.Conflictf("Na to pytanie już odpowiedziałeś.")
	}

	if answer == question.CorrectAnswer {
		if _, err := a.players.AddScore(ctx, player.ID, a.cfg.CorrectPoints); err != nil {
			return nil, err
		}
		if err := a.players.AppendRevealedLetter(ctx, player.ID, question.LetterToReveal); err != nil {
			return nil, err
		}
		a.state.BroadcastLeaderboard(ctx)
		a.state.BroadcastPassword(ctx)
		return &AnswerResult{Correct: true, Letter: question.LetterToReveal}, nil
	}

	if _, err := a.players.AddScore(ctx, player.ID, -a.cfg.WrongPenalty); err != nil {
		return nil, err
	}
	a.state.BroadcastLeaderboard(ctx)
	return &AnswerResult{Correct: false}, nil
}

// MinigameReward pays out the fixed minigame bonus and reveals its letter.
func (a *App) MinigameReward(ctx context.Context, playerID int) (*AnswerResult, error) {
	player, err := a.players.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if _, err := a.players.AddScore(ctx, player.ID, a.cfg.MinigameReward); err != nil {
		return nil, err
	}
	if err := a.players.AppendRevealedLetter(ctx, player.ID, a.cfg.MinigameLetter); err != nil {
		return nil, err
	}

	log.Info().
		Int("player_id", player.ID).
		Int("points", a.cfg.MinigameReward).
		Msg("minigame reward granted")

	a.state.BroadcastLeaderboard(ctx)
	a.state.BroadcastPassword(ctx)
	return &AnswerResult{
		Correct: true,
		Letter:  a.cfg.MinigameLetter,
		Points:  a.cfg.MinigameReward,
	}, nil
}

// SetCompetition flips the minigame flag and announces the change.
func (a *App) SetCompetition(ctx context.Context, active bool) error {
	if err := a.settings.SetBool(ctx, models.SettingTetrisActive, active); err != nil {
		return err
	}
	ev, err := events.New(events.TypeCompetitionStateUpdate, events.CompetitionPayload{
		Game:   a.cfg.MinigameGame,
		Active: active,
	})
	if err != nil {
		return err
	}
	if err := a.bus.Publish(ctx, ev); err != nil {
		log.Error().Err(err).Msg("failed to publish competition state")
	}
	return nil
}

// GetCompetition reads the minigame flag.
func (a *App) GetCompetition(ctx context.Context) (bool, error) {
	return a.settings.GetBool(ctx, models.SettingTetrisActive)
}

func (a *App) isMinigameCode(identifier string) bool {
	for _, c := range a.cfg.MinigameCodes {
		if c == identifier {
			return true
		}
	}
	return false
}
