package scan

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/michalkopec1981/saper-gra/go/internal/httpx"
)

// Handler serves the scan, answer and minigame endpoints.
type Handler struct {
	app      *App
	validate *validator.Validate
}

func NewHandler(app *App, validate *validator.Validate) *Handler {
	return &Handler{app: app, validate: validate}
}

// RegisterRoutes registers scan routes with the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/scan_qr", h.handleScan)
	mux.HandleFunc("POST /api/answer", h.handleAnswer)
	mux.HandleFunc("POST /api/minigame_reward", h.handleMinigameReward)
	mux.HandleFunc("GET /api/competition/tetris", h.handleGetCompetition)
	mux.HandleFunc("POST /api/competition/tetris", h.handleSetCompetition)
}

type scanRequest struct {
	PlayerID int    `json:"player_id" validate:"required,gt=0"`
	QRCode   string `json:"qr_code" validate:"required"`
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	result, err := h.app.Scan(r.Context(), req.PlayerID, req.QRCode)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

type answerRequest struct {
	PlayerID   int    `json:"player_id" validate:"required,gt=0"`
	QuestionID int    `json:"question_id" validate:"required,gt=0"`
	Answer     string `json:"answer" validate:"required"`
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	result, err := h.app.Answer(r.Context(), req.PlayerID, req.QuestionID, req.Answer)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

type minigameRewardRequest struct {
	PlayerID int `json:"player_id" validate:"required,gt=0"`
}

func (h *Handler) handleMinigameReward(w http.ResponseWriter, r *http.Request) {
	var req minigameRewardRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	result, err := h.app.MinigameReward(r.Context(), req.PlayerID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

type competitionRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) handleSetCompetition(w http.ResponseWriter, r *http.Request) {
	var req competitionRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.app.SetCompetition(r.Context(), req.Active); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"tetris_active": req.Active,
	})
}

func (h *Handler) handleGetCompetition(w http.ResponseWriter, r *http.Request) {
	active, err := h.app.GetCompetition(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"tetris_active": active})
}
