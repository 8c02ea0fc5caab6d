package session

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/michalkopec1981/saper-gra/go/internal/httpx"
)

// Handler serves the session lifecycle endpoints.
type Handler struct {
	app      *App
	validate *validator.Validate
}

func NewHandler(app *App, validate *validator.Validate) *Handler {
	return &Handler{app: app, validate: validate}
}

// RegisterRoutes registers session routes with the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/start_game", h.handleStartGame)
	mux.HandleFunc("POST /api/stop_game", h.handleStopGame)
	mux.HandleFunc("POST /api/game/time/pause", h.handlePauseTimer)
	mux.HandleFunc("GET /api/game/state", h.handleState)
}

type startGameRequest struct {
	WhiteCodesCount int `json:"white_codes_count" validate:"gte=0"`
	RedCodesCount   int `json:"red_codes_count" validate:"gte=0"`
	Minutes         int `json:"minutes" validate:"gte=0"`
}

func (h *Handler) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	minutes, err := h.app.StartGame(r.Context(), req.WhiteCodesCount, req.RedCodesCount, req.Minutes)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Gra rozpoczęta na %d minut.", minutes),
	})
}

func (h *Handler) handleStopGame(w http.ResponseWriter, r *http.Request) {
	if err := h.app.StopGame(r.Context()); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Gra została zakończona.",
	})
}

func (h *Handler) handlePauseTimer(w http.ResponseWriter, r *http.Request) {
	if err := h.app.PauseTimer(r.Context()); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	status, err := h.app.Status(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, status)
}
