package player

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/michalkopec1981/saper-gra/go/internal/httpx"
)

// Handler serves the player roster endpoints.
type Handler struct {
	app      *App
	validate *validator.Validate
}

func NewHandler(app *App, validate *validator.Validate) *Handler {
	return &Handler{app: app, validate: validate}
}

// RegisterRoutes registers player routes with the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register_player", h.handleRegister)
	mux.HandleFunc("GET /api/players", h.handleList)
	mux.HandleFunc("DELETE /api/players/{id}", h.handleDelete)
	mux.HandleFunc("POST /api/players/{id}/warn", h.handleWarn)
}

type registerRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	player, err := h.app.Register(r.Context(), req.Name)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"id":   player.ID,
		"name": player.Name,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	players, err := h.app.List(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	out := make([]map[string]any, len(players))
	for i, p := range players {
		out[i] = map[string]any{
			"id":       p.ID,
			"name":     p.Name,
			"score":    p.Score,
			"warnings": p.Warnings,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.app.Delete(r.Context(), id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Gracz usunięty",
	})
}

func (h *Handler) handleWarn(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	warnings, err := h.app.Warn(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"warnings": warnings,
	})
}
