package question

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/michalkopec1981/saper-gra/go/internal/httpx"
	"github.com/michalkopec1981/saper-gra/go/internal/models"
)

// Handler serves the question management endpoints.
type Handler struct {
	app      *App
	validate *validator.Validate
}

func NewHandler(app *App, validate *validator.Validate) *Handler {
	return &Handler{app: app, validate: validate}
}

// RegisterRoutes registers question routes with the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/questions", h.handleList)
	mux.HandleFunc("POST /api/questions", h.handleCreate)
	mux.HandleFunc("DELETE /api/questions/{id}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, h.validate, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	q, err := h.app.Create(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"status":      "success",
		"message":     "Pytanie dodane",
		"question_id": q.ID,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	questions, err := h.app.List(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	out := make([]map[string]any, len(questions))
	for i, q := range questions {
		out[i] = questionToHostView(q)
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
		"message": "Pytanie usunięte",
	})
}

// questionToHostView includes the correct answer; this endpoint serves
// the host console, never players.
func questionToHostView(q models.Question) map[string]any {
	return map[string]any{
		"id":             q.ID,
		"text":           q.Text,
		"answers":        []string{q.OptionA, q.OptionB, q.OptionC},
		"correctAnswer":  q.CorrectAnswer,
		"letterToReveal": q.LetterToReveal,
	}
}
