package qrcode

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	qr "github.com/skip2/go-qrcode"

	"github.com/michalkopec1981/saper-gra/go/internal/apperr"
	"github.com/michalkopec1981/saper-gra/go/internal/httpx"
)

const pngSize = 256

// Handler serves the QR code listing and PNG rendering endpoints.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes registers QR code routes with the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/qrcodes", h.handleList)
	mux.HandleFunc("GET /qrcodes/{code}", h.handlePNG)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	codes, err := h.repo.List(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, codes)
}

// handlePNG renders the printable QR image for a seeded code. The image
// encodes the bare identifier, which is what the player client scans.
// An optional .png suffix is accepted so the printable sheet can link
// images directly.
func (h *Handler) handlePNG(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSuffix(r.PathValue("code"), ".png")
	if identifier == "" {
		httpx.WriteError(w, apperr.Validationf("invalid code"))
		return
	}
	code, err := h.repo.GetByIdentifier(r.Context(), identifier)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	png, err := qr.Encode(code.CodeIdentifier, qr.Medium, pngSize)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Str("code", identifier).Msg("failed to write QR image")
	}
}
