package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/michalkopec1981/saper-gra/go/internal/apperr"
)

// WriteJSON serializes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

// WriteError maps err to its HTTP status and serves {"error": message}.
// Internal faults are logged and masked.
func WriteError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("internal error")
		message = "internal server error"
	}
	if e, ok := apperr.As(err); ok && e.RetryAfterSec > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfterSec))
	}
	WriteJSON(w, status, map[string]string{"error": message})
}

// DecodeJSON decodes the request body into dst and runs struct validation.
func DecodeJSON(r *http.Request, validate *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validationf("invalid JSON body")
	}
	if err := validate.StructCtx(r.Context(), dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperr.Validationf("%s is invalid", verrs[0].Field())
		}
		return apperr.Validationf("invalid request")
	}
	return nil
}

// PathID parses the {id} path value as a positive integer.
func PathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("invalid %s", name)
	}
	return id, nil
}

// IntOrDefault returns def when v is zero or negative.
func IntOrDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
