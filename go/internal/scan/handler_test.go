package scan

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michalkopec1981/saper-gra/go/internal/models"
)

func newTestServer(t *testing.T) (*fixture, *httptest.Server) {
	t.Helper()
	f := newFixture(t)
	mux := http.NewServeMux()
	NewHandler(f.app, validator.New()).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHandleScanRedCode(t *testing.T) {
	_, srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/scan_qr", `{"player_id":1,"qr_code":"czerwony1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "info", body["status"])
	assert.Equal(t, "Zdobyłeś 50 punktów za czerwony kod!", body["message"])
}

func TestHandleScanValidation(t *testing.T) {
	_, srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/scan_qr", `{"qr_code":"bialy1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv, "/api/scan_qr", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleScanCooldownSetsRetryAfter(t *testing.T) {
	f, srv := newTestServer(t)
	f.questions.unanswered = &models.Question{ID: 7, Text: "q"}

	resp := postJSON(t, srv, "/api/scan_qr", `{"player_id":1,"qr_code":"bialy1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f.clock.Advance(time.Minute)
	resp = postJSON(t, srv, "/api/scan_qr", `{"player_id":1,"qr_code":"bialy1"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "240", resp.Header.Get("Retry-After"))
	body := decodeBody(t, resp)
	assert.Equal(t, "Odczekaj jeszcze 4 min 0 s.", body["error"])
}

func TestHandleAnswerRepeatConflict(t *testing.T) {
	f, srv := newTestServer(t)
	f.questions.byID[7] = &models.Question{ID: 7, CorrectAnswer: "a", LetterToReveal: "W"}

	resp := postJSON(t, srv, "/api/answer", `{"player_id":1,"question_id":7,"answer":"a"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["correct"])
	assert.Equal(t, "W", body["letter"])

	resp = postJSON(t, srv, "/api/answer", `{"player_id":1,"question_id":7,"answer":"a"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Na to pytanie już odpowiedziałeś.", body["error"])
}

func TestHandleCompetitionRoundTrip(t *testing.T) {
	_, srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/competition/tetris", `{"active":true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/api/competition/tetris")
	require.NoError(t, err)
	defer getResp.Body.Close()
	body := decodeBody(t, getResp)
	assert.Equal(t, true, body["tetris_active"])
}
