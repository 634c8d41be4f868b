package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/iptvbot/internal/models"
)

type recordingHandler struct {
	phone, text string
	err         error
}

func (h *recordingHandler) HandleIncomingMessage(_ context.Context, phone, text string) error {
	h.phone, h.text = phone, text
	return h.err
}

type staticStats struct {
	st  *models.Stats
	err error
}

func (s staticStats) Stats(context.Context) (*models.Stats, error) { return s.st, s.err }

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const upsertBody = `{
	"event": "messages.upsert",
	"instance": "default",
	"data": {
		"key": {"remoteJid": "5511999999999@s.whatsapp.net", "fromMe": false},
		"message": {"conversation": "oi"}
	}
}`

func TestWebhookRoutesMessageToHandler(t *testing.T) {
	h := &recordingHandler{}
	router := New(h, staticStats{st: &models.Stats{}}, nil).Router()

	for _, path := range []string{"/webhook", "/webhook/messages-upsert"} {
		h.phone, h.text = "", ""
		rec := postJSON(t, router, path, upsertBody)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "5511999999999", h.phone, path)
		assert.Equal(t, "oi", h.text, path)
		assert.Contains(t, rec.Body.String(), "processed")
	}
}

func TestWebhookIgnoresOwnAndMalformed(t *testing.T) {
	h := &recordingHandler{}
	router := New(h, staticStats{st: &models.Stats{}}, nil).Router()

	fromMe := strings.Replace(upsertBody, `"fromMe": false`, `"fromMe": true`, 1)
	rec := postJSON(t, router, "/webhook", fromMe)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
	assert.Empty(t, h.phone)

	rec = postJSON(t, router, "/webhook", "{not json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
}

func TestWebhookReportsHandlerError(t *testing.T) {
	h := &recordingHandler{err: errors.New("db down")}
	router := New(h, staticStats{st: &models.Stats{}}, nil).Router()

	rec := postJSON(t, router, "/webhook", upsertBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestMessagesUpdateIsAcknowledged(t *testing.T) {
	h := &recordingHandler{}
	router := New(h, staticStats{st: &models.Stats{}}, nil).Router()

	rec := postJSON(t, router, "/webhook/messages-update", `{"event":"messages.update"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
	assert.Empty(t, h.phone)
}

func TestHealthAndStats(t *testing.T) {
	stats := staticStats{st: &models.Stats{Users: 7, PendingTests: 2, ActiveTests: 4, ActiveSubscriptions: 9, MessagesToday: 31}}
	router := New(&recordingHandler{}, stats, nil).Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	req = httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.EqualValues(t, 7, payload["users"])
	assert.EqualValues(t, 2, payload["pending_tests"])
	assert.EqualValues(t, 4, payload["active_tests"])
	assert.EqualValues(t, 9, payload["active_subscriptions"])
	assert.EqualValues(t, 31, payload["messages_today"])
}

func TestStatsFailure(t *testing.T) {
	router := New(&recordingHandler{}, staticStats{err: errors.New("no db")}, nil).Router()

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
