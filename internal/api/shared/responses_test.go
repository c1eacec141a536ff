package shared_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfoster/tasklist-api/internal/api/shared"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"ok"}`, w.Body.String())
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	t.Run("includes trace ID when present", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(shared.SetTraceID(r.Context()))
		w := httptest.NewRecorder()
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")

		assert.Equal(t, http.StatusNotFound, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Task not found", body["error"])
		assert.NotEmpty(t, body["trace_id"])
	})

	t.Run("omits trace ID when absent", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")

		assert.NotContains(t, w.Body.String(), "trace_id")
	})
}

func TestRespondWithErrorAndLogHidesDetails(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	internal := errors.New("pq: relation tasks does not exist")
	shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list tasks", internal)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to list tasks")
	assert.NotContains(t, w.Body.String(), "pq:", "internal errors never reach the client")
}
