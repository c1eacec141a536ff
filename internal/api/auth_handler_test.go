package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfoster/tasklist-api/internal/api"
	"github.com/rfoster/tasklist-api/internal/api/shared"
	"github.com/rfoster/tasklist-api/internal/mocks"
	"github.com/rfoster/tasklist-api/internal/service/auth"
)

type authFixture struct {
	handler *api.AuthHandler
	users   *mocks.MockUserStore
	tokens  *mocks.MockTokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := mocks.NewMockUserStore()
	tokens := mocks.NewMockTokenService()
	throttle := auth.NewLoginThrottle(mocks.NewMemoryAttemptStore(), 5, time.Minute)
	svc := auth.NewService(
		mocks.NewTxDB(),
		users,
		tokens,
		&mocks.PlainPasswordHasher{},
		&mocks.PlainPasswordVerifier{},
		throttle,
		nil,
	)
	return &authFixture{handler: api.NewAuthHandler(svc), users: users, tokens: tokens}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func registerPayload() map[string]string {
	return map[string]string{
		"username": "alice",
		"name":     "Alice Smith",
		"password": "a fine password",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		w := postJSON(t, f.handler.Register, "/auth/register", registerPayload())
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "Register successful", body["message"])
		assert.NotEmpty(t, body["token"])
		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "alice", user["username"])
		assert.NotContains(t, user, "password")
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		w := postJSON(t, f.handler.Register, "/auth/register", registerPayload())
		require.Equal(t, http.StatusOK, w.Code)

		w = postJSON(t, f.handler.Register, "/auth/register", registerPayload())
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Username already taken", decodeBody(t, w)["error"])
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		tests := []struct {
			name   string
			mutate func(map[string]string)
		}{
			{"missing username", func(p map[string]string) { delete(p, "username") }},
			{"missing name", func(p map[string]string) { delete(p, "name") }},
			{"short password", func(p map[string]string) { p["password"] = "short" }},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				payload := registerPayload()
				tc.mutate(payload)
				w := postJSON(t, f.handler.Register, "/auth/register", payload)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		f.handler.Register(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request format", decodeBody(t, w)["error"])
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	login := func(f *authFixture, username, password string) *httptest.ResponseRecorder {
		return postJSON(t, f.handler.Login, "/auth/login", map[string]string{
			"username": username,
			"password": password,
		})
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		postJSON(t, f.handler.Register, "/auth/register", registerPayload())

		w := login(f, "alice", "a fine password")
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Login successful", body["message"])
		assert.NotEmpty(t, body["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		postJSON(t, f.handler.Register, "/auth/register", registerPayload())

		w := login(f, "alice", "not the password")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, w)["error"])
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		w := login(f, "nobody", "whatever1")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, w)["error"])
	})

	t.Run("rate limited after repeated failures", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		postJSON(t, f.handler.Register, "/auth/register", registerPayload())

		for i := 0; i < 5; i++ {
			w := login(f, "alice", "not the password")
			require.Equal(t, http.StatusUnauthorized, w.Code)
		}

		// Even the correct password is rejected while blocked, with the same
		// status code but a different message.
		w := login(f, "alice", "a fine password")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Too many login attempts. Please try again later.", decodeBody(t, w)["error"])
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		w := login(f, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMeEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("authenticated", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		postJSON(t, f.handler.Register, "/auth/register", registerPayload())
		stored, err := f.users.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, stored.ID)
		w := httptest.NewRecorder()
		f.handler.Me(w, req.WithContext(ctx))

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Me successful", body["message"])
		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "alice", user["username"])
	})

	t.Run("no identity yields null user", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		w := httptest.NewRecorder()
		f.handler.Me(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Me successful", body["message"])
		assert.Nil(t, body["user"])
	})
}

func TestLogoutEndpoint(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	token, err := f.tokens.Issue(context.Background(), uuid.New())
	require.NoError(t, err)
	claims, err := f.tokens.Validate(context.Background(), token)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	ctx := context.WithValue(req.Context(), shared.TokenIDContextKey, claims.TokenID)
	w := httptest.NewRecorder()
	f.handler.Logout(w, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logout successful", decodeBody(t, w)["message"])

	// The token no longer validates.
	_, err = f.tokens.Validate(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	// A request with no token still gets the acknowledgement.
	w = httptest.NewRecorder()
	f.handler.Logout(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logout successful", decodeBody(t, w)["message"])
}
