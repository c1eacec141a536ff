// Package api implements the HTTP handlers for the task API.
package api

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/rfoster/tasklist-api/internal/api/shared"
	"github.com/rfoster/tasklist-api/internal/service/auth"
	"github.com/rfoster/tasklist-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	authService *auth.Service
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

// clientIP returns the request's client IP without the port. The RealIP
// middleware has already rewritten RemoteAddr when the request came through
// a trusted proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Register handles the POST /auth/register endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, token, err := h.authService.Register(r.Context(), req.Username, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Username already taken")
			return
		}
		slog.Error("failed to register user", "error", err, "username", req.Username)
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Message: "Register successful",
		Token:   token,
		User:    user,
	})
}

// Login handles the POST /auth/login endpoint.
// Rate-limited and bad-credential failures both come back as 401; only the
// message text differs.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		if errors.Is(err, auth.ErrRateLimited) || errors.Is(err, auth.ErrInvalidCredentials) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, GetSafeErrorMessage(err))
			return
		}
		slog.Error("failed to authenticate user", "error", err, "username", req.Username)
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to authenticate user", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

// Logout handles the POST /auth/logout endpoint. Only the token used for
// this request is revoked; a request that somehow carries no token ID is
// acknowledged without error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if tokenID, ok := getTokenIDFromContext(r); ok {
		if err := h.authService.Logout(r.Context(), tokenID); err != nil {
			slog.Error("failed to log out", "error", err, "token_id", tokenID)
			shared.RespondWithErrorAndLog(w, r,
				http.StatusInternalServerError, "Failed to log out", err)
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Logout successful",
	})
}

// Me handles the GET /auth/me endpoint. An unauthenticated request resolves
// to a null user rather than an error.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := getUserIDFromContext(r)

	user, err := h.authService.Me(r.Context(), userID)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		slog.Error("failed to resolve current user", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to resolve current user", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MeResponse{
		Message: "Me successful",
		User:    user,
	})
}
