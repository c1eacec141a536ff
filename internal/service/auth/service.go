package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rfoster/tasklist-api/internal/domain"
	"github.com/rfoster/tasklist-api/internal/platform/logger"
	"github.com/rfoster/tasklist-api/internal/store"
)

// Service implements the credential gateway: throttled login, registration,
// single-token logout and current-user lookup. The authenticated identity is
// always passed explicitly; the service never reads it from ambient state.
type Service struct {
	db       *sql.DB
	users    store.UserStore
	tokens   TokenService
	hasher   PasswordHasher
	verifier PasswordVerifier
	throttle *LoginThrottle
	logger   *slog.Logger
}

// NewService creates an auth Service with the given collaborators.
// If log is nil, a default logger will be used.
func NewService(
	db *sql.DB,
	users store.UserStore,
	tokens TokenService,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	throttle *LoginThrottle,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:       db,
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		verifier: verifier,
		throttle: throttle,
		logger:   log.With(slog.String("component", "auth_service")),
	}
}

// Login verifies credentials for the username and issues a new access token.
//
// The throttle check comes first: once the (username, clientIP) counter has
// reached the cap, the attempt fails with ErrRateLimited before any
// credential work, and the counter is left untouched. A failed verification
// increments the counter and refreshes its decay window; a successful login
// clears it immediately.
func (s *Service) Login(
	ctx context.Context,
	username, password, clientIP string,
) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	key := s.throttle.Key(username, clientIP)

	blocked, err := s.throttle.Blocked(ctx, key)
	if err != nil {
		log.Error("failed to check login throttle",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, "", fmt.Errorf("failed to check login throttle: %w", err)
	}
	if blocked {
		log.Warn("login attempt blocked by throttle",
			slog.String("username", username),
			slog.String("client_ip", clientIP))
		return nil, "", ErrRateLimited
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		log.Error("failed to look up user for login",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, "", err
	}

	// Unknown username and wrong password take the same path so the two are
	// indistinguishable to the caller.
	verifyErr := errors.New("no such user")
	if user != nil {
		verifyErr = s.verifier.Compare(user.HashedPassword, password)
	}
	if verifyErr != nil {
		if throttleErr := s.throttle.Failure(ctx, key); throttleErr != nil {
			log.Error("failed to record login failure",
				slog.String("error", throttleErr.Error()),
				slog.String("username", username))
		}
		log.Debug("login failed",
			slog.String("username", username),
			slog.String("client_ip", clientIP))
		return nil, "", ErrInvalidCredentials
	}

	if err := s.throttle.Success(ctx, key); err != nil {
		// Clearing the counter is best effort; the window will expire on
		// its own.
		log.Warn("failed to clear login attempt counter",
			slog.String("error", err.Error()),
			slog.String("username", username))
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		log.Error("failed to issue token on login",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	log.Info("login successful",
		slog.String("user_id", user.ID.String()),
		slog.String("username", username))
	return user, token, nil
}

// Register creates a new user with a hashed password and issues a token.
// The user row is written inside a transaction; token issuance happens after
// commit, and a failure there leaves the user registered but unauthenticated,
// which is accepted. Duplicate usernames surface as store.ErrUsernameExists.
func (s *Service) Register(
	ctx context.Context,
	username, name, password string,
) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, name, password)
	if err != nil {
		return nil, "", err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password",
			slog.String("error", err.Error()))
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("registration rejected: username taken",
				slog.String("username", username))
		} else {
			log.Error("failed to register user",
				slog.String("error", err.Error()),
				slog.String("username", username))
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		log.Error("failed to issue token on registration",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("username", username))
	return user, token, nil
}

// Logout revokes exactly the presented token. Logging out with a token that
// is already gone is a no-op, not an error.
func (s *Service) Logout(ctx context.Context, tokenID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if tokenID == uuid.Nil {
		return nil
	}

	if err := s.tokens.Revoke(ctx, tokenID); err != nil {
		if errors.Is(err, ErrRevokedToken) {
			return nil
		}
		log.Error("failed to revoke token on logout",
			slog.String("error", err.Error()),
			slog.String("token_id", tokenID.String()))
		return err
	}

	log.Info("token revoked on logout",
		slog.String("token_id", tokenID.String()))
	return nil
}

// Me resolves the authenticated user by ID. A nil UUID yields (nil, nil):
// an unauthenticated request is not an error.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	return s.users.GetByID(ctx, userID)
}
