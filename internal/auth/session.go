package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hearthline/hearth-core/internal/infrastructure/logging"
	"github.com/hearthline/hearth-core/internal/notify"
)

// Session is the result of a successful login, registration, or refresh.
type Session struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // access token lifetime in seconds
}

// ManagerConfig holds token issuance settings for the session manager.
type ManagerConfig struct {
	JWTSecret       string
	AccessTokenTTL  int // minutes
	RefreshTokenTTL int // minutes
}

// subscriberBuffer is the per-subscriber channel depth. A slow consumer
// misses intermediate states, never the latest (sends are non-blocking
// and the final state is re-queryable via Identity()).
const subscriberBuffer = 8

// Manager owns the authentication lifecycle: registration, login,
// logout, token refresh, and identity resolution. It also tracks the
// active identity and fans identity changes out to subscribers, so
// transports (WebSocket hub, UI shell) observe sign-in state without
// polling.
//
// The manager starts in a loading state. Loading() reports true until
// the first identity resolution (Start or an auth operation), then
// false for the lifetime of the process.
//
// Failed operations notify the user-facing channel and still return
// the error; callers keep full control flow.
type Manager struct {
	users    UserRepository
	tokens   TokenRepository
	notifier notify.Notifier
	logger   *logging.Logger
	cfg      ManagerConfig

	mu          sync.RWMutex
	current     *Identity
	loading     bool
	subscribers map[uint64]chan *Identity
	nextSubID   uint64
}

// NewManager creates a session manager. The notifier must be non-nil;
// use notify.Noop{} to discard notifications.
func NewManager(users UserRepository, tokens TokenRepository, notifier notify.Notifier, logger *logging.Logger, cfg ManagerConfig) *Manager {
	return &Manager{
		users:       users,
		tokens:      tokens,
		notifier:    notifier,
		logger:      logger,
		cfg:         cfg,
		loading:     true,
		subscribers: make(map[uint64]chan *Identity),
	}
}

// Start resolves the initial identity. A fresh process has no session,
// so the initial identity is signed out; the point of Start is flipping
// the loading state exactly once so subscribers can distinguish "still
// resolving" from "resolved: nobody signed in".
func (m *Manager) Start() {
	m.publish(nil)
}

// Loading reports whether the initial identity resolution is still
// pending. It flips to false exactly once and never back.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Identity returns the currently resolved identity, or nil when signed out.
func (m *Manager) Identity() *Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe registers for identity change events. The current identity
// is delivered immediately; subsequent logins, registrations, and
// logouts deliver the new identity (nil on sign-out). The returned
// cancel function must be called to release the subscription.
func (m *Manager) Subscribe() (<-chan *Identity, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++

	ch := make(chan *Identity, subscriberBuffer)
	ch <- m.current
	m.subscribers[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publish records the new identity, marks loading resolved, and fans
// the change out to subscribers without blocking.
func (m *Manager) publish(identity *Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = identity
	m.loading = false

	for _, ch := range m.subscribers {
		select {
		case ch <- identity:
		default:
			// Subscriber is not keeping up; it can re-query Identity().
		}
	}
}

// Register creates a new account and signs it in.
//
// Validation failures and duplicate emails notify the user-facing
// channel and return the error.
func (m *Manager) Register(ctx context.Context, email, password, deviceInfo string) (*Session, error) {
	email = NormalizeEmail(email)

	if !IsValidEmail(email) {
		m.notifier.Failure(ctx, "", "Registration failed: invalid email address")
		return nil, ErrInvalidEmail
	}
	if !IsValidPassword(password) {
		m.notifier.Failure(ctx, "", "Registration failed: password too short")
		return nil, ErrWeakPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := m.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			m.notifier.Failure(ctx, "", "Registration failed: email already registered")
			return nil, err
		}
		return nil, fmt.Errorf("registering user: %w", err)
	}

	session, err := m.issueSession(ctx, user, "", deviceInfo)
	if err != nil {
		return nil, err
	}

	m.publish(&Identity{UserID: user.ID, Email: user.Email})
	m.notifier.Success(ctx, user.ID, "Account created")
	m.logger.Info("user registered", "user_id", user.ID)

	return session, nil
}

// Login authenticates an email/password pair and opens a session.
//
// Unknown emails and wrong passwords both map to ErrInvalidCredentials
// so the response does not reveal which accounts exist.
func (m *Manager) Login(ctx context.Context, email, password, deviceInfo string) (*Session, error) {
	user, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			m.notifier.Failure(ctx, "", "Login failed: invalid credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !user.IsActive {
		m.notifier.Failure(ctx, user.ID, "Login failed: account is inactive")
		return nil, ErrUserInactive
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		m.notifier.Failure(ctx, user.ID, "Login failed: invalid credentials")
		return nil, ErrInvalidCredentials
	}

	session, err := m.issueSession(ctx, user, "", deviceInfo)
	if err != nil {
		return nil, err
	}

	m.publish(&Identity{UserID: user.ID, Email: user.Email})
	m.notifier.Success(ctx, user.ID, "Signed in")
	m.logger.Info("user logged in", "user_id", user.ID)

	return session, nil
}

// Logout revokes the refresh token family and clears the identity.
//
// An unknown or already-revoked token still results in a signed-out
// identity; logout is idempotent from the caller's point of view.
func (m *Manager) Logout(ctx context.Context, rawRefreshToken string) error {
	var userID string

	token, err := m.tokens.GetByTokenHash(ctx, HashToken(rawRefreshToken))
	switch {
	case err == nil:
		userID = token.UserID
		if err := m.tokens.RevokeFamily(ctx, token.FamilyID); err != nil {
			return fmt.Errorf("logging out: %w", err)
		}
	case errors.Is(err, ErrTokenInvalid):
		// Nothing to revoke; fall through to clearing the identity.
	default:
		return fmt.Errorf("logging out: %w", err)
	}

	m.publish(nil)
	m.notifier.Success(ctx, userID, "Signed out")
	m.logger.Info("user logged out", "user_id", userID)

	return nil
}

// Refresh rotates a refresh token and issues a new access token.
//
// Reuse of a revoked token revokes the whole family: a replayed token
// means either the client retried a consumed token or the token was
// stolen, and in both cases every descendant must die.
func (m *Manager) Refresh(ctx context.Context, rawRefreshToken, deviceInfo string) (*Session, error) {
	token, err := m.tokens.GetByTokenHash(ctx, HashToken(rawRefreshToken))
	if err != nil {
		return nil, err
	}

	if token.Revoked {
		if err := m.tokens.RevokeFamily(ctx, token.FamilyID); err != nil {
			m.logger.Error("revoking family after reuse", "error", err, "family_id", token.FamilyID)
		}
		m.logger.Warn("refresh token reuse detected", "user_id", token.UserID, "family_id", token.FamilyID)
		return nil, ErrTokenReuse
	}

	if time.Now().After(token.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	user, err := m.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading user for refresh: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	newRaw, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	newToken := &RefreshToken{
		UserID:     user.ID,
		FamilyID:   token.FamilyID,
		TokenHash:  HashToken(newRaw),
		DeviceInfo: deviceInfo,
		ExpiresAt:  time.Now().Add(time.Duration(m.cfg.RefreshTokenTTL) * time.Minute),
	}
	if err := m.tokens.RotateRefreshToken(ctx, token.ID, newToken); err != nil {
		return nil, err
	}

	access, err := GenerateAccessToken(user, m.cfg.JWTSecret, m.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	return &Session{
		User:         user,
		AccessToken:  access,
		RefreshToken: newRaw,
		ExpiresIn:    m.cfg.AccessTokenTTL * 60,
	}, nil
}

// Authenticate validates an access token and returns the identity it
// carries. It is signature-only: no database lookup.
func (m *Manager) Authenticate(_ context.Context, accessToken string) (*Identity, error) {
	claims, err := ParseToken(accessToken, m.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// issueSession generates an access/refresh token pair for the user and
// stores the refresh token. An empty familyID starts a new family.
func (m *Manager) issueSession(ctx context.Context, user *User, familyID, deviceInfo string) (*Session, error) {
	access, err := GenerateAccessToken(user, m.cfg.JWTSecret, m.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	rawRefresh, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	refresh := &RefreshToken{
		UserID:     user.ID,
		FamilyID:   familyID,
		TokenHash:  HashToken(rawRefresh),
		DeviceInfo: deviceInfo,
		ExpiresAt:  time.Now().Add(time.Duration(m.cfg.RefreshTokenTTL) * time.Minute),
	}
	if err := m.tokens.Create(ctx, refresh); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &Session{
		User:         user,
		AccessToken:  access,
		RefreshToken: rawRefresh,
		ExpiresIn:    m.cfg.AccessTokenTTL * 60,
	}, nil
}
