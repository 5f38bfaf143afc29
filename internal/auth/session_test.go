package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

// notifyRecorder captures notifications emitted by the session manager.
type notifyRecorder struct {
	successes []string
	failures  []string
}

func (r *notifyRecorder) Success(_ context.Context, _, message string) {
	r.successes = append(r.successes, message)
}

func (r *notifyRecorder) Failure(_ context.Context, _, message string) {
	r.failures = append(r.failures, message)
}

// recordingManager builds a manager whose notifications are captured.
func recordingManager(t *testing.T, db *sql.DB) (*Manager, *notifyRecorder) {
	t.Helper()

	rec := &notifyRecorder{}
	m := NewManager(
		NewUserRepository(db),
		NewTokenRepository(db),
		rec,
		testLogger(),
		ManagerConfig{
			JWTSecret:       testSecret,
			AccessTokenTTL:  15,
			RefreshTokenTTL: 60,
		},
	)
	return m, rec
}

func TestManager_Loading(t *testing.T) {
	db := testDB(t)
	m := testManager(t, db)

	if !m.Loading() {
		t.Error("Loading() = false before Start, want true")
	}

	m.Start()

	if m.Loading() {
		t.Error("Loading() = true after Start, want false")
	}
	if m.Identity() != nil {
		t.Error("Identity() should be nil after Start with no session")
	}
}

func TestManager_Register(t *testing.T) {
	db := testDB(t)
	m := testManager(t, db)
	ctx := context.Background()

	session, err := m.Register(ctx, "Anna@Example.com", "secret123", "test-client")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if session.User.Email != "anna@example.com" {
		t.Errorf("Email = %q, want normalized anna@example.com", session.User.Email)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Error("session tokens should be populated")
	}
	if session.ExpiresIn != 15*60 {
		t.Errorf("ExpiresIn = %d, want 900", session.ExpiresIn)
	}

	// Registration resolves and publishes the identity.
	if m.Loading() {
		t.Error("Loading() = true after Register, want false")
	}
	identity := m.Identity()
	if identity == nil || identity.UserID != session.User.ID {
		t.Errorf("Identity() = %+v, want user %s", identity, session.User.ID)
	}

	// The password is never stored raw.
	got, err := NewUserRepository(db).GetByEmail(ctx, "anna@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.PasswordHash == "secret123" {
		t.Error("password stored in plaintext")
	}
}

func TestManager_Register_Validation(t *testing.T) {
	db := testDB(t)
	m, rec := recordingManager(t, db)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"invalid email", "not-an-email", "secret123", ErrInvalidEmail},
		{"empty email", "", "secret123", ErrInvalidEmail},
		{"short password", "anna@example.com", "abc", ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failuresBefore := len(rec.failures)

			session, err := m.Register(ctx, tt.email, tt.password, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
			if session != nil {
				t.Error("Register() returned a session on validation failure")
			}
			if len(rec.failures) != failuresBefore+1 {
				t.Error("validation failure should emit a notification")
			}
		})
	}
}

func TestManager_Register_DuplicateEmail(t *testing.T) {
	db := testDB(t)
	m, rec := recordingManager(t, db)
	ctx := context.Background()

	if _, err := m.Register(ctx, "anna@example.com", "secret123", ""); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	if _, err := m.Register(ctx, "ANNA@example.com", "different456", ""); !errors.Is(err, ErrEmailExists) {
		t.Errorf("Register() error = %v, want ErrEmailExists", err)
	}
	if len(rec.failures) == 0 {
		t.Error("duplicate registration should emit a failure notification")
	}
}

func TestManager_Login(t *testing.T) {
	db := testDB(t)
	m, rec := recordingManager(t, db)
	ctx := context.Background()

	user := seedTestUser(t, db, "anna@example.com")

	session, err := m.Login(ctx, "anna@example.com", "test-password", "test-client")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if session.User.ID != user.ID {
		t.Errorf("session user = %q, want %q", session.User.ID, user.ID)
	}

	identity := m.Identity()
	if identity == nil || identity.UserID != user.ID {
		t.Errorf("Identity() = %+v, want user %s", identity, user.ID)
	}
	if len(rec.successes) == 0 {
		t.Error("successful login should emit a notification")
	}

	// The access token resolves back to the same identity.
	resolved, err := m.Authenticate(ctx, session.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if resolved.UserID != user.ID || resolved.Email != "anna@example.com" {
		t.Errorf("Authenticate() = %+v, want user %s", resolved, user.ID)
	}
}

func TestManager_Login_Failures(t *testing.T) {
	db := testDB(t)
	m, rec := recordingManager(t, db)
	ctx := context.Background()

	user := seedTestUser(t, db, "anna@example.com")

	if _, err := m.Login(ctx, "nobody@example.com", "test-password", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := m.Login(ctx, "anna@example.com", "wrong-password", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: error = %v, want ErrInvalidCredentials", err)
	}

	if err := NewUserRepository(db).SetActive(ctx, user.ID, false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if _, err := m.Login(ctx, "anna@example.com", "test-password", ""); !errors.Is(err, ErrUserInactive) {
		t.Errorf("inactive account: error = %v, want ErrUserInactive", err)
	}

	if len(rec.failures) != 3 {
		t.Errorf("failure notifications = %d, want 3", len(rec.failures))
	}
	if m.Identity() != nil {
		t.Error("failed logins must not set an identity")
	}
}

func TestManager_Logout(t *testing.T) {
	db := testDB(t)
	m := testManager(t, db)
	ctx := context.Background()

	seedTestUser(t, db, "anna@example.com")
	session, err := m.Login(ctx, "anna@example.com", "test-password", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := m.Logout(ctx, session.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if m.Identity() != nil {
		t.Error("Identity() should be nil after logout")
	}

	// The revoked token cannot be used again.
	if _, err := m.Refresh(ctx, session.RefreshToken, ""); !errors.Is(err, ErrTokenReuse) {
		t.Errorf("Refresh() after logout: error = %v, want ErrTokenReuse", err)
	}
}

func TestManager_Logout_UnknownToken(t *testing.T) {
	db := testDB(t)
	m := testManager(t, db)

	// Logout with a never-issued token still lands signed out.
	if err := m.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if m.Identity() != nil {
		t.Error("Identity() should be nil after logout")
	}
	if m.Loading() {
		t.Error("Loading() should be false after logout")
	}
}

func TestManager_Refresh_Rotation(t *testing.T) {
	db := testDB(t)
	m := testManager(t, db)
	ctx := context.Background()

	seedTestUser(t, db, "anna@example.com")
	session, err := m.Login(ctx, "anna@example.com", "test-password", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	refreshed, err := m.Refresh(ctx, session.RefreshToken, "")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.RefreshToken == session.RefreshToken {
		t.Error("Refresh() must rotate the refresh token")
	}
	if refreshed.AccessToken == "" {
		t.Error("Refresh() must issue a new access token")
	}

	// Replaying the consumed token kills the whole family.
	if _, err := m.Refresh(ctx, session.RefreshToken, ""); !errors.Is(err, ErrTokenReuse) {
		t.Errorf("replayed token: error = %v, want ErrTokenReuse", err)
	}
	if _, err := m.Refresh(ctx, refreshed.RefreshToken, ""); !errors.Is(err, ErrTokenReuse) {
		t.Errorf("descendant after reuse: error = %v, want ErrTokenReuse", err)
	}
}

func TestManager_Subscribe(t *testing.T) {
	db := testDB(t)
	m := testManager(t, db)
	ctx := context.Background()

	ch, cancel := m.Subscribe()
	defer cancel()

	// Current (unresolved) state is delivered immediately.
	if got := <-ch; got != nil {
		t.Errorf("initial identity = %+v, want nil", got)
	}

	seedTestUser(t, db, "anna@example.com")
	session, err := m.Login(ctx, "anna@example.com", "test-password", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	got := <-ch
	if got == nil || got.UserID != session.User.ID {
		t.Errorf("identity after login = %+v, want user %s", got, session.User.ID)
	}

	if err := m.Logout(ctx, session.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if got := <-ch; got != nil {
		t.Errorf("identity after logout = %+v, want nil", got)
	}
}

func TestManager_Subscribe_CancelStopsDelivery(t *testing.T) {
	db := testDB(t)
	m := testManager(t, db)

	ch, cancel := m.Subscribe()
	<-ch // drain initial state
	cancel()

	// The channel is closed; a closed receive yields the zero value.
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}

	// Publishing after cancel must not panic.
	m.Start()
}

func TestManager_Authenticate_InvalidToken(t *testing.T) {
	db := testDB(t)
	m := testManager(t, db)

	if _, err := m.Authenticate(context.Background(), "garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Authenticate() error = %v, want ErrTokenInvalid", err)
	}
}
