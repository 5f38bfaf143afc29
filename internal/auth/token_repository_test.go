package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

// futureExpiry returns an expiry safely in the future for test tokens.
func futureExpiry() time.Time {
	return time.Now().Add(time.Hour)
}

func TestTokenRepository_CreateAndGetByHash(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "anna@example.com")

	token := &RefreshToken{
		UserID:     user.ID,
		TokenHash:  HashToken("raw-token-1"),
		DeviceInfo: "kitchen-panel",
		ExpiresAt:  futureExpiry(),
	}
	if err := repo.Create(ctx, token); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if token.ID == "" {
		t.Fatal("Create() should generate an ID")
	}
	if token.FamilyID == "" {
		t.Fatal("Create() should generate a family ID")
	}

	got, err := repo.GetByTokenHash(ctx, HashToken("raw-token-1"))
	if err != nil {
		t.Fatalf("GetByTokenHash() error = %v", err)
	}
	if got.UserID != user.ID {
		t.Errorf("UserID = %q, want %q", got.UserID, user.ID)
	}
	if got.DeviceInfo != "kitchen-panel" {
		t.Errorf("DeviceInfo = %q, want kitchen-panel", got.DeviceInfo)
	}
	if got.Revoked {
		t.Error("new token should not be revoked")
	}
}

func TestTokenRepository_GetByHash_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)

	if _, err := repo.GetByTokenHash(context.Background(), HashToken("never-issued")); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("GetByTokenHash() error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenRepository_RevokeFamily(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "anna@example.com")

	family := "fam-1"
	for i, raw := range []string{"t1", "t2"} {
		token := &RefreshToken{
			UserID:    user.ID,
			FamilyID:  family,
			TokenHash: HashToken(raw),
			ExpiresAt: futureExpiry(),
		}
		if err := repo.Create(ctx, token); err != nil {
			t.Fatalf("creating token %d: %v", i, err)
		}
	}
	other := &RefreshToken{
		UserID:    user.ID,
		FamilyID:  "fam-2",
		TokenHash: HashToken("t3"),
		ExpiresAt: futureExpiry(),
	}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("creating other-family token: %v", err)
	}

	if err := repo.RevokeFamily(ctx, family); err != nil {
		t.Fatalf("RevokeFamily() error = %v", err)
	}

	for _, raw := range []string{"t1", "t2"} {
		got, err := repo.GetByTokenHash(ctx, HashToken(raw))
		if err != nil {
			t.Fatalf("GetByTokenHash(%s) error = %v", raw, err)
		}
		if !got.Revoked {
			t.Errorf("token %s not revoked", raw)
		}
	}

	got, err := repo.GetByTokenHash(ctx, HashToken("t3"))
	if err != nil {
		t.Fatalf("GetByTokenHash(t3) error = %v", err)
	}
	if got.Revoked {
		t.Error("other family token was revoked")
	}
}

func TestTokenRepository_RotateRefreshToken(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "anna@example.com")

	old := &RefreshToken{
		UserID:    user.ID,
		TokenHash: HashToken("old-raw"),
		ExpiresAt: futureExpiry(),
	}
	if err := repo.Create(ctx, old); err != nil {
		t.Fatalf("creating old token: %v", err)
	}

	newToken := &RefreshToken{
		UserID:    user.ID,
		FamilyID:  old.FamilyID,
		TokenHash: HashToken("new-raw"),
		ExpiresAt: futureExpiry(),
	}
	if err := repo.RotateRefreshToken(ctx, old.ID, newToken); err != nil {
		t.Fatalf("RotateRefreshToken() error = %v", err)
	}

	gotOld, err := repo.GetByTokenHash(ctx, HashToken("old-raw"))
	if err != nil {
		t.Fatalf("GetByTokenHash(old) error = %v", err)
	}
	if !gotOld.Revoked {
		t.Error("old token should be revoked after rotation")
	}

	gotNew, err := repo.GetByTokenHash(ctx, HashToken("new-raw"))
	if err != nil {
		t.Fatalf("GetByTokenHash(new) error = %v", err)
	}
	if gotNew.Revoked {
		t.Error("new token should not be revoked")
	}
	if gotNew.FamilyID != old.FamilyID {
		t.Errorf("new token family = %q, want %q", gotNew.FamilyID, old.FamilyID)
	}
}

func TestTokenRepository_ListActiveByUser(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "anna@example.com")

	active := &RefreshToken{UserID: user.ID, TokenHash: HashToken("active"), ExpiresAt: futureExpiry()}
	expired := &RefreshToken{UserID: user.ID, TokenHash: HashToken("expired"), ExpiresAt: time.Now().Add(-time.Hour)}
	revoked := &RefreshToken{UserID: user.ID, TokenHash: HashToken("revoked"), ExpiresAt: futureExpiry()}

	for _, tok := range []*RefreshToken{active, expired, revoked} {
		if err := repo.Create(ctx, tok); err != nil {
			t.Fatalf("creating token: %v", err)
		}
	}
	if err := repo.Revoke(ctx, revoked.ID); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	tokens, err := repo.ListActiveByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListActiveByUser() error = %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("len(tokens) = %d, want 1", len(tokens))
	}
	if tokens[0].ID != active.ID {
		t.Errorf("active token ID = %q, want %q", tokens[0].ID, active.ID)
	}
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "anna@example.com")

	live := &RefreshToken{UserID: user.ID, TokenHash: HashToken("live"), ExpiresAt: futureExpiry()}
	dead := &RefreshToken{UserID: user.ID, TokenHash: HashToken("dead"), ExpiresAt: time.Now().Add(-time.Minute)}

	for _, tok := range []*RefreshToken{live, dead} {
		if err := repo.Create(ctx, tok); err != nil {
			t.Fatalf("creating token: %v", err)
		}
	}

	count, err := repo.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if count != 1 {
		t.Errorf("DeleteExpired() = %d, want 1", count)
	}

	if _, err := repo.GetByTokenHash(ctx, HashToken("live")); err != nil {
		t.Errorf("live token was deleted: %v", err)
	}
	if _, err := repo.GetByTokenHash(ctx, HashToken("dead")); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("dead token still present: error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenRepository_RevokeAllForUser(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "anna@example.com")
	other := seedTestUser(t, db, "ben@example.com")

	mine := &RefreshToken{UserID: user.ID, TokenHash: HashToken("mine"), ExpiresAt: futureExpiry()}
	theirs := &RefreshToken{UserID: other.ID, TokenHash: HashToken("theirs"), ExpiresAt: futureExpiry()}

	for _, tok := range []*RefreshToken{mine, theirs} {
		if err := repo.Create(ctx, tok); err != nil {
			t.Fatalf("creating token: %v", err)
		}
	}

	if err := repo.RevokeAllForUser(ctx, user.ID); err != nil {
		t.Fatalf("RevokeAllForUser() error = %v", err)
	}

	gotMine, _ := repo.GetByTokenHash(ctx, HashToken("mine"))
	if !gotMine.Revoked {
		t.Error("user's token not revoked")
	}
	gotTheirs, _ := repo.GetByTokenHash(ctx, HashToken("theirs"))
	if gotTheirs.Revoked {
		t.Error("other user's token was revoked")
	}
}
