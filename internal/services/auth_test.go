package services

import (
	"context"
	"testing"
	"time"

	"github.com/estuda-app/estuda-backend/internal/apierr"
	"github.com/estuda-app/estuda-backend/internal/repos"
	"github.com/estuda-app/estuda-backend/internal/requestdata"
	"github.com/estuda-app/estuda-backend/internal/types"
)

func newTestAuthService(t *testing.T, env *testEnv) AuthService {
	t.Helper()
	tokenRepo := repos.NewUserTokenRepo(env.db, env.log)
	return NewAuthService(env.db, env.log, env.userRepo, tokenRepo, nil, "test-secret", time.Hour, 24*time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := newTestAuthService(t, env)

	user := &types.User{
		Email:       "Rita@Example.com",
		Password:    "correct-horse",
		FirstName:   "Rita",
		DisplayName: "rita",
	}
	access, refresh, err := auth.RegisterUser(ctx, user)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("register returned empty tokens")
	}
	if user.Email != "rita@example.com" {
		t.Fatalf("email = %q, want lowercased", user.Email)
	}

	if _, _, err := auth.RegisterUser(ctx, &types.User{Email: "rita@example.com", Password: "correct-horse"}); err == nil {
		t.Fatal("duplicate email accepted")
	}

	if _, _, err := auth.LoginUser(ctx, "rita@example.com", "wrong-password"); apierr.From(err) == nil {
		t.Fatalf("wrong password err = %v, want unauthorized", err)
	}
	if _, _, err := auth.LoginUser(ctx, "RITA@example.com", "correct-horse"); err != nil {
		t.Fatalf("login: %v", err)
	}

	authedCtx, err := auth.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("set context: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("request data = %+v, want user %s", rd, user.ID)
	}
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := newTestAuthService(t, env)

	user := &types.User{Email: "sami@example.com", Password: "correct-horse", DisplayName: "sami"}
	_, refresh, err := auth.RegisterUser(ctx, user)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	rdCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{RefreshToken: refresh})
	newAccess, newRefresh, err := auth.RefreshUser(rdCtx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if newAccess == "" || newRefresh == "" || newRefresh == refresh {
		t.Fatal("refresh did not rotate the token pair")
	}

	// The old pair is revoked by the rotation.
	if _, _, err := auth.RefreshUser(rdCtx); apierr.From(err) == nil {
		t.Fatalf("stale refresh err = %v, want unauthorized", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := newTestAuthService(t, env)

	cases := []struct {
		name string
		user types.User
	}{
		{name: "bad_email", user: types.User{Email: "not-an-email", Password: "long-enough"}},
		{name: "short_password", user: types.User{Email: "tiago@example.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := auth.RegisterUser(ctx, &tc.user)
			ae := apierr.From(err)
			if ae == nil || ae.Code != apierr.CodeInvalidArgument {
				t.Fatalf("err = %v, want code %s", err, apierr.CodeInvalidArgument)
			}
		})
	}
}

func TestTokenIssuanceNeverCollides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := newTestAuthService(t, env)

	user := &types.User{Email: "tiago@example.com", Password: "correct-horse", DisplayName: "tiago"}
	registerAccess, _, err := auth.RegisterUser(ctx, user)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Every issued access token carries a fresh jti, so back-to-back
	// issuances inside the same second must still produce distinct rows
	// under the unique access_token index.
	seen := map[string]bool{registerAccess: true}
	for i := 0; i < 3; i++ {
		access, _, err := auth.LoginUser(ctx, "tiago@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
		if seen[access] {
			t.Fatalf("login %d reissued an already-seen access token", i)
		}
		seen[access] = true
	}
}
