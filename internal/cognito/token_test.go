package cognito_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jaekwang-park/taskboard/internal/cognito"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

type fakeAuth struct {
	accessToken string
	refreshErr  error
	logins      int
	refreshes   int
	lastRefresh string
}

func (f *fakeAuth) Login(ctx context.Context, in cognito.LoginInput) (cognito.AuthOutput, error) {
	f.logins++
	if in.Password != "pw" {
		return cognito.AuthOutput{}, cognito.ErrNotAuthorized
	}
	return cognito.AuthOutput{AccessToken: f.accessToken, RefreshToken: "refresh-1", ExpiresIn: 3600}, nil
}

func (f *fakeAuth) RefreshTokens(ctx context.Context, in cognito.RefreshInput) (cognito.AuthOutput, error) {
	f.refreshes++
	f.lastRefresh = in.RefreshToken
	if f.refreshErr != nil {
		return cognito.AuthOutput{}, f.refreshErr
	}
	return cognito.AuthOutput{AccessToken: f.accessToken, ExpiresIn: 3600}, nil
}

func quietLogger() cognito.TokenSourceOption {
	return cognito.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := cognito.TokenExpiry(mintToken(t, jwt.MapClaims{"exp": exp.Unix(), "sub": "bot"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}

	if _, err := cognito.TokenExpiry(mintToken(t, jwt.MapClaims{"sub": "bot"})); err == nil {
		t.Error("expected error for token without exp")
	}
	if _, err := cognito.TokenExpiry("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestTokenSource_ReusesValidToken(t *testing.T) {
	auth := &fakeAuth{accessToken: mintToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})}
	ts := cognito.NewTokenSource(context.Background(), auth, "bot", "pw", quietLogger())

	for range 3 {
		tok, err := ts.Token()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.AccessToken != auth.accessToken || tok.TokenType != "Bearer" {
			t.Errorf("unexpected token %+v", tok)
		}
	}
	if auth.logins != 1 || auth.refreshes != 0 {
		t.Errorf("expected 1 login and no refresh, got %d/%d", auth.logins, auth.refreshes)
	}
}

func TestTokenSource_RefreshesExpiredToken(t *testing.T) {
	auth := &fakeAuth{accessToken: mintToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})}
	ts := cognito.NewTokenSource(context.Background(), auth, "bot", "pw", quietLogger())

	if _, err := ts.Token(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth.logins != 1 || auth.refreshes != 1 {
		t.Errorf("expected login then refresh, got %d/%d", auth.logins, auth.refreshes)
	}
	if auth.lastRefresh != "refresh-1" {
		t.Errorf("expected refresh with login's refresh token, got %q", auth.lastRefresh)
	}
	if tok.RefreshToken != "refresh-1" {
		t.Errorf("expected refresh token kept, got %q", tok.RefreshToken)
	}
}

func TestTokenSource_FailedRefreshLogsInAgain(t *testing.T) {
	auth := &fakeAuth{
		accessToken: mintToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()}),
		refreshErr:  cognito.ErrNotAuthorized,
	}
	ts := cognito.NewTokenSource(context.Background(), auth, "bot", "pw", quietLogger())

	for range 2 {
		if _, err := ts.Token(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if auth.logins != 2 || auth.refreshes != 1 {
		t.Errorf("expected 2 logins and 1 refresh, got %d/%d", auth.logins, auth.refreshes)
	}
}

func TestTokenSource_OpaqueTokenUsesExpiresIn(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	auth := &fakeAuth{accessToken: "opaque"}
	ts := cognito.NewTokenSource(context.Background(), auth, "bot", "pw", quietLogger(),
		cognito.WithClock(func() time.Time { return now }))

	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := now.Add(time.Hour); !tok.Expiry.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, tok.Expiry)
	}
}

func TestTokenSource_Errors(t *testing.T) {
	auth := &fakeAuth{accessToken: "x"}

	ts := cognito.NewTokenSource(context.Background(), auth, "", "", quietLogger())
	if _, err := ts.Token(); !errors.Is(err, cognito.ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}

	ts = cognito.NewTokenSource(context.Background(), auth, "bot", "wrong", quietLogger())
	if _, err := ts.Token(); !errors.Is(err, cognito.ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
}
