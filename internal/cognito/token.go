package cognito

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
func TokenExpiry(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return exp.Time, nil
}

type fetcher struct {
	ctx      context.Context
	auth     Authenticator
	username string
	password string
	now      func() time.Time
	logger   *slog.Logger

	refreshToken string
}

type TokenSourceOption func(*fetcher)

func WithClock(now func() time.Time) TokenSourceOption {
	return func(f *fetcher) { f.now = now }
}

func WithLogger(l *slog.Logger) TokenSourceOption {
	return func(f *fetcher) { f.logger = l }
}

// NewTokenSource logs in with username and password on first use, then
// refreshes with the refresh token as access tokens expire. A failed
// refresh falls back to a fresh login. Tokens are reused until expiry.
func NewTokenSource(ctx context.Context, auth Authenticator, username, password string, opts ...TokenSourceOption) oauth2.TokenSource {
	f := &fetcher{
		ctx:      ctx,
		auth:     auth,
		username: username,
		password: password,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return oauth2.ReuseTokenSource(nil, f)
}

// Token is called serially by the reuse wrapper.
func (f *fetcher) Token() (*oauth2.Token, error) {
	if f.username == "" || f.password == "" {
		return nil, ErrNoCredentials
	}

	if f.refreshToken != "" {
		out, err := f.auth.RefreshTokens(f.ctx, RefreshInput{Username: f.username, RefreshToken: f.refreshToken})
		if err == nil {
			return f.token(out), nil
		}
		f.logger.WarnContext(f.ctx, "cognito refresh failed, logging in again", "error", err)
		f.refreshToken = ""
	}

	out, err := f.auth.Login(f.ctx, LoginInput{Username: f.username, Password: f.password})
	if err != nil {
		return nil, fmt.Errorf("cognito login: %w", err)
	}
	return f.token(out), nil
}

func (f *fetcher) token(out AuthOutput) *oauth2.Token {
	if out.RefreshToken != "" {
		f.refreshToken = out.RefreshToken
	}

	expiry, err := TokenExpiry(out.AccessToken)
	if err != nil {
		expiry = f.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	tokenType := out.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  out.AccessToken,
		TokenType:    tokenType,
		RefreshToken: f.refreshToken,
		Expiry:       expiry,
	}
}
