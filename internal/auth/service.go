// Package auth exposes e-mail/password login, registration and the profile
// of the bearer token.
package auth

import (
	"context"

	"inreader-backend/internal/shared/apperr"
	sharedauth "inreader-backend/internal/shared/auth"
	"inreader-backend/internal/shared/telemetry"
	"inreader-backend/internal/users"
)

// TokenSigner issues access tokens.
type TokenSigner interface {
	Sign(userID, email string) (string, error)
}

// Service authenticates users and issues tokens.
type Service struct {
	Users  *users.Service
	Tokens TokenSigner
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	Username    string `json:"username"`
}

// Profile is the identity carried by an access token.
type Profile struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
}

// Login checks the credentials and signs a token for the user.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.Users.Authenticate(ctx, email, password)
	if err != nil {
		telemetry.Warn("auth.login_failed", map[string]any{"error": err})
		return LoginResult{}, err
	}
	token, err := s.Tokens.Sign(u.ID, u.Email)
	if err != nil {
		return LoginResult{}, apperr.Internal(err)
	}
	telemetry.Info("auth.login", map[string]any{"user_id": u.ID})
	return LoginResult{AccessToken: token, Username: u.Name}, nil
}

// Register creates an account.
func (s *Service) Register(ctx context.Context, req users.CreateRequest) (users.User, error) {
	return s.Users.Create(ctx, req)
}

// ProfileFromClaims maps verified claims to the profile shape.
func ProfileFromClaims(c *sharedauth.Claims) Profile {
	p := Profile{Sub: c.Subject, Email: c.Email}
	if c.IssuedAt != nil {
		p.Iat = c.IssuedAt.Unix()
	}
	if c.ExpiresAt != nil {
		p.Exp = c.ExpiresAt.Unix()
	}
	return p
}
