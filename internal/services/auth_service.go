package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"marketplace/internal/auth"
	"marketplace/internal/domain"
	"marketplace/internal/repos"
	"marketplace/internal/validate"
)

type AuthService struct {
	Users  *repos.UserRepo
	Tokens *auth.Tokens
}

func NewAuthService(users *repos.UserRepo, tokens *auth.Tokens) *AuthService {
	return &AuthService{Users: users, Tokens: tokens}
}

type Login struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Login checks the password, binds sid to the user and issues a token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, sid, email, password string) (Login, error) {
	email, ok := validate.Email(email)
	if !ok || !validate.Password(password) {
		return Login{}, domain.ErrBadCreds
	}
	u, err := s.Users.ByEmail(ctx, email)
	if errors.Is(err, repos.ErrNotFound) {
		return Login{}, domain.ErrBadCreds
	}
	if err != nil {
		return Login{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return Login{}, domain.ErrBadCreds
	}
	if sid != "" {
		if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
			return Login{}, err
		}
	}
	tok, exp, err := s.Tokens.Issue(u)
	if err != nil {
		return Login{}, err
	}
	return Login{User: u, Token: tok, ExpiresAt: exp}, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

// SessionUser resolves the user bound to sid.
func (s *AuthService) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	u, err := s.Users.SessionUser(ctx, sid)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	return u, err
}

// TokenUser resolves a bearer token to its user. The role is read from the
// stored user, not from the token.
func (s *AuthService) TokenUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	u, err := s.Users.ByID(ctx, claims.Subject)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	return u, err
}
