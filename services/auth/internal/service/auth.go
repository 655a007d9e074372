package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	"github.com/Skotchmaster/sport_shop/pkg/tokens"
	"github.com/Skotchmaster/sport_shop/services/auth/internal/hash"
	"github.com/Skotchmaster/sport_shop/services/auth/internal/models"
	"github.com/Skotchmaster/sport_shop/services/auth/internal/repo"
	"github.com/Skotchmaster/sport_shop/services/auth/internal/transport"
)

const (
	DefaultTokenTTL = 24 * time.Hour

	minPassword = 8
	// bcrypt only looks at the first 72 bytes.
	maxPassword = 72
)

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	TokenTTL  time.Duration
	Now       func() time.Time
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	var fields []apperr.FieldError
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "Invalid email address"})
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "Name must be between 2 and 100 characters"})
	}
	switch {
	case len(req.Password) < minPassword:
		fields = append(fields, apperr.FieldError{Field: "password", Message: "Password must be at least 8 characters"})
	case len(req.Password) > maxPassword:
		fields = append(fields, apperr.FieldError{Field: "password", Message: "Password must not exceed 72 bytes"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	u := &models.User{Email: email, Name: name, PasswordHash: pwHash, Role: models.RoleUser}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login answers with the same error for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*transport.LoginResult, error) {
	invalid := apperr.New(apperr.ErrUnauthenticated, "Invalid email or password")

	u, err := s.Repo.UserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, req.Password) {
		return nil, invalid
	}

	exp := s.now().Add(s.ttl())
	token, err := tokens.NewAccessToken(u.ID, u.Role, exp, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &transport.LoginResult{User: *u, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) ttl() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return DefaultTokenTTL
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EnsureAdmin creates the bootstrap administrator, or promotes the account when the
// email is already registered. The password of an existing account is left alone.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.Repo.UserByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		u, err = s.Register(ctx, transport.RegisterRequest{Email: email, Name: "Administrator", Password: password})
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if u.Role != models.RoleAdmin {
		if err := s.Repo.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
		u.Role = models.RoleAdmin
	}
	return u, nil
}
