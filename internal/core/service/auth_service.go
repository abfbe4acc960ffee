package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookly/event-booking/internal/core/domain"
	"github.com/bookly/event-booking/internal/core/ports"
)

// passwordCost is the bcrypt work factor for stored password hashes.
const passwordCost = 10

// AuthOptions tunes registration policy.
type AuthOptions struct {
	// AllowAdminSignup permits clients to register themselves with the admin role.
	AllowAdminSignup bool
}

// AuthService implements registration and login.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenIssuer
	opts   AuthOptions
	log    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenIssuer, opts AuthOptions, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, opts: opts, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) error {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	role := strings.TrimSpace(in.Role)
	if name == "" || email == "" || in.Password == "" || role == "" {
		return domain.NewValidationError()
	}
	if !domain.ValidRole(role) {
		return domain.NewValidationError("role must be one of: user admin")
	}
	if role == domain.RoleAdmin && !s.opts.AllowAdminSignup {
		return domain.ErrForbidden
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return &ports.LoginResult{Token: token, Role: user.Role}, nil
}

// EnsureAdmin creates an admin account for email unless one is already
// registered. It reports whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, domain.NewValidationError("admin email and password are required")
	}
	if name == "" {
		name = "Administrator"
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != domain.RoleAdmin {
			s.log.Warn().Str("email", email).Str("role", existing.Role).Msg("bootstrap admin email belongs to a non-admin account")
		}
		return false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}

	_, err = s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		// Another instance won the race.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	return true, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.NewValidationError("password must be at most 72 bytes")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
