package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProfileNotFound    = errors.New("no profile record for user")
)

// Service owns signup, login and role resolution. Privilege is always read from
// the stored profile at call time; token claims are never trusted for it.
type Service struct {
	repo   UserRepository
	tokens *TokenManager
	logger *zap.Logger
}

func NewService(repo UserRepository, tokens *TokenManager, logger *zap.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

func (s *Service) Register(ctx context.Context, req SignupRequest) error {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return errors.New("a valid email is required")
	}
	if len(req.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return err
	}

	// New accounts are never privileged; isHOD is granted out-of-band.
	user := &User{Email: email, PasswordHash: hash}
	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Info("user registered", zap.String("email", email))
	return nil
}

func (s *Service) Authenticate(ctx context.Context, cred Credential) (string, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(cred.Email)))
	if err != nil {
		return "", fmt.Errorf("looking up user: %w", err)
	}
	if user == nil || !CheckPasswordHash(cred.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}

// ResolveRole maps a user identity to the isHOD privilege. A missing profile is
// reported as ErrProfileNotFound alongside the non-privileged default, so
// callers can log the diagnostic and proceed unprivileged.
func (s *Service) ResolveRole(ctx context.Context, userID string) (bool, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("fetching profile %s: %w", userID, err)
	}
	if user == nil {
		return false, ErrProfileNotFound
	}
	return user.IsHOD, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrProfileNotFound
	}
	return user, nil
}
