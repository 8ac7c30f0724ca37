package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/addressbook/internal/domain"
	apperrors "github.com/utafrali/addressbook/pkg/errors"
)

// AuthService turns verified credentials into session tokens.
type AuthService struct {
	credentials *CredentialStore
	tokens      TokenIssuer
	logger      *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(credentials *CredentialStore, tokens TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		credentials: credentials,
		tokens:      tokens,
		logger:      logger,
	}
}

// SignUp registers a new identity.
func (s *AuthService) SignUp(ctx context.Context, input CredentialsInput) (*domain.Identity, error) {
	return s.credentials.Register(ctx, input)
}

// Authenticate verifies credentials and issues a session token for the
// matching identity.
func (s *AuthService) Authenticate(ctx context.Context, input CredentialsInput) (*domain.SessionToken, error) {
	identity, err := s.credentials.VerifyCredentials(ctx, input)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(identity.ID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("issue token: %w", err))
	}

	s.logger.InfoContext(ctx, "identity signed in", slog.String("user_id", identity.ID))

	return &domain.SessionToken{Token: token, ExpiresAt: expiresAt}, nil
}
