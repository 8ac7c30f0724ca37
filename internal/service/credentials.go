package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/addressbook/internal/domain"
	"github.com/utafrali/addressbook/internal/repository"
	apperrors "github.com/utafrali/addressbook/pkg/errors"
)

// DefaultBcryptCost is the bcrypt work factor used when none is configured.
const DefaultBcryptCost = 12

// CredentialsInput carries a username and password pair.
type CredentialsInput struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// CredentialStore owns identity records and verifies credentials.
type CredentialStore struct {
	identities repository.IdentityRepository
	events     EventPublisher
	logger     *slog.Logger
	cost       int
	now        func() time.Time

	// dummyHash is compared against when the username is unknown so the
	// work done does not depend on whether the identity exists.
	dummyHash []byte
}

// NewCredentialStore creates a credential store hashing with the given
// bcrypt cost.
func NewCredentialStore(
	identities repository.IdentityRepository,
	events EventPublisher,
	cost int,
	logger *slog.Logger,
) (*CredentialStore, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("addressbook-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &CredentialStore{
		identities: identities,
		events:     events,
		logger:     logger,
		cost:       cost,
		now:        time.Now,
		dummyHash:  dummy,
	}, nil
}

// Register creates a new identity. Uniqueness is decided by the store: of two
// concurrent registrations for one username exactly one succeeds and the
// other gets DUPLICATE_IDENTITY.
func (s *CredentialStore) Register(ctx context.Context, input CredentialsInput) (*domain.Identity, error) {
	input.Username = strings.TrimSpace(input.Username)
	if err := validate(input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperrors.Validation(map[string]string{"password": "must be at most 72 bytes"})
		}
		return nil, apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}

	identity := &domain.Identity{
		ID:           uuid.New().String(),
		Username:     input.Username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, storageError(err)
	}

	if err := s.events.PublishIdentityRegistered(ctx, identity); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish identity.registered event",
			slog.String("user_id", identity.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "identity registered",
		slog.String("user_id", identity.ID),
		slog.String("username", identity.Username),
	)

	return identity, nil
}

// VerifyCredentials returns the identity for a matching username and
// password. Unknown usernames, wrong passwords and empty input all produce
// the same AUTHENTICATION_FAILED error.
func (s *CredentialStore) VerifyCredentials(ctx context.Context, input CredentialsInput) (*domain.Identity, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, apperrors.AuthenticationFailure()
	}

	identity, err := s.identities.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, storageError(err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(input.Password))
		s.logger.DebugContext(ctx, "sign-in rejected", slog.String("reason", "unknown username"))
		return nil, apperrors.AuthenticationFailure()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.DebugContext(ctx, "sign-in rejected",
			slog.String("reason", "password mismatch"),
			slog.String("user_id", identity.ID),
		)
		return nil, apperrors.AuthenticationFailure()
	}

	return identity, nil
}
