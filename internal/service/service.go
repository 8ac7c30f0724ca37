package service

import (
	"context"
	"errors"
	"time"

	"github.com/utafrali/addressbook/internal/domain"
	apperrors "github.com/utafrali/addressbook/pkg/errors"
	"github.com/utafrali/addressbook/pkg/validator"
)

// EventPublisher publishes domain events. Publication failures never fail
// the operation that produced them.
type EventPublisher interface {
	PublishIdentityRegistered(ctx context.Context, identity *domain.Identity) error
	PublishAddressAdded(ctx context.Context, address *domain.Address) error
}

// TokenIssuer issues session tokens bound to an identity reference.
type TokenIssuer interface {
	Issue(identityRef string) (token string, expiresAt time.Time, err error)
}

// storageError passes typed application errors through and turns anything
// else coming out of a repository into a PERSISTENCE_FAILURE.
func storageError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.PersistenceFailure(err)
}

// validate runs struct validation and converts failures into the
// VALIDATION_ERROR kind.
func validate(input any) error {
	err := validator.Validate(input)
	if err == nil {
		return nil
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return valErr.AppError()
	}
	return apperrors.Internal(err)
}
