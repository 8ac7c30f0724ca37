package repository

import (
	"context"

	"github.com/utafrali/addressbook/internal/domain"
)

// IdentityRepository defines persistence for registered identities.
type IdentityRepository interface {
	// Create inserts a new identity. A taken username yields a
	// DUPLICATE_IDENTITY error from the store's uniqueness constraint.
	Create(ctx context.Context, identity *domain.Identity) error

	// GetByID retrieves an identity by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Identity, error)

	// GetByUsername retrieves an identity by its exact username.
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)
}

// AddressRepository defines persistence for per-identity address books.
type AddressRepository interface {
	// Append atomically adds address to its owner's book and returns the
	// owner's full book in insertion order. Concurrent appends for the same
	// owner are serialized and none is lost.
	Append(ctx context.Context, address *domain.Address) ([]domain.Address, error)

	// ListByUserID returns every address owned by userID in insertion order.
	// It fails with USER_NOT_FOUND if the identity does not exist.
	ListByUserID(ctx context.Context, userID string) ([]domain.Address, error)
}

// RecentSearchRepository defines persistence for per-identity recent-search
// history.
type RecentSearchRepository interface {
	// Get returns the stored list, most recent first. A missing list is empty.
	Get(ctx context.Context, userID string) ([]domain.RecentSearchEntry, error)

	// Update applies fn to the stored list and stores the result atomically
	// with respect to other updates for the same user.
	Update(ctx context.Context, userID string, fn func([]domain.RecentSearchEntry) []domain.RecentSearchEntry) ([]domain.RecentSearchEntry, error)

	// Delete removes the stored list.
	Delete(ctx context.Context, userID string) error
}
