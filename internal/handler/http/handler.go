package http

import (
	"context"

	"github.com/utafrali/addressbook/internal/domain"
	"github.com/utafrali/addressbook/internal/service"
)

// Authenticator registers identities and signs them in.
type Authenticator interface {
	SignUp(ctx context.Context, input service.CredentialsInput) (*domain.Identity, error)
	Authenticate(ctx context.Context, input service.CredentialsInput) (*domain.SessionToken, error)
}

// AddressBook stores and lists an identity's addresses.
type AddressBook interface {
	AddAddress(ctx context.Context, identityRef string, input service.AddAddressInput) ([]domain.Address, error)
	ListAddresses(ctx context.Context, identityRef string) ([]domain.Address, error)
}

// RecentSearches records and lists an identity's recent searches.
type RecentSearches interface {
	Record(ctx context.Context, identityRef string, input service.RecordSearchInput) ([]domain.RecentSearchEntry, error)
	List(ctx context.Context, identityRef string) ([]domain.RecentSearchEntry, error)
	Clear(ctx context.Context, identityRef string) error
}
