package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/addressbook/internal/domain"
	"github.com/utafrali/addressbook/internal/repository"
)

// AddAddressInput holds the four fields every saved address must carry.
type AddAddressInput struct {
	House       string `json:"house" validate:"required"`
	Apartment   string `json:"apartment" validate:"required"`
	Category    string `json:"category" validate:"required,max=100"`
	FullAddress string `json:"fullAddress" validate:"required"`
}

// SearchRecorder records an address selection in recent-search history.
type SearchRecorder interface {
	Record(ctx context.Context, identityRef string, input RecordSearchInput) ([]domain.RecentSearchEntry, error)
}

// AddressBook manages each identity's ordered collection of addresses.
type AddressBook struct {
	addresses repository.AddressRepository
	searches  SearchRecorder
	events    EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewAddressBook creates a new address book service.
func NewAddressBook(
	addresses repository.AddressRepository,
	searches SearchRecorder,
	events EventPublisher,
	logger *slog.Logger,
) *AddressBook {
	return &AddressBook{
		addresses: addresses,
		searches:  searches,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// AddAddress appends an address to identityRef's book and returns the whole
// book in insertion order. Every missing field is reported at once.
func (b *AddressBook) AddAddress(ctx context.Context, identityRef string, input AddAddressInput) ([]domain.Address, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	address := &domain.Address{
		ID:          uuid.New().String(),
		UserID:      identityRef,
		House:       input.House,
		Apartment:   input.Apartment,
		Category:    input.Category,
		FullAddress: input.FullAddress,
		CreatedAt:   b.now().UTC(),
	}

	list, err := b.addresses.Append(ctx, address)
	if err != nil {
		return nil, storageError(err)
	}

	if _, err := b.searches.Record(ctx, identityRef, RecordSearchInput{FullAddress: address.FullAddress}); err != nil {
		b.logger.WarnContext(ctx, "failed to record saved address as recent search",
			slog.String("user_id", identityRef),
			slog.String("error", err.Error()),
		)
	}

	if err := b.events.PublishAddressAdded(ctx, address); err != nil {
		b.logger.ErrorContext(ctx, "failed to publish address.added event",
			slog.String("user_id", identityRef),
			slog.String("address_id", address.ID),
			slog.String("error", err.Error()),
		)
	}

	b.logger.InfoContext(ctx, "address added",
		slog.String("user_id", identityRef),
		slog.String("address_id", address.ID),
		slog.Int("count", len(list)),
	)

	return list, nil
}

// ListAddresses returns identityRef's addresses oldest first. The result is
// never nil.
func (b *AddressBook) ListAddresses(ctx context.Context, identityRef string) ([]domain.Address, error) {
	list, err := b.addresses.ListByUserID(ctx, identityRef)
	if err != nil {
		return nil, storageError(err)
	}
	if list == nil {
		list = []domain.Address{}
	}
	return list, nil
}
