package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/addressbook/internal/domain"
	"github.com/utafrali/addressbook/internal/recent"
	"github.com/utafrali/addressbook/internal/repository"
)

// RecordSearchInput is a single selection of an address string.
type RecordSearchInput struct {
	FullAddress string `json:"fullAddress" validate:"required"`
}

// RecentSearches keeps each identity's recent-search history in a
// repository, applying the tracker rules on every write.
type RecentSearches struct {
	repo   repository.RecentSearchRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewRecentSearches creates a new recent-search service.
func NewRecentSearches(repo repository.RecentSearchRepository, logger *slog.Logger) *RecentSearches {
	return &RecentSearches{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Record moves input.FullAddress to the front of the identity's history and
// returns the updated list.
func (s *RecentSearches) Record(ctx context.Context, identityRef string, input RecordSearchInput) ([]domain.RecentSearchEntry, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	entry := domain.RecentSearchEntry{
		FullAddress: input.FullAddress,
		SearchedAt:  s.now().UTC(),
	}
	list, err := s.repo.Update(ctx, identityRef, func(existing []domain.RecentSearchEntry) []domain.RecentSearchEntry {
		return recent.RecordSearch(existing, entry)
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.logger.DebugContext(ctx, "recent search recorded",
		slog.String("user_id", identityRef),
		slog.Int("entries", len(list)),
	)
	return list, nil
}

// List returns the identity's history, most recent first.
func (s *RecentSearches) List(ctx context.Context, identityRef string) ([]domain.RecentSearchEntry, error) {
	list, err := s.repo.Get(ctx, identityRef)
	if err != nil {
		return nil, storageError(err)
	}
	return recent.ListRecent(recent.Seed(list)), nil
}

// Clear drops the identity's history.
func (s *RecentSearches) Clear(ctx context.Context, identityRef string) error {
	if err := s.repo.Delete(ctx, identityRef); err != nil {
		return storageError(err)
	}
	return nil
}
