package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/addressbook/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Mock identity repository ---

type mockIdentityRepository struct {
	mock.Mock
}

func (m *mockIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockIdentityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *mockIdentityRepository) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

// --- Mock address repository ---

type mockAddressRepository struct {
	mock.Mock
}

func (m *mockAddressRepository) Append(ctx context.Context, address *domain.Address) ([]domain.Address, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockAddressRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

// --- Mock recent search repository ---

type mockRecentRepository struct {
	mock.Mock
}

func (m *mockRecentRepository) Get(ctx context.Context, userID string) ([]domain.RecentSearchEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecentSearchEntry), args.Error(1)
}

func (m *mockRecentRepository) Update(ctx context.Context, userID string, fn func([]domain.RecentSearchEntry) []domain.RecentSearchEntry) ([]domain.RecentSearchEntry, error) {
	args := m.Called(ctx, userID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	existing := args.Get(0).([]domain.RecentSearchEntry)
	return fn(existing), args.Error(1)
}

func (m *mockRecentRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock event publisher ---

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishIdentityRegistered(ctx context.Context, identity *domain.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockEventPublisher) PublishAddressAdded(ctx context.Context, address *domain.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

// --- Mock search recorder ---

type mockSearchRecorder struct {
	mock.Mock
}

func (m *mockSearchRecorder) Record(ctx context.Context, identityRef string, input RecordSearchInput) ([]domain.RecentSearchEntry, error) {
	args := m.Called(ctx, identityRef, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecentSearchEntry), args.Error(1)
}

// --- Mock token issuer ---

type mockTokenIssuer struct {
	mock.Mock
}

func (m *mockTokenIssuer) Issue(identityRef string) (string, time.Time, error) {
	args := m.Called(identityRef)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// memoryAddressRepository keeps books in memory so concurrent appends can be
// checked end to end.
type memoryAddressRepository struct {
	mu    sync.Mutex
	books map[string][]domain.Address
}

func newMemoryAddressRepository() *memoryAddressRepository {
	return &memoryAddressRepository{books: make(map[string][]domain.Address)}
}

func (r *memoryAddressRepository) Append(_ context.Context, a *domain.Address) ([]domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books[a.UserID] = append(r.books[a.UserID], *a)
	out := make([]domain.Address, len(r.books[a.UserID]))
	copy(out, r.books[a.UserID])
	return out, nil
}

func (r *memoryAddressRepository) ListByUserID(_ context.Context, userID string) ([]domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Address, len(r.books[userID]))
	copy(out, r.books[userID])
	return out, nil
}
