// Package session holds the per-client state a caller of the address book
// keeps between requests: the bearer token and the recent-search list.
package session

import (
	"sync"
	"time"

	"github.com/utafrali/addressbook/internal/domain"
	"github.com/utafrali/addressbook/internal/recent"
)

// State is an explicit, owner-held session. The zero value is an empty
// session ready for use. All methods are safe for concurrent use.
type State struct {
	mu     sync.RWMutex
	token  string
	recent []domain.RecentSearchEntry
	now    func() time.Time
}

// Option configures a State.
type Option func(*State)

// WithClock overrides the time source used to stamp recorded searches.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		s.now = now
	}
}

// New returns an empty session.
func New(opts ...Option) *State {
	s := &State{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *State) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// Token returns the stored bearer token and whether one is set.
func (s *State) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// SetToken stores the bearer token returned by sign-in.
func (s *State) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// ClearToken forgets the bearer token.
func (s *State) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// Authorization returns the Authorization header value for the stored token,
// or "" if the session is not signed in.
func (s *State) Authorization() string {
	token, ok := s.Token()
	if !ok {
		return ""
	}
	return "Bearer " + token
}

// Recent returns a copy of the recent-search list, most recent first.
func (s *State) Recent() []domain.RecentSearchEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RecentSearchEntry, len(s.recent))
	copy(out, s.recent)
	return recent.ListRecent(out)
}

// RecordSearch records a selection of fullAddress and returns the new list.
func (s *State) RecordSearch(fullAddress string) []domain.RecentSearchEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = recent.RecordSearch(s.recent, domain.RecentSearchEntry{
		FullAddress: fullAddress,
		SearchedAt:  s.clock(),
	})
	out := make([]domain.RecentSearchEntry, len(s.recent))
	copy(out, s.recent)
	return out
}

// SetRecent replaces the recent-search list, for example with a list rebuilt
// from server-side history. The list is normalized with the tracker rules.
func (s *State) SetRecent(list []domain.RecentSearchEntry) {
	seeded := recent.Seed(list)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = seeded
}

// SeedFromAddresses rebuilds the recent-search list from a saved address
// book, oldest first, so the newest address ends up at the front.
func (s *State) SeedFromAddresses(book []domain.Address) {
	seeded := recent.FromAddresses(book)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = seeded
}

// ClearRecent empties the recent-search list.
func (s *State) ClearRecent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = nil
}

// Clear signs the session out and drops its recent-search list.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.recent = nil
}
