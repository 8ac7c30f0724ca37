// Package recent maintains the bounded, deduplicated, most-recent-first list
// of address strings a user has interacted with. Every function is a pure
// state transition over an explicit list; nothing here holds state.
package recent

import (
	"github.com/utafrali/addressbook/internal/domain"
)

// Capacity is the maximum number of entries a recent-search list holds.
const Capacity = 5

// RecordSearch returns a new list with entry at the front. Any existing entry
// with exactly the same FullAddress (case-sensitive, no normalization) is
// dropped first and the result is truncated to Capacity. existing is never
// modified.
func RecordSearch(existing []domain.RecentSearchEntry, entry domain.RecentSearchEntry) []domain.RecentSearchEntry {
	out := make([]domain.RecentSearchEntry, 0, Capacity)
	out = append(out, entry)
	for _, e := range existing {
		if len(out) == Capacity {
			break
		}
		if e.FullAddress == entry.FullAddress {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ListRecent returns the list as-is; it is already ordered most recent first.
func ListRecent(list []domain.RecentSearchEntry) []domain.RecentSearchEntry {
	return list
}

// Seed builds a list from entries ordered newest first, applying the same
// dedup and capacity rules as RecordSearch. Use it to rebuild a session's list
// from a collaborator such as the address book.
func Seed(newestFirst []domain.RecentSearchEntry) []domain.RecentSearchEntry {
	var list []domain.RecentSearchEntry
	for i := len(newestFirst) - 1; i >= 0; i-- {
		list = RecordSearch(list, newestFirst[i])
	}
	if list == nil {
		return []domain.RecentSearchEntry{}
	}
	return list
}

// FromAddresses seeds a list from saved addresses in insertion order (oldest
// first), so the most recently saved address ends up at the front.
func FromAddresses(addresses []domain.Address) []domain.RecentSearchEntry {
	var list []domain.RecentSearchEntry
	for _, a := range addresses {
		list = RecordSearch(list, domain.RecentSearchEntry{
			FullAddress: a.FullAddress,
			SearchedAt:  a.CreatedAt,
		})
	}
	if list == nil {
		return []domain.RecentSearchEntry{}
	}
	return list
}
