package recent

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/addressbook/internal/domain"
)

func entries(addrs ...string) []domain.RecentSearchEntry {
	out := make([]domain.RecentSearchEntry, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, domain.RecentSearchEntry{FullAddress: a})
	}
	return out
}

func addresses(list []domain.RecentSearchEntry) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.FullAddress)
	}
	return out
}

func TestRecordSearch_EmptyList(t *testing.T) {
	got := RecordSearch(nil, domain.RecentSearchEntry{FullAddress: "A"})
	assert.Equal(t, []string{"A"}, addresses(got))
}

func TestRecordSearch_MovesExistingToFront(t *testing.T) {
	got := RecordSearch(entries("B", "A"), domain.RecentSearchEntry{FullAddress: "A"})
	assert.Equal(t, []string{"A", "B"}, addresses(got))
}

func TestRecordSearch_DropsOldestAtCapacity(t *testing.T) {
	got := RecordSearch(entries("E", "D", "C", "B", "A"), domain.RecentSearchEntry{FullAddress: "F"})
	assert.Equal(t, []string{"F", "E", "D", "C", "B"}, addresses(got))
}

func TestRecordSearch_DuplicateAtCapacityKeepsLength(t *testing.T) {
	got := RecordSearch(entries("E", "D", "C", "B", "A"), domain.RecentSearchEntry{FullAddress: "A"})
	assert.Equal(t, []string{"A", "E", "D", "C", "B"}, addresses(got))
}

func TestRecordSearch_CaseSensitive(t *testing.T) {
	got := RecordSearch(entries("12 a st"), domain.RecentSearchEntry{FullAddress: "12 A St"})
	assert.Equal(t, []string{"12 A St", "12 a st"}, addresses(got))
}

func TestRecordSearch_NoWhitespaceNormalization(t *testing.T) {
	got := RecordSearch(entries("A "), domain.RecentSearchEntry{FullAddress: "A"})
	assert.Len(t, got, 2)
}

func TestRecordSearch_DoesNotMutateInput(t *testing.T) {
	existing := entries("C", "B", "A")
	snapshot := append([]domain.RecentSearchEntry(nil), existing...)

	_ = RecordSearch(existing, domain.RecentSearchEntry{FullAddress: "B"})

	assert.Equal(t, snapshot, existing)
}

func TestRecordSearch_KeepsNewEntryTimestamp(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := old.Add(time.Hour)
	existing := []domain.RecentSearchEntry{{FullAddress: "A", SearchedAt: old}}

	got := RecordSearch(existing, domain.RecentSearchEntry{FullAddress: "A", SearchedAt: now})

	require.Len(t, got, 1)
	assert.Equal(t, now, got[0].SearchedAt)
}

func TestRecordSearch_OversizedInputIsTruncated(t *testing.T) {
	long := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		long = append(long, fmt.Sprintf("addr-%d", i))
	}

	got := RecordSearch(entries(long...), domain.RecentSearchEntry{FullAddress: "new"})

	assert.Len(t, got, Capacity)
	assert.Equal(t, []string{"new", "addr-0", "addr-1", "addr-2", "addr-3"}, addresses(got))
}

func TestRecordSearch_InvariantsOverManyEvents(t *testing.T) {
	var list []domain.RecentSearchEntry
	picks := []string{"A", "B", "A", "C", "D", "E", "F", "B", "B", "G", "A", "H", "C"}

	for _, p := range picks {
		list = RecordSearch(list, domain.RecentSearchEntry{FullAddress: p})

		assert.LessOrEqual(t, len(list), Capacity)
		assert.Equal(t, p, list[0].FullAddress)

		seen := make(map[string]bool, len(list))
		for _, e := range list {
			assert.False(t, seen[e.FullAddress], "duplicate %q in %v", e.FullAddress, addresses(list))
			seen[e.FullAddress] = true
		}
	}

	assert.Equal(t, []string{"C", "H", "A", "G", "B"}, addresses(list))
}

func TestListRecent_ReturnsListAsIs(t *testing.T) {
	list := entries("B", "A")
	assert.Equal(t, list, ListRecent(list))
}

func TestSeed_AppliesCapacityAndDedup(t *testing.T) {
	got := Seed(entries("A", "B", "A", "C", "D", "E", "F"))
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, addresses(got))
}

func TestSeed_Empty(t *testing.T) {
	got := Seed(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFromAddresses_NewestSavedFirst(t *testing.T) {
	saved := []domain.Address{
		{FullAddress: "1 First St"},
		{FullAddress: "2 Second St"},
		{FullAddress: "1 First St"},
		{FullAddress: "3 Third St"},
	}

	got := FromAddresses(saved)

	assert.Equal(t, []string{"3 Third St", "1 First St", "2 Second St"}, addresses(got))
}
