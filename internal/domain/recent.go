package domain

import (
	"time"
)

// RecentSearchEntry is an address string the user recently picked, saved or
// searched for.
type RecentSearchEntry struct {
	FullAddress string    `json:"fullAddress"`
	SearchedAt  time.Time `json:"searched_at"`
}
