package domain

import (
	"time"
)

// Suggested address categories. The store accepts any non-empty label.
const (
	CategoryHome          = "Home"
	CategoryOffice        = "Office"
	CategoryFriendsFamily = "Friends & Family"
)

// Categories returns the suggested address categories in display order.
func Categories() []string {
	return []string{CategoryHome, CategoryOffice, CategoryFriendsFamily}
}

// Address is a saved delivery address owned by exactly one identity.
// FullAddress is an opaque display string; no geometry is stored.
type Address struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	House       string    `json:"house"`
	Apartment   string    `json:"apartment"`
	Category    string    `json:"category"`
	FullAddress string    `json:"fullAddress"`
	CreatedAt   time.Time `json:"created_at"`
}
