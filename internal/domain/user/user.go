package user

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// Sentinel errors for user and address lookups.
var (
	ErrNotFound        = errors.New("user not found")
	ErrAddressNotFound = errors.New("address not found")
)

// Role controls access to the admin surface.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Address is a shipping address embedded in the user document. Addresses
// added through older storefront builds were stored without an ID, so ID may
// be empty; see ResolveAddress.
type Address struct {
	ID         string `json:"id,omitempty"`
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// User is the owning identity for carts and orders.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	Addresses []Address
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ResolveAddress finds an address on the user by stored ID, falling back to
// the positional pseudo-id form "address-<n>" for addresses that were
// persisted without a stable identifier. The fallback is a compatibility
// shim for embedded, unkeyed address sub-documents and must stay.
func (u *User) ResolveAddress(addressID string) (*Address, error) {
	for i := range u.Addresses {
		if u.Addresses[i].ID != "" && u.Addresses[i].ID == addressID {
			return &u.Addresses[i], nil
		}
	}

	if idx, ok := parsePositionalID(addressID); ok && idx < len(u.Addresses) {
		return &u.Addresses[idx], nil
	}

	return nil, ErrAddressNotFound
}

// parsePositionalID parses "address-<n>" into n. Negative indexes and
// malformed suffixes are rejected.
func parsePositionalID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "address-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Repository defines lookups against the user collection.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
