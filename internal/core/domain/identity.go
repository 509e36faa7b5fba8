package domain

import (
	"strings"
	"time"
)

// Identity models a registered principal.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	DisplayName  string    `json:"displayName,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	TenantID     *string   `json:"tenantId,omitempty"` // nil = platform-level identity
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DeriveDisplayName returns "first last" when both names are present, empty otherwise.
func DeriveDisplayName(first, last string) string {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	if first == "" || last == "" {
		return ""
	}
	return first + " " + last
}
