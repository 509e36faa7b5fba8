package domain

import "time"

// Claims is the verified payload of a bearer token. It lives for a single request.
type Claims struct {
	SubjectID string
	Role      Role
	Username  string
	TenantID  *string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
