package domain

import "time"

// AuthEventKind classifies an audit entry.
type AuthEventKind string

const (
	EventRegistered     AuthEventKind = "registered"
	EventLoginSucceeded AuthEventKind = "login_succeeded"
	EventLoginFailed    AuthEventKind = "login_failed"
	EventLoginThrottled AuthEventKind = "login_throttled"
)

// AuthEvent records a security-relevant action taken by or against an identity.
type AuthEvent struct {
	ID        string
	Kind      AuthEventKind
	SubjectID string // empty when the identity could not be resolved
	Email     string
	Timestamp time.Time
}
