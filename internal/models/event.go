package models

import "time"

type EventKind string

const (
	EventRegistered     EventKind = "registered"
	EventVerified       EventKind = "verified"
	EventCodeSent       EventKind = "code_sent"
	EventDeliveryFailed EventKind = "delivery_failed"
	EventPasswordFailed EventKind = "password_failed"
	EventLocked         EventKind = "locked"
	EventLoginConfirmed EventKind = "login_confirmed"
	EventLoginCompleted EventKind = "login_completed"
	EventLogout         EventKind = "logout"
	EventDeactivated    EventKind = "deactivated"
)

// AuthEvent is one row of the account audit trail.
type AuthEvent struct {
	ID        string
	UserID    int64
	Email     string
	Kind      EventKind
	Detail    string
	CreatedAt time.Time
}
