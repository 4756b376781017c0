package models

import "time"

type Session struct {
	ID           int64
	UserID       int64
	Token        string
	DeviceInfo   string
	IPAddress    string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	LastActivity time.Time
}

// SessionWithUser is a session joined to the owner fields needed for validation.
type SessionWithUser struct {
	Session
	Email      string
	Username   string
	Role       Role
	AvatarPath string
	IsActive   bool
}
