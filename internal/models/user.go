// Package models defines the account records persisted by the credential store
// and the values returned to the presentation layer.
package models

import "time"

// Role grants privileges. Admins go through the same registration path as
// everyone else.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// CodePurpose tells which protocol step a pending verification code belongs to.
type CodePurpose string

const (
	PurposeRegistration CodePurpose = "registration"
	PurposeLogin        CodePurpose = "login"
)

// PendingCode is the at-most-one outstanding verification code of a user.
type PendingCode struct {
	Code      string
	Purpose   CodePurpose
	ExpiresAt time.Time
	// Misses counts wrong submissions of this code.
	Misses int
}

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	Salt         string
	Role         Role
	IsVerified   bool
	Pending      *PendingCode
	CreatedAt    time.Time
	IsActive     bool
	LastLogin    *time.Time
	// LoginAttempts counts consecutive failed password checks.
	LoginAttempts int
	LockedUntil   *time.Time
	AvatarPath    string
}

// LockedAt reports whether the lockout is still in force at now.
// A lockout in the past has no effect.
func (u *User) LockedAt(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Profile is the public view of a user handed to callers after login.
type Profile struct {
	ID         int64
	Email      string
	Username   string
	Role       Role
	DeviceInfo string
	AvatarPath string
}
