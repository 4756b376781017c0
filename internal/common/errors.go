package common

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// repository specific errors
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// credential errors
	ErrInvalidPassword = errors.New("invalid password")
	ErrTooManyAttempts = errors.New("too many failed attempts")
	ErrLocked          = errors.New("account locked")
	ErrDeactivated     = errors.New("account deactivated")
	ErrUnverified      = errors.New("email not verified")

	// verification code errors
	ErrCodeNotFound      = errors.New("no verification code pending")
	ErrCodeExpired       = errors.New("verification code expired")
	ErrCodeMismatch      = errors.New("verification code mismatch")
	ErrAlreadyVerified   = errors.New("email already verified")
	ErrDeliveryFailed    = errors.New("verification code delivery failed")
	ErrLoginNotConfirmed = errors.New("login code not confirmed")

	// session errors
	ErrNoSession = errors.New("no valid session")

	// service specific errors
	ErrStore             = errors.New("store error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrProtectedPlaylist = errors.New("playlist is protected")
)

// InvalidPasswordError reports a wrong password together with the number of
// attempts left before the account is locked.
type InvalidPasswordError struct {
	Remaining int
}

func (e *InvalidPasswordError) Error() string {
	return fmt.Sprintf("invalid password, %d attempts left", e.Remaining)
}

func (e *InvalidPasswordError) Unwrap() error { return ErrInvalidPassword }

// LockedError reports an active lockout.
type LockedError struct {
	Until     time.Time
	Remaining time.Duration
}

// Minutes returns the remaining lockout rounded up to whole minutes.
func (e *LockedError) Minutes() int {
	return int(math.Ceil(e.Remaining.Minutes()))
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked for %d more minutes", e.Minutes())
}

func (e *LockedError) Unwrap() error { return ErrLocked }
