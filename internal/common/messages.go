package common

import (
	"errors"
	"fmt"
)

// UserMessage converts an error returned by the account core into the text
// shown to the user. A nil error yields an empty string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var locked *LockedError
	if errors.As(err, &locked) {
		return fmt.Sprintf("Account is locked. Try again in %d min.", locked.Minutes())
	}
	var invalid *InvalidPasswordError
	if errors.As(err, &invalid) {
		return fmt.Sprintf("Wrong password. Attempts left: %d", invalid.Remaining)
	}

	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return "A user with this email already exists"
	case errors.Is(err, ErrTooManyAttempts):
		return "Too many failed attempts. The account is temporarily locked."
	case errors.Is(err, ErrDeactivated):
		return "Account is deactivated"
	case errors.Is(err, ErrUnverified):
		return "Email is not confirmed"
	case errors.Is(err, ErrCodeNotFound):
		return "No verification code was requested"
	case errors.Is(err, ErrCodeExpired):
		return "The verification code has expired"
	case errors.Is(err, ErrCodeMismatch):
		return "Wrong verification code"
	case errors.Is(err, ErrAlreadyVerified):
		return "Email is already confirmed"
	case errors.Is(err, ErrDeliveryFailed):
		return "Could not send the verification code"
	case errors.Is(err, ErrLoginNotConfirmed):
		return "Confirm the login code first"
	case errors.Is(err, ErrNoSession):
		return "Session is missing or expired"
	case errors.Is(err, ErrProtectedPlaylist):
		return "The main playlist cannot be deleted"
	case errors.Is(err, ErrInvalidInput):
		return "Fill in all fields correctly"
	case errors.Is(err, ErrNotFound):
		return "User not found"
	case errors.Is(err, ErrStore):
		return "Database error, please try again"
	}
	return "Unexpected error"
}
