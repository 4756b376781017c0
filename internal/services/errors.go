package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fizisplayer/fplay/internal/common"
)

// protocolErrors pass through the service boundary unchanged.
var protocolErrors = []error{
	common.ErrNotFound,
	common.ErrDuplicateEmail,
	common.ErrInvalidPassword,
	common.ErrTooManyAttempts,
	common.ErrLocked,
	common.ErrDeactivated,
	common.ErrUnverified,
	common.ErrCodeNotFound,
	common.ErrCodeExpired,
	common.ErrCodeMismatch,
	common.ErrAlreadyVerified,
	common.ErrDeliveryFailed,
	common.ErrLoginNotConfirmed,
	common.ErrNoSession,
	common.ErrInvalidInput,
	common.ErrProtectedPlaylist,
}

// fail maps an error to what callers see. Protocol errors are returned as is;
// anything else is a store failure, which is logged and wrapped in
// common.ErrStore.
func (s *AccountService) fail(ctx context.Context, op string, err error) error {
	for _, target := range protocolErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	s.log.Error(ctx, "store failure", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, common.ErrStore)
}
