package users

import (
	"context"
	"time"

	"github.com/fizisplayer/fplay/internal/models"
)

// Repository persists user identity and account-state fields.
// Single-field updates return common.ErrNotFound when no row matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)

	SetPendingCode(ctx context.Context, id int64, code models.PendingCode) error
	ClearPendingCode(ctx context.Context, id int64) error
	// RecordCodeMiss increments the wrong-code counter of the pending code
	// and returns the new count.
	RecordCodeMiss(ctx context.Context, id int64) (int, error)
	MarkVerified(ctx context.Context, id int64) error

	RecordFailedLogin(ctx context.Context, id int64, attempts int, lockedUntil *time.Time) error
	ResetLoginFailures(ctx context.Context, id int64) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error

	UpdateUsername(ctx context.Context, id int64, username string) error
	UpdateAvatarPath(ctx context.Context, id int64, path string) error
	SetActive(ctx context.Context, id int64, active bool) error
}
