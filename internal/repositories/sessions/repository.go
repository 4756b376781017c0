package sessions

import (
	"context"
	"time"

	"github.com/fizisplayer/fplay/internal/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) (*models.Session, error)
	GetWithUser(ctx context.Context, token string) (*models.SessionWithUser, error)
	TouchActivity(ctx context.Context, token string, at time.Time) error
	// Delete is a no-op for unknown tokens.
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
