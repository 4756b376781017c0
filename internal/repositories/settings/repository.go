package settings

import (
	"context"

	"github.com/fizisplayer/fplay/internal/models"
)

type Repository interface {
	// Upsert fully overwrites the user's single settings row.
	Upsert(ctx context.Context, userID int64, s models.Settings) error
	Get(ctx context.Context, userID int64) (*models.Settings, error)
}
