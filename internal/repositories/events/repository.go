package events

import (
	"context"

	"github.com/fizisplayer/fplay/internal/models"
)

type Repository interface {
	// Add stores e, assigning an id when e.ID is empty.
	Add(ctx context.Context, e *models.AuthEvent) error
	// ListByUser returns up to limit events, newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.AuthEvent, error)
}
