package playlists

import "context"

// Record is one stored playlist with its tracks still serialized.
type Record struct {
	Name   string
	Tracks string
}

type Repository interface {
	// ReplaceAll deletes every playlist of the user and inserts records in order.
	ReplaceAll(ctx context.Context, userID int64, records []Record) error
	List(ctx context.Context, userID int64) ([]Record, error)
	Delete(ctx context.Context, userID int64, name string) error
}
