package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/fizisplayer/fplay/internal/models"
	"github.com/fizisplayer/fplay/internal/repositories/playlists"
)

// SaveSettings overwrites the user's settings row. The volume is clamped and
// an empty playlist name falls back to the default playlist.
func (s *AccountService) SaveSettings(ctx context.Context, userID int64, settings models.Settings) error {
	if err := s.rm.Settings(s.db).Upsert(ctx, userID, settings.Normalize()); err != nil {
		return s.fail(ctx, "save settings", err)
	}
	return nil
}

// LoadSettings returns common.ErrNotFound when the user has no settings row;
// callers then use models.DefaultSettings.
func (s *AccountService) LoadSettings(ctx context.Context, userID int64) (*models.Settings, error) {
	settings, err := s.rm.Settings(s.db).Get(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "load settings", err)
	}
	return settings, nil
}

// SavePlaylists replaces every playlist of the user with lists.
func (s *AccountService) SavePlaylists(ctx context.Context, userID int64, lists []models.Playlist) error {
	records := make([]playlists.Record, 0, len(lists))
	for _, pl := range lists {
		if pl.Name == "" {
			return fmt.Errorf("%w: playlist name is empty", common.ErrInvalidInput)
		}
		blob, err := models.EncodeTracks(pl.Tracks)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
		}
		records = append(records, playlists.Record{Name: pl.Name, Tracks: blob})
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.rm.Playlists(tx).ReplaceAll(ctx, userID, records)
	})
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate playlist name", common.ErrInvalidInput)
		}
		return s.fail(ctx, "save playlists", err)
	}
	return nil
}

// LoadPlaylists returns the user's playlists in saving order. A playlist whose
// stored tracks cannot be decoded comes back empty; the others are unaffected.
func (s *AccountService) LoadPlaylists(ctx context.Context, userID int64) ([]models.Playlist, error) {
	records, err := s.rm.Playlists(s.db).List(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "load playlists", err)
	}

	out := make([]models.Playlist, 0, len(records))
	for _, rec := range records {
		tracks, err := models.DecodeTracks(rec.Tracks)
		if err != nil {
			s.log.Warn(ctx, "corrupt playlist replaced with empty list", "user_id", userID, "playlist", rec.Name, "error", err)
			tracks = []models.Track{}
		}
		out = append(out, models.Playlist{Name: rec.Name, Tracks: tracks})
	}
	return out, nil
}

// DeletePlaylist removes one playlist. The default playlist cannot be
// deleted. If the deleted playlist was selected, the selection moves back to
// the default playlist.
func (s *AccountService) DeletePlaylist(ctx context.Context, userID int64, name string) error {
	if name == common.DefaultPlaylistName {
		return common.ErrProtectedPlaylist
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Playlists(tx).Delete(ctx, userID, name); err != nil {
			return err
		}

		settingsRepo := s.rm.Settings(tx)
		current, err := settingsRepo.Get(ctx, userID)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if current.CurrentPlaylist != name {
			return nil
		}
		current.CurrentPlaylist = common.DefaultPlaylistName
		return settingsRepo.Upsert(ctx, userID, *current)
	})
	if err != nil {
		return s.fail(ctx, "delete playlist", err)
	}
	return nil
}
