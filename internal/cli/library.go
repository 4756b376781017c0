package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/models"
)

func (a *App) settings(ctx context.Context) (models.Settings, error) {
	s, err := a.account.LoadSettings(ctx, a.profile.ID)
	if errors.Is(err, common.ErrNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, err
	}
	return *s, nil
}

func (a *App) Settings(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	s, err := a.settings(ctx)
	if err != nil {
		return err
	}
	a.say("volume:   %d", s.Volume)
	a.say("repeat:   %t", s.Repeat)
	a.say("shuffle:  %t", s.Shuffle)
	a.say("playlist: %s", s.CurrentPlaylist)
	return nil
}

// Volume sets the playback volume; values outside 0..100 are clamped.
func (a *App) Volume(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) != 1 {
		return usage("volume <0-100>")
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		return usage("volume <0-100>")
	}

	s, err := a.settings(ctx)
	if err != nil {
		return err
	}
	s.Volume = v
	s = s.Normalize()
	if err := a.account.SaveSettings(ctx, a.profile.ID, s); err != nil {
		return err
	}
	a.say("Volume set to %d", s.Volume)
	return nil
}

func (a *App) Playlists(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	lists, err := a.account.LoadPlaylists(ctx, a.profile.ID)
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		a.say("No saved playlists")
		return nil
	}
	for _, pl := range lists {
		a.say("%s (%d)", pl.Name, len(pl.Tracks))
		for i, t := range pl.Tracks {
			if path, ok := t.PlayablePath(); ok {
				a.say("  %d. %s  [%s]", i+1, t.DisplayName(), path)
			} else {
				a.say("  %d. %s  [stream]", i+1, t.DisplayName())
			}
		}
	}
	return nil
}

func (a *App) DeletePlaylist(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return usage("delete-playlist <name>")
	}
	if err := a.account.DeletePlaylist(ctx, a.profile.ID, name); err != nil {
		return err
	}
	a.say("Playlist %q deleted", name)
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return usage("rename <new name>")
	}
	if err := a.account.UpdateUsername(ctx, a.profile.ID, name); err != nil {
		return err
	}
	a.profile.Username = name
	a.say("User name changed to %s", name)
	return nil
}

// Avatar stores the absolute path of an image file as the user's avatar.
func (a *App) Avatar(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) != 1 {
		return usage("avatar <path>")
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return usage("avatar <path>")
	}
	if err := a.account.UpdateAvatarPath(ctx, a.profile.ID, path); err != nil {
		return err
	}
	a.profile.AvatarPath = path
	a.say("Avatar set to %s", path)
	return nil
}

func (a *App) History(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return usage("history [count]")
		}
		limit = n
	}

	events, err := a.account.RecentEvents(ctx, a.profile.ID, limit)
	if err != nil {
		return err
	}
	for _, e := range events {
		line := e.CreatedAt.Local().Format("2006-01-02 15:04:05") + "  " + string(e.Kind)
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		a.say("%s", line)
	}
	return nil
}
