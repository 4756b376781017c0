package models

import "github.com/fizisplayer/fplay/internal/common"

const (
	DefaultVolume = 50
	MinVolume     = 0
	MaxVolume     = 100
)

type Settings struct {
	Volume          int
	Repeat          bool
	Shuffle         bool
	CurrentPlaylist string
}

// DefaultSettings is the row created for every new user.
func DefaultSettings() Settings {
	return Settings{
		Volume:          DefaultVolume,
		CurrentPlaylist: common.DefaultPlaylistName,
	}
}

// Normalize clamps the volume and fills an empty playlist name with the default.
func (s Settings) Normalize() Settings {
	if s.Volume < MinVolume {
		s.Volume = MinVolume
	}
	if s.Volume > MaxVolume {
		s.Volume = MaxVolume
	}
	if s.CurrentPlaylist == "" {
		s.CurrentPlaylist = common.DefaultPlaylistName
	}
	return s
}
