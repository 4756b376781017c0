package models

import (
	"encoding/json"
	"fmt"
)

// Playlist is a named, ordered list of tracks owned by one user.
type Playlist struct {
	Name   string
	Tracks []Track
}

// EncodeTracks serializes a track list into the blob stored per playlist row.
func EncodeTracks(tracks []Track) (string, error) {
	if tracks == nil {
		tracks = []Track{}
	}
	b, err := json.Marshal(tracks)
	if err != nil {
		return "", fmt.Errorf("encode tracks: %w", err)
	}
	return string(b), nil
}

// DecodeTracks parses a stored blob.
func DecodeTracks(blob string) ([]Track, error) {
	var tracks []Track
	if err := json.Unmarshal([]byte(blob), &tracks); err != nil {
		return nil, fmt.Errorf("decode tracks: %w", err)
	}
	if tracks == nil {
		tracks = []Track{}
	}
	return tracks, nil
}
