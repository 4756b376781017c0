package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
)

// TrackKind discriminates the Track variants.
type TrackKind int

const (
	// LocalFile is a plain path on disk.
	LocalFile TrackKind = iota + 1
	// Remote is a streamed track, optionally materialized into a local file.
	Remote
)

var ErrInvalidTrack = errors.New("track must be a path string or a remote track object")

// Track is a playlist entry. Local tracks carry only Path; remote tracks carry
// the source kind (e.g. "youtube", "telegram"), metadata and the download
// state of a local copy.
//
// On the wire a local track is a bare JSON string and a remote track is an
// object. Decoding then encoding reproduces the object: the downloaded and
// local_file flags and file_path are kept as stored, and keys the typed
// fields leave empty survive in Extra.
type Track struct {
	Kind TrackKind

	Path string

	SourceKind  string
	SourceLabel string
	Title       string
	Artist      string

	Downloaded bool
	LocalCopy  bool
	FilePath   string

	Extra map[string]json.RawMessage
}

func NewLocalTrack(path string) Track {
	return Track{Kind: LocalFile, Path: path}
}

// NewRemoteTrack builds a remote track; a non-empty cachedPath marks it as
// downloaded to that file.
func NewRemoteTrack(sourceKind, title, artist, cachedPath string) Track {
	t := Track{Kind: Remote, SourceKind: sourceKind, Title: title, Artist: artist}
	if cachedPath != "" {
		t.Downloaded, t.LocalCopy, t.FilePath = true, true, cachedPath
	}
	return t
}

// CachedPath is the downloaded copy of a remote track. A file_path without
// either download flag is not a usable copy.
func (t Track) CachedPath() string {
	if t.Kind == Remote && (t.Downloaded || t.LocalCopy) {
		return t.FilePath
	}
	return ""
}

// PlayablePath returns a path the player can open, if any.
func (t Track) PlayablePath() (string, bool) {
	switch t.Kind {
	case LocalFile:
		return t.Path, t.Path != ""
	case Remote:
		p := t.CachedPath()
		return p, p != ""
	}
	return "", false
}

// DisplayName renders the track for a list view.
func (t Track) DisplayName() string {
	if t.Kind == LocalFile {
		return filepath.Base(t.Path)
	}
	title, artist := t.Title, t.Artist
	if title == "" {
		title = "Unknown track"
	}
	if artist == "" {
		artist = "Unknown artist"
	}
	name := artist + " - " + title
	if t.CachedPath() != "" {
		name += " (downloaded)"
	}
	return name
}

// remoteWire lists the object keys owned by Track.
type remoteWire struct {
	Type       string `json:"type,omitempty"`
	Title      string `json:"title,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Source     string `json:"source,omitempty"`
	Downloaded bool   `json:"downloaded,omitempty"`
	LocalFile  bool   `json:"local_file,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
}

var wireKeys = []string{"type", "title", "artist", "source", "downloaded", "local_file", "file_path"}

func (t Track) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case LocalFile:
		return json.Marshal(t.Path)
	case Remote:
	default:
		return nil, fmt.Errorf("marshal track: unknown kind %d", t.Kind)
	}

	w := remoteWire{
		Type:       t.SourceKind,
		Title:      t.Title,
		Artist:     t.Artist,
		Source:     t.SourceLabel,
		Downloaded: t.Downloaded,
		LocalFile:  t.LocalCopy,
		FilePath:   t.FilePath,
	}
	if len(t.Extra) == 0 {
		return json.Marshal(w)
	}

	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	obj := make(map[string]json.RawMessage, len(t.Extra)+7)
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	// typed fields win; Extra fills whatever they left out
	for k, v := range t.Extra {
		if _, set := obj[k]; !set {
			obj[k] = v
		}
	}
	return json.Marshal(obj)
}

func (t *Track) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ErrInvalidTrack
	}

	switch b[0] {
	case '"':
		var path string
		if err := json.Unmarshal(b, &path); err != nil {
			return err
		}
		*t = NewLocalTrack(path)
		return nil
	case '{':
	default:
		return ErrInvalidTrack
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	// encoding/json matches keys case-insensitively; only exact names are typed
	exact := make(map[string]json.RawMessage, len(wireKeys))
	for _, k := range wireKeys {
		if v, ok := obj[k]; ok {
			exact[k] = v
		}
	}
	raw, err := json.Marshal(exact)
	if err != nil {
		return err
	}
	var w remoteWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return err
	}

	out := Track{
		Kind:        Remote,
		SourceKind:  w.Type,
		SourceLabel: w.Source,
		Title:       w.Title,
		Artist:      w.Artist,
		Downloaded:  w.Downloaded,
		LocalCopy:   w.LocalFile,
		FilePath:    w.FilePath,
	}

	// re-encoding the typed fields alone shows which keys still need Extra
	typed, err := json.Marshal(w)
	if err != nil {
		return err
	}
	var owned map[string]json.RawMessage
	if err := json.Unmarshal(typed, &owned); err != nil {
		return err
	}
	for k, v := range obj {
		if _, ok := owned[k]; ok {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[k] = v
	}
	*t = out
	return nil
}
