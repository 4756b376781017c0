// Package common contains shared constants, sentinel errors and small helpers
// used across fplay components.
package common

// DefaultPlaylistName is the protected playlist every account owns. It can
// never be deleted and is the fallback for the current playlist setting.
const DefaultPlaylistName = "Основной"
