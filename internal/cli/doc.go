// Package cli provides the interactive fplay account console.
//
// It drives the account core through the multi-step protocols a desktop
// front end would: registration with an emailed code, password plus code
// login, silent re-login from a cached session token, and access to the
// signed-in user's settings, playlists and login history.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits
// or input ends.
package cli
