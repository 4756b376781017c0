package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fizisplayer/fplay/internal/common"
)

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Confirm(ctx context.Context) error
	Resend(ctx context.Context) error
	Login(ctx context.Context) error
	Whoami(ctx context.Context) error
	Logout(ctx context.Context) error
	Settings(ctx context.Context) error
	Volume(ctx context.Context, args []string) error
	Playlists(ctx context.Context) error
	DeletePlaylist(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Avatar(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// A failing command prints the user-facing message of its error and the loop
// goes on. The loop exits on EOF or when the user types "exit" or "quit".
//
//	Not logged in:
//	  register, confirm, resend, login, whoami, help, exit
//
//	Logged in:
//	  whoami, settings, volume <n>, playlists, delete-playlist <name>,
//	  rename <name>, avatar <path>, history [n], logout, help, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "fplay (%s)> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: whoami, settings, volume, playlists, delete-playlist, rename, avatar, history, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, confirm, resend, login, whoami, exit")
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "confirm":
			cmdErr = a.Confirm(ctx)
		case "resend":
			cmdErr = a.Resend(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "whoami":
			cmdErr = a.Whoami(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "settings":
			cmdErr = a.Settings(ctx)
		case "volume":
			cmdErr = a.Volume(ctx, args)
		case "playlists":
			cmdErr = a.Playlists(ctx)
		case "delete-playlist":
			cmdErr = a.DeletePlaylist(ctx, args)
		case "rename":
			cmdErr = a.Rename(ctx, args)
		case "avatar":
			cmdErr = a.Avatar(ctx, args)
		case "history":
			cmdErr = a.History(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, "Error:", describe(cmdErr))
		}
	}
}

func describe(err error) string {
	var ue usageError
	if errors.As(err, &ue) {
		return ue.Error()
	}
	return common.UserMessage(err)
}
