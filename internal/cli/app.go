package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/filex"
	"github.com/fizisplayer/fplay/internal/logging"
	"github.com/fizisplayer/fplay/internal/models"
	"github.com/fizisplayer/fplay/internal/services"
)

// Account is the part of services.AccountService the console drives.
type Account interface {
	Register(ctx context.Context, email, username, password string) (*models.User, error)
	ConfirmRegistration(ctx context.Context, email, code string) error
	ResendRegistrationCode(ctx context.Context, email string) error
	Authenticate(ctx context.Context, email, password string) (*services.Challenge, error)
	ConfirmLogin(ctx context.Context, email, code string) error
	CompleteLogin(ctx context.Context, email, deviceInfo, ip string) (*services.LoginResult, error)
	ValidateSession(ctx context.Context, token string) (*models.Profile, error)
	Logout(ctx context.Context, token string) error
	LoadSettings(ctx context.Context, userID int64) (*models.Settings, error)
	SaveSettings(ctx context.Context, userID int64, settings models.Settings) error
	LoadPlaylists(ctx context.Context, userID int64) ([]models.Playlist, error)
	DeletePlaylist(ctx context.Context, userID int64, name string) error
	UpdateUsername(ctx context.Context, userID int64, username string) error
	UpdateAvatarPath(ctx context.Context, userID int64, path string) error
	RecentEvents(ctx context.Context, userID int64, limit int) ([]models.AuthEvent, error)
}

var _ Account = (*services.AccountService)(nil)

type App struct {
	account   Account
	log       logging.Logger
	tokenFile string
	device    string
	reader    *bufio.Reader
	out       io.Writer

	token   string
	profile *models.Profile
}

func NewApp(account Account, log logging.Logger, tokenFile string, in io.Reader, out io.Writer) *App {
	return &App{
		account:   account,
		log:       log.With("component", "cli"),
		tokenFile: tokenFile,
		device:    deviceInfo(),
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

// Run restores a cached session, if any, and serves commands until exit.
func (a *App) Run(ctx context.Context) {
	a.say("Welcome to fplay (type 'help' for commands)")
	if err := a.restore(ctx); err == nil {
		a.say("Signed in as %s", a.profile.Username)
	}
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.profile != nil
}

func (a *App) status() string {
	if a.profile == nil {
		return "guest"
	}
	return a.profile.Username
}

// restore validates the cached token. A stale token file is removed.
func (a *App) restore(ctx context.Context) error {
	token := filex.ReadToken(a.tokenFile)
	if token == "" {
		return common.ErrNoSession
	}

	p, err := a.account.ValidateSession(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNoSession) {
			if rmErr := filex.RemoveToken(a.tokenFile); rmErr != nil {
				a.log.Warn(ctx, "failed to remove stale token", "error", rmErr)
			}
		}
		return err
	}

	a.token = token
	a.profile = p
	a.log.Debug(ctx, "session restored", "user_id", p.ID)
	return nil
}

func (a *App) requireLogin() error {
	if a.profile == nil {
		return common.ErrNoSession
	}
	return nil
}

func (a *App) say(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

func deviceInfo() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s (%s/%s)", host, runtime.GOOS, runtime.GOARCH)
}
