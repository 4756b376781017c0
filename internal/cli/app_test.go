package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/config"
	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/fizisplayer/fplay/internal/logging"
	"github.com/fizisplayer/fplay/internal/models"
	"github.com/fizisplayer/fplay/internal/notify"
	"github.com/fizisplayer/fplay/internal/repositories/repomanager"
	"github.com/fizisplayer/fplay/internal/repositories/repotest"
	"github.com/fizisplayer/fplay/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc       *services.AccountService
	tokenFile string
	out       *bytes.Buffer

	mu      sync.Mutex
	codes   map[string]string
	sendErr error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		tokenFile: filepath.Join(t.TempDir(), "state", "session.token"),
		out:       &bytes.Buffer{},
		codes:     make(map[string]string),
	}

	sender := notify.SenderFunc(func(_ context.Context, address, code string) error {
		env.mu.Lock()
		defer env.mu.Unlock()
		if env.sendErr != nil {
			return env.sendErr
		}
		env.codes[address] = code
		return nil
	})

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.PasswordIterations = 1000

	svc, err := services.NewAccountService(repotest.NewSQLite(t), repomanager.NewRepositoryManager(dbx.SQLite),
		sender, logging.Nop(), cfg)
	require.NoError(t, err)
	env.svc = svc
	return env
}

func (e *testEnv) code(email string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.codes[email]
}

func (e *testEnv) newApp() *App {
	return NewApp(e.svc, logging.Nop(), e.tokenFile, strings.NewReader(""), e.out)
}

// answer stubs the prompt helpers. Code prompts are answered with the last
// code mailed to email.
func (e *testEnv) answer(t *testing.T, email, username, password string) {
	t.Helper()
	oldText, oldPw := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = oldText, oldPw })

	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		switch {
		case prompt == "Enter email":
			return email, nil
		case prompt == "Enter user name":
			return username, nil
		case strings.Contains(prompt, "code"):
			return e.code(email), nil
		}
		return "", errors.New("unexpected prompt " + prompt)
	}
	getPassword = func(*bufio.Reader, io.Writer) ([]byte, error) {
		return []byte(password), nil
	}
}

func (e *testEnv) signIn(t *testing.T, app *App) {
	t.Helper()
	ctx := context.Background()
	e.answer(t, "a@x.com", "alice", "pw")
	require.NoError(t, app.Register(ctx))
	require.NoError(t, app.Login(ctx))
}

func TestApp_RegisterLoginRestoreLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.newApp()

	env.signIn(t, app)
	assert.True(t, app.isLoggedIn())
	assert.Equal(t, "alice", app.status())
	assert.Contains(t, env.out.String(), "Email confirmed")
	assert.Contains(t, env.out.String(), "Welcome, alice!")

	b, err := os.ReadFile(env.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, app.token, string(b))

	// a second process picks the session up from the token file
	other := env.newApp()
	require.NoError(t, other.Whoami(ctx))
	assert.Equal(t, "alice", other.status())
	assert.Contains(t, env.out.String(), "alice <a@x.com>")

	require.NoError(t, app.Logout(ctx))
	assert.False(t, app.isLoggedIn())
	_, err = os.Stat(env.tokenFile)
	assert.True(t, os.IsNotExist(err))

	require.ErrorIs(t, other.Whoami(ctx), common.ErrNoSession)
	assert.False(t, other.isLoggedIn())
}

func TestApp_StaleTokenIsRemoved(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(env.tokenFile), 0o700))
	require.NoError(t, os.WriteFile(env.tokenFile, []byte("bogus-token"), 0o600))

	app := env.newApp()
	require.ErrorIs(t, app.Whoami(context.Background()), common.ErrNoSession)

	_, err := os.Stat(env.tokenFile)
	assert.True(t, os.IsNotExist(err))
}

func TestApp_RegisterDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.newApp()
	env.answer(t, "a@x.com", "alice", "pw")

	env.sendErr = errors.New("smtp down")
	require.NoError(t, app.Register(ctx))
	assert.Contains(t, env.out.String(), "Use 'resend'")

	env.sendErr = nil
	require.NoError(t, app.Resend(ctx))
	require.NoError(t, app.Confirm(ctx))
	require.NoError(t, app.Login(ctx))
}

func TestApp_LoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.newApp()
	env.signIn(t, app)
	require.NoError(t, app.Logout(ctx))

	env.answer(t, "a@x.com", "alice", "nope")
	err := app.Login(ctx)
	var invalid *common.InvalidPasswordError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 4, invalid.Remaining)
	assert.False(t, app.isLoggedIn())
}

func TestApp_LibraryCommands(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.newApp()
	env.signIn(t, app)

	require.NoError(t, app.Settings(ctx))
	assert.Contains(t, env.out.String(), "volume:   50")

	require.NoError(t, app.Volume(ctx, []string{"150"}))
	assert.Contains(t, env.out.String(), "Volume set to 100")
	s, err := env.svc.LoadSettings(ctx, app.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, s.Volume)

	require.NoError(t, app.Playlists(ctx))
	assert.Contains(t, env.out.String(), "No saved playlists")

	require.ErrorIs(t, app.DeletePlaylist(ctx, []string{common.DefaultPlaylistName}), common.ErrProtectedPlaylist)

	require.NoError(t, app.Rename(ctx, []string{"Alice", "B"}))
	assert.Equal(t, "Alice B", app.status())

	require.NoError(t, app.Avatar(ctx, []string{"me.png"}))
	assert.True(t, filepath.IsAbs(app.profile.AvatarPath))

	require.NoError(t, app.History(ctx, []string{"3"}))
	assert.Contains(t, env.out.String(), "login_completed")

	var ue usageError
	require.ErrorAs(t, app.Volume(ctx, nil), &ue)
	require.ErrorAs(t, app.Volume(ctx, []string{"loud"}), &ue)
	require.ErrorAs(t, app.History(ctx, []string{"-1"}), &ue)
	require.ErrorAs(t, app.Rename(ctx, nil), &ue)
}

func TestApp_PlaylistsShowPlayablePaths(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.newApp()
	env.signIn(t, app)

	require.NoError(t, env.svc.SavePlaylists(ctx, app.profile.ID, []models.Playlist{{
		Name: common.DefaultPlaylistName,
		Tracks: []models.Track{
			models.NewLocalTrack("/music/a.mp3"),
			models.NewRemoteTrack("youtube", "Song", "Band", "/cache/song.mp3"),
			models.NewRemoteTrack("telegram", "Voice", "", ""),
		},
	}}))

	require.NoError(t, app.Playlists(ctx))
	text := env.out.String()
	assert.Contains(t, text, common.DefaultPlaylistName+" (3)")
	assert.Contains(t, text, "1. a.mp3  [/music/a.mp3]")
	assert.Contains(t, text, "2. Band - Song (downloaded)  [/cache/song.mp3]")
	assert.Contains(t, text, "3. Unknown artist - Voice  [stream]")
}

func TestApp_CommandsNeedLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.newApp()

	for _, err := range []error{
		app.Settings(ctx),
		app.Volume(ctx, []string{"10"}),
		app.Playlists(ctx),
		app.DeletePlaylist(ctx, []string{"x"}),
		app.Rename(ctx, []string{"x"}),
		app.Avatar(ctx, []string{"x"}),
		app.History(ctx, nil),
		app.Logout(ctx),
	} {
		require.ErrorIs(t, err, common.ErrNoSession)
	}
}
