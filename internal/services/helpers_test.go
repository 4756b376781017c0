package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/fizisplayer/fplay/internal/config"
	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/fizisplayer/fplay/internal/logging"
	"github.com/fizisplayer/fplay/internal/repositories/repomanager"
	"github.com/fizisplayer/fplay/internal/repositories/repotest"
	"github.com/stretchr/testify/require"
)

// captureSender records the last code sent to each address.
type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
	err   error
}

func newCaptureSender() *captureSender {
	return &captureSender{codes: make(map[string]string)}
}

func (c *captureSender) SendCode(_ context.Context, address, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.codes[address] = code
	c.sent++
	return nil
}

func (c *captureSender) last(t *testing.T, address string) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	code, ok := c.codes[address]
	require.True(t, ok, "no code sent to %s", address)
	return code
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type harness struct {
	svc    *AccountService
	sender *captureSender
	clock  *fakeClock
	db     *sql.DB
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.PasswordIterations = 1000
	cfg.AdminEmails = []string{"root@x.com"}
	return cfg
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := repotest.NewSQLite(t)
	sender := newCaptureSender()
	clock := &fakeClock{t: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)}

	svc, err := NewAccountService(db, repomanager.NewRepositoryManager(dbx.SQLite), sender,
		logging.Nop(), testConfig(), WithClock(clock.Now))
	require.NoError(t, err)

	return &harness{svc: svc, sender: sender, clock: clock, db: db}
}

// registerVerified registers and confirms a user, returning its id.
func (h *harness) registerVerified(t *testing.T, email, username, password string) int64 {
	t.Helper()
	ctx := context.Background()
	u, err := h.svc.Register(ctx, email, username, password)
	require.NoError(t, err)
	require.NoError(t, h.svc.ConfirmRegistration(ctx, email, h.sender.last(t, email)))
	return u.ID
}

// login runs the whole login protocol and returns the session token.
func (h *harness) login(t *testing.T, email, password string) string {
	t.Helper()
	ctx := context.Background()
	_, err := h.svc.Authenticate(ctx, email, password)
	require.NoError(t, err)
	require.NoError(t, h.svc.ConfirmLogin(ctx, email, h.sender.last(t, email)))
	res, err := h.svc.CompleteLogin(ctx, email, "test-device", "127.0.0.1")
	require.NoError(t, err)
	return res.Token
}

// wrongCode returns a code guaranteed to differ from code.
func wrongCode(code string) string {
	b := []byte(code)
	b[0] = '0' + (b[0]-'0'+1)%10
	return string(b)
}
