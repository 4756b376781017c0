package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEnd_RegisterLoginValidate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.svc.Register(ctx, "a@x.com", "alice", "pw1")
	require.NoError(t, err)
	require.False(t, u.IsVerified)

	require.NoError(t, h.svc.ConfirmRegistration(ctx, "a@x.com", h.sender.last(t, "a@x.com")))

	ch, err := h.svc.Authenticate(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	require.NotNil(t, ch, "password match must ask for a login code")
	assert.Equal(t, "a@x.com", ch.Email)

	require.NoError(t, h.svc.ConfirmLogin(ctx, "a@x.com", h.sender.last(t, "a@x.com")))

	res, err := h.svc.CompleteLogin(ctx, "a@x.com", "laptop", "10.0.0.2")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	p, err := h.svc.Sessions().Validate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, "laptop", p.DeviceInfo)
	assert.Equal(t, models.RoleUser, p.Role)

	stored, err := h.svc.rm.Users(h.db).GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, stored.LastLogin.Equal(h.clock.Now()))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Register(ctx, "a@x.com", "alice", "pw")
	require.NoError(t, err)

	_, err = h.svc.Register(ctx, "a@x.com", "alice2", "pw")
	require.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.Equal(t, "A user with this email already exists", common.UserMessage(err))
}

func TestRegister_InvalidInput(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, in := range [][3]string{
		{"", "alice", "pw"},
		{"not-an-email", "alice", "pw"},
		{"a@x.com", "   ", "pw"},
		{"a@x.com", "alice", ""},
	} {
		_, err := h.svc.Register(ctx, in[0], in[1], in[2])
		require.ErrorIs(t, err, common.ErrInvalidInput, "%v", in)
	}
	assert.Zero(t, h.sender.sent)
}

func TestRegister_CreatesDefaultSettingsAndAdminRole(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.svc.Register(ctx, "root@x.com", "root", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	s, err := h.svc.LoadSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), *s)
}

func TestRegister_DeliveryFailureKeepsUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.sender.err = errors.New("smtp down")
	_, err := h.svc.Register(ctx, "a@x.com", "alice", "pw")
	require.ErrorIs(t, err, common.ErrDeliveryFailed)

	u, err := h.svc.rm.Users(h.db).GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, u.IsVerified)

	h.sender.err = nil
	require.NoError(t, h.svc.ResendRegistrationCode(ctx, "a@x.com"))
	require.NoError(t, h.svc.ConfirmRegistration(ctx, "a@x.com", h.sender.last(t, "a@x.com")))
}

func TestConfirmRegistration_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.ErrorIs(t, h.svc.ConfirmRegistration(ctx, "ghost@x.com", "123456"), common.ErrNotFound)

	h.registerVerified(t, "a@x.com", "alice", "pw")
	err := h.svc.ConfirmRegistration(ctx, "a@x.com", "123456")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.ErrorIs(t, err, common.ErrAlreadyVerified)

	require.ErrorIs(t, h.svc.ResendRegistrationCode(ctx, "a@x.com"), common.ErrNotFound)
}

func TestVerificationCode_ExpiresExactlyAtTTL(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Register(ctx, "early@x.com", "early", "pw")
	require.NoError(t, err)
	_, err = h.svc.Register(ctx, "late@x.com", "late", "pw")
	require.NoError(t, err)

	h.clock.Advance(10*time.Minute - time.Nanosecond)
	require.NoError(t, h.svc.ConfirmRegistration(ctx, "early@x.com", h.sender.last(t, "early@x.com")))

	h.clock.Advance(time.Nanosecond)
	lateCode := h.sender.last(t, "late@x.com")
	require.ErrorIs(t, h.svc.ConfirmRegistration(ctx, "late@x.com", lateCode), common.ErrCodeExpired)
	// the expired code was cleared
	require.ErrorIs(t, h.svc.ConfirmRegistration(ctx, "late@x.com", lateCode), common.ErrCodeNotFound)
}

func TestVerificationCode_MismatchKeepsCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Register(ctx, "a@x.com", "alice", "pw")
	require.NoError(t, err)
	code := h.sender.last(t, "a@x.com")

	require.ErrorIs(t, h.svc.ConfirmRegistration(ctx, "a@x.com", wrongCode(code)), common.ErrCodeMismatch)
	require.NoError(t, h.svc.ConfirmRegistration(ctx, "a@x.com", code))
	// consumed codes cannot be replayed
	require.ErrorIs(t, h.svc.ConfirmRegistration(ctx, "a@x.com", code), common.ErrNotFound)
}

func TestVerificationCode_TooManyMissesBurnsCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registerVerified(t, "a@x.com", "alice", "pw")

	_, err := h.svc.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	code := h.sender.last(t, "a@x.com")

	for i := 0; i < 5; i++ {
		require.ErrorIs(t, h.svc.ConfirmLogin(ctx, "a@x.com", wrongCode(code)), common.ErrCodeMismatch)
	}
	require.ErrorIs(t, h.svc.ConfirmLogin(ctx, "a@x.com", code), common.ErrCodeNotFound)

	// a fresh code gets a fresh allowance
	_, err = h.svc.Authenticate(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	code = h.sender.last(t, "a@x.com")
	for i := 0; i < 4; i++ {
		require.ErrorIs(t, h.svc.ConfirmLogin(ctx, "a@x.com", wrongCode(code)), common.ErrCodeMismatch)
	}
	require.NoError(t, h.svc.ConfirmLogin(ctx, "a@x.com", code))
}

func TestVerificationCode_NewCodeReplacesOld(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Register(ctx, "a@x.com", "alice", "pw")
	require.NoError(t, err)
	first := h.sender.last(t, "a@x.com")

	require.NoError(t, h.svc.ResendRegistrationCode(ctx, "a@x.com"))
	second := h.sender.last(t, "a@x.com")
	if first == second {
		t.Skip("both codes collided")
	}

	require.ErrorIs(t, h.svc.ConfirmRegistration(ctx, "a@x.com", first), common.ErrCodeMismatch)
	require.NoError(t, h.svc.ConfirmRegistration(ctx, "a@x.com", second))
}

func TestVerificationCode_PurposeMustMatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Register(ctx, "a@x.com", "alice", "pw")
	require.NoError(t, err)

	err = h.svc.ConfirmLogin(ctx, "a@x.com", h.sender.last(t, "a@x.com"))
	require.ErrorIs(t, err, common.ErrCodeNotFound)
}

func TestUpdateProfileFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.registerVerified(t, "a@x.com", "alice", "pw")

	require.NoError(t, h.svc.UpdateUsername(ctx, id, "  Alice B "))
	require.NoError(t, h.svc.UpdateAvatarPath(ctx, id, "/home/a/.fplay/avatars/1.png"))
	require.ErrorIs(t, h.svc.UpdateUsername(ctx, id, " "), common.ErrInvalidInput)
	require.ErrorIs(t, h.svc.UpdateUsername(ctx, 999, "x"), common.ErrNotFound)

	p, err := h.svc.ValidateSession(ctx, h.login(t, "a@x.com", "pw"))
	require.NoError(t, err)
	assert.Equal(t, "Alice B", p.Username)
	assert.Equal(t, "/home/a/.fplay/avatars/1.png", p.AvatarPath)
}

func TestDeactivate_RevokesSessionsAndBlocksLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.registerVerified(t, "a@x.com", "alice", "pw")
	token := h.login(t, "a@x.com", "pw")

	require.NoError(t, h.svc.Deactivate(ctx, id))

	_, err := h.svc.ValidateSession(ctx, token)
	require.ErrorIs(t, err, common.ErrNoSession)

	_, err = h.svc.Authenticate(ctx, "a@x.com", "pw")
	require.ErrorIs(t, err, common.ErrDeactivated)

	require.ErrorIs(t, h.svc.Deactivate(ctx, 404), common.ErrNotFound)
}

func TestRecentEvents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.registerVerified(t, "a@x.com", "alice", "pw")

	h.clock.Advance(time.Second)
	_, err := h.svc.Authenticate(ctx, "a@x.com", "wrong")
	require.Error(t, err)

	events, err := h.svc.RecentEvents(ctx, id, 0)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, models.EventPasswordFailed, events[0].Kind)

	kinds := make(map[models.EventKind]bool)
	for _, e := range events {
		kinds[e.Kind] = true
	}
	assert.True(t, kinds[models.EventRegistered])
	assert.True(t, kinds[models.EventCodeSent])
	assert.True(t, kinds[models.EventVerified])
}

func TestStoreFailureBecomesErrStore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.registerVerified(t, "a@x.com", "alice", "pw")

	require.NoError(t, h.db.Close())

	_, err := h.svc.LoadSettings(ctx, id)
	require.ErrorIs(t, err, common.ErrStore)
	assert.Equal(t, "Database error, please try again", common.UserMessage(err))

	_, err = h.svc.Register(ctx, "b@x.com", "bob", "pw")
	require.ErrorIs(t, err, common.ErrStore)

	_, err = h.svc.Authenticate(ctx, "a@x.com", "pw")
	require.ErrorIs(t, err, common.ErrStore)
}

func TestNewAccountService_BadAlgorithm(t *testing.T) {
	cfg := testConfig()
	cfg.PasswordAlgorithm = "rot13"
	_, err := NewAccountService(nil, nil, nil, nil, cfg)
	require.Error(t, err)
}
