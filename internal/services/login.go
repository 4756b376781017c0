package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/models"
)

// Challenge is returned by Authenticate when the password matched and a login
// code was sent. The caller must follow up with ConfirmLogin.
type Challenge struct {
	Email     string
	ExpiresAt time.Time
}

// LoginResult is the outcome of a completed login.
type LoginResult struct {
	Token   string
	Profile models.Profile
}

// Authenticate checks credentials. A correct password never yields a session
// directly: it sends a login code and returns a Challenge.
//
// Each wrong password increments the failure counter. Reaching the lockout
// threshold locks the account and returns common.ErrTooManyAttempts; below it
// a *common.InvalidPasswordError carries the attempts left. While a lock is in
// force *common.LockedError is returned before the password is looked at.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*Challenge, error) {
	email = strings.TrimSpace(email)
	users := s.rm.Users(s.db)

	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.fail(ctx, "authenticate", err)
	}

	now := s.now()
	if user.LockedAt(now) {
		return nil, &common.LockedError{Until: *user.LockedUntil, Remaining: user.LockedUntil.Sub(now)}
	}
	if !user.IsActive {
		return nil, common.ErrDeactivated
	}
	if !user.IsVerified {
		return nil, common.ErrUnverified
	}

	if !s.hasher.Verify(password, user.PasswordHash, user.Salt) {
		return nil, s.passwordFailed(ctx, user, now)
	}

	if err := s.issueAndSend(ctx, user, models.PurposeLogin); err != nil {
		return nil, err
	}
	return &Challenge{Email: user.Email, ExpiresAt: now.Add(s.codes.ttl)}, nil
}

func (s *AccountService) passwordFailed(ctx context.Context, user *models.User, now time.Time) error {
	attempts := user.LoginAttempts
	if user.LockedUntil != nil {
		// an expired lock starts a fresh round of attempts
		attempts = 0
	}
	attempts++

	var lockedUntil *time.Time
	if attempts >= s.lockoutThreshold {
		until := now.Add(s.lockoutDuration)
		lockedUntil = &until
	}

	if err := s.rm.Users(s.db).RecordFailedLogin(ctx, user.ID, attempts, lockedUntil); err != nil {
		return s.fail(ctx, "record failed login", err)
	}

	if lockedUntil != nil {
		s.log.Warn(ctx, "account locked", "user_id", user.ID, "until", *lockedUntil)
		s.record(ctx, user.ID, user.Email, models.EventLocked, "")
		return common.ErrTooManyAttempts
	}

	remaining := s.lockoutThreshold - attempts
	s.log.Warn(ctx, "wrong password", "user_id", user.ID, "remaining", remaining)
	s.record(ctx, user.ID, user.Email, models.EventPasswordFailed, "")
	return &common.InvalidPasswordError{Remaining: remaining}
}

// ConfirmLogin validates the login code. On success the failure counter and
// lockout are cleared and CompleteLogin may be called within the login
// confirmation window. No session exists yet.
func (s *AccountService) ConfirmLogin(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)

	user, err := s.rm.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		return s.fail(ctx, "confirm login", err)
	}
	if err := s.codes.Validate(ctx, user, models.PurposeLogin, strings.TrimSpace(code)); err != nil {
		return s.fail(ctx, "confirm login", err)
	}

	s.mu.Lock()
	s.confirmed[user.Email] = s.now().Add(s.loginConfirmTTL)
	s.mu.Unlock()

	s.record(ctx, user.ID, user.Email, models.EventLoginConfirmed, "")
	return nil
}

// CompleteLogin mints a session after a successful ConfirmLogin. The
// confirmation is single use.
func (s *AccountService) CompleteLogin(ctx context.Context, email, deviceInfo, ip string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if !s.takeConfirmation(email) {
		return nil, common.ErrLoginNotConfirmed
	}

	user, err := s.rm.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		return nil, s.fail(ctx, "complete login", err)
	}
	if !user.IsActive {
		return nil, common.ErrDeactivated
	}
	if !user.IsVerified {
		return nil, common.ErrUnverified
	}

	token, err := s.sessions.Create(ctx, user.ID, deviceInfo, ip)
	if err != nil {
		return nil, s.fail(ctx, "complete login", err)
	}

	s.log.Info(ctx, "login completed", "user_id", user.ID)
	s.record(ctx, user.ID, user.Email, models.EventLoginCompleted, deviceInfo)

	return &LoginResult{
		Token: token,
		Profile: models.Profile{
			ID:         user.ID,
			Email:      user.Email,
			Username:   user.Username,
			Role:       user.Role,
			DeviceInfo: deviceInfo,
			AvatarPath: user.AvatarPath,
		},
	}, nil
}

func (s *AccountService) takeConfirmation(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.confirmed[email]
	delete(s.confirmed, email)
	return ok && s.now().Before(until)
}

// ValidateSession resolves a token to the owner's profile.
func (s *AccountService) ValidateSession(ctx context.Context, token string) (*models.Profile, error) {
	p, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, s.fail(ctx, "validate session", err)
	}
	return p, nil
}

// Logout revokes the session. Logging out twice is not an error.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	owner, lookupErr := s.rm.Sessions(s.db).GetWithUser(ctx, token)

	if err := s.sessions.Revoke(ctx, token); err != nil {
		return s.fail(ctx, "logout", err)
	}

	if lookupErr == nil {
		s.log.Info(ctx, "logged out", "user_id", owner.UserID)
		s.record(ctx, owner.UserID, owner.Email, models.EventLogout, "")
	} else if !errors.Is(lookupErr, common.ErrNotFound) {
		s.log.Warn(ctx, "logout lookup failed", "error", lookupErr)
	}
	return nil
}
