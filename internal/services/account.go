// Package services implements the account core: registration, the email
// verified login protocol, sessions, and per-user settings and playlists.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/config"
	"github.com/fizisplayer/fplay/internal/cryptox"
	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/fizisplayer/fplay/internal/logging"
	"github.com/fizisplayer/fplay/internal/models"
	"github.com/fizisplayer/fplay/internal/notify"
	"github.com/fizisplayer/fplay/internal/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// AccountService is the single entry point used by the presentation layer.
// Calls are synchronous; it is safe for use by one goroutine at a time,
// except for the login confirmation bookkeeping which is locked internally.
type AccountService struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	hasher   *cryptox.Hasher
	codes    *CodeIssuer
	sessions *SessionManager
	sender   notify.Sender
	log      logging.Logger
	validate *validator.Validate

	lockoutThreshold int
	lockoutDuration  time.Duration
	loginConfirmTTL  time.Duration
	admins           map[string]struct{}

	now func() time.Time

	mu        sync.Mutex
	confirmed map[string]time.Time
}

type Option func(*AccountService)

// WithClock replaces time.Now for the service and its collaborators.
func WithClock(now func() time.Time) Option {
	return func(s *AccountService) {
		s.now = now
		s.codes.now = now
		s.sessions.now = now
	}
}

func NewAccountService(db *sql.DB, rm repomanager.RepositoryManager, sender notify.Sender, log logging.Logger, cfg *config.Config, opts ...Option) (*AccountService, error) {
	hasher, err := cryptox.NewHasher(cryptox.Algorithm(cfg.PasswordAlgorithm), cfg.PasswordIterations)
	if err != nil {
		return nil, err
	}

	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		admins[e] = struct{}{}
	}

	s := &AccountService{
		db:               db,
		rm:               rm,
		hasher:           hasher,
		codes:            NewCodeIssuer(db, rm, cfg.CodeTTL, cfg.CodeMaxMisses),
		sessions:         NewSessionManager(db, rm, cfg.SessionTTL),
		sender:           sender,
		log:              log.With("component", "account"),
		validate:         validator.New(),
		lockoutThreshold: cfg.LockoutThreshold,
		lockoutDuration:  cfg.LockoutDuration,
		loginConfirmTTL:  cfg.LoginConfirmTTL,
		admins:           admins,
		now:              time.Now,
		confirmed:        make(map[string]time.Time),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Sessions exposes the session manager, e.g. for silent re-login.
func (s *AccountService) Sessions() *SessionManager { return s.sessions }

type registerInput struct {
	Email    string `validate:"required,email,max=254"`
	Username string `validate:"required,max=64"`
	Password string `validate:"required"`
}

// Register creates an unverified user with default settings and mails a
// registration code. If delivery fails the user is kept and
// common.ErrDeliveryFailed is returned; ResendRegistrationCode can retry.
func (s *AccountService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	in := registerInput{
		Email:    strings.TrimSpace(email),
		Username: strings.TrimSpace(username),
		Password: password,
	}
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	hash, salt, err := s.hasher.Hash(in.Password, "")
	if err != nil {
		return nil, s.fail(ctx, "register", err)
	}

	role := models.RoleUser
	if _, ok := s.admins[in.Email]; ok {
		role = models.RoleAdmin
	}

	user := &models.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Salt:         salt,
		Role:         role,
		CreatedAt:    s.now(),
		IsActive:     true,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.rm.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.rm.Settings(tx).Upsert(ctx, user.ID, models.DefaultSettings())
	})
	if err != nil {
		return nil, s.fail(ctx, "register", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "role", role)
	s.record(ctx, user.ID, user.Email, models.EventRegistered, string(role))

	if err := s.issueAndSend(ctx, user, models.PurposeRegistration); err != nil {
		return nil, err
	}
	return user, nil
}

// ConfirmRegistration verifies the email of an unverified user.
func (s *AccountService) ConfirmRegistration(ctx context.Context, email, code string) error {
	user, err := s.unverifiedUser(ctx, "confirm registration", email)
	if err != nil {
		return err
	}

	if err := s.codes.Validate(ctx, user, models.PurposeRegistration, strings.TrimSpace(code)); err != nil {
		return s.fail(ctx, "confirm registration", err)
	}
	if err := s.rm.Users(s.db).MarkVerified(ctx, user.ID); err != nil {
		return s.fail(ctx, "confirm registration", err)
	}

	s.log.Info(ctx, "email verified", "user_id", user.ID)
	s.record(ctx, user.ID, user.Email, models.EventVerified, "")
	return nil
}

// ResendRegistrationCode replaces the pending code of an unverified user.
func (s *AccountService) ResendRegistrationCode(ctx context.Context, email string) error {
	user, err := s.unverifiedUser(ctx, "resend code", email)
	if err != nil {
		return err
	}
	return s.issueAndSend(ctx, user, models.PurposeRegistration)
}

func (s *AccountService) unverifiedUser(ctx context.Context, op, email string) (*models.User, error) {
	user, err := s.rm.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	if user.IsVerified {
		return nil, fmt.Errorf("%w: %w", common.ErrNotFound, common.ErrAlreadyVerified)
	}
	return user, nil
}

// UpdateUsername renames the user.
func (s *AccountService) UpdateUsername(ctx context.Context, userID int64, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is empty", common.ErrInvalidInput)
	}
	if err := s.rm.Users(s.db).UpdateUsername(ctx, userID, username); err != nil {
		return s.fail(ctx, "update username", err)
	}
	return nil
}

// UpdateAvatarPath stores the path of the user's avatar image.
func (s *AccountService) UpdateAvatarPath(ctx context.Context, userID int64, path string) error {
	if err := s.rm.Users(s.db).UpdateAvatarPath(ctx, userID, path); err != nil {
		return s.fail(ctx, "update avatar", err)
	}
	return nil
}

// Deactivate soft-deletes the user and revokes all of their sessions.
func (s *AccountService) Deactivate(ctx context.Context, userID int64) error {
	var revoked int64
	var email string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.rm.Users(tx).GetByID(ctx, userID)
		if err != nil {
			return err
		}
		email = u.Email
		if err := s.rm.Users(tx).SetActive(ctx, userID, false); err != nil {
			return err
		}
		revoked, err = s.sessions.RevokeAll(ctx, tx, userID)
		return err
	})
	if err != nil {
		return s.fail(ctx, "deactivate", err)
	}

	s.log.Info(ctx, "user deactivated", "user_id", userID, "sessions_revoked", revoked)
	s.record(ctx, userID, email, models.EventDeactivated, "")
	return nil
}

// RecentEvents lists the newest audit events of a user.
func (s *AccountService) RecentEvents(ctx context.Context, userID int64, limit int) ([]models.AuthEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	events, err := s.rm.Events(s.db).ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, s.fail(ctx, "recent events", err)
	}
	return events, nil
}

// PurgeExpiredSessions deletes sessions that can no longer validate.
func (s *AccountService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		return 0, s.fail(ctx, "purge sessions", err)
	}
	if n > 0 {
		s.log.Info(ctx, "expired sessions purged", "count", n)
	}
	return n, nil
}

// issueAndSend stores a new code for purpose and hands it to the sender.
func (s *AccountService) issueAndSend(ctx context.Context, user *models.User, purpose models.CodePurpose) error {
	code, err := s.codes.Issue(ctx, user.ID, purpose)
	if err != nil {
		return s.fail(ctx, "issue code", err)
	}

	if err := s.sender.SendCode(ctx, user.Email, code); err != nil {
		s.log.Warn(ctx, "code delivery failed", "user_id", user.ID, "purpose", purpose, "error", err)
		s.record(ctx, user.ID, user.Email, models.EventDeliveryFailed, string(purpose))
		return fmt.Errorf("%w: %v", common.ErrDeliveryFailed, err)
	}

	s.record(ctx, user.ID, user.Email, models.EventCodeSent, string(purpose))
	return nil
}

func (s *AccountService) checkInput(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field())+" "+fe.Tag())
		}
		return fmt.Errorf("%w: %s", common.ErrInvalidInput, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
}

// record appends to the audit trail. Failures are logged and otherwise ignored.
func (s *AccountService) record(ctx context.Context, userID int64, email string, kind models.EventKind, detail string) {
	e := &models.AuthEvent{UserID: userID, Email: email, Kind: kind, Detail: detail, CreatedAt: s.now()}
	if err := s.rm.Events(s.db).Add(ctx, e); err != nil {
		s.log.Warn(ctx, "audit event dropped", "kind", kind, "error", err)
	}
}
