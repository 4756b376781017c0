package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/fizisplayer/fplay/internal/models"
	"github.com/fizisplayer/fplay/internal/repositories/repomanager"
)

// tokenBytes of randomness back every session token (512 bits).
const tokenBytes = 64

// SessionManager issues, validates and revokes opaque bearer sessions.
// Expiry is checked lazily on validation.
type SessionManager struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	ttl time.Duration
	now func() time.Time
}

func NewSessionManager(db *sql.DB, rm repomanager.RepositoryManager, ttl time.Duration) *SessionManager {
	return &SessionManager{db: db, rm: rm, ttl: ttl, now: time.Now}
}

// Create persists a new session for userID and touches the user's last login.
func (m *SessionManager) Create(ctx context.Context, userID int64, deviceInfo, ip string) (string, error) {
	token, err := common.MakeURLSafeToken(tokenBytes)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	now := m.now()
	s := &models.Session{
		UserID:       userID,
		Token:        token,
		DeviceInfo:   deviceInfo,
		IPAddress:    ip,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.ttl),
		LastActivity: now,
	}

	err = dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := m.rm.Sessions(tx).Create(ctx, s); err != nil {
			return err
		}
		return m.rm.Users(tx).TouchLastLogin(ctx, userID, now)
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Validate returns the owner's profile for a live session and refreshes its
// last activity. Empty, unknown and expired tokens, and tokens of inactive
// users, all yield common.ErrNoSession.
func (m *SessionManager) Validate(ctx context.Context, token string) (*models.Profile, error) {
	if token == "" {
		return nil, common.ErrNoSession
	}

	repo := m.rm.Sessions(m.db)
	s, err := repo.GetWithUser(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNoSession
		}
		return nil, err
	}

	now := m.now()
	if !now.Before(s.ExpiresAt) || !s.IsActive {
		return nil, common.ErrNoSession
	}

	if err := repo.TouchActivity(ctx, token, now); err != nil {
		return nil, err
	}

	return &models.Profile{
		ID:         s.UserID,
		Email:      s.Email,
		Username:   s.Username,
		Role:       s.Role,
		DeviceInfo: s.DeviceInfo,
		AvatarPath: s.AvatarPath,
	}, nil
}

// Revoke deletes the session. Unknown tokens are not an error.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.rm.Sessions(m.db).Delete(ctx, token)
}

// RevokeAll drops every session of a user inside the caller's transaction.
func (m *SessionManager) RevokeAll(ctx context.Context, tx dbx.DBTX, userID int64) (int64, error) {
	return m.rm.Sessions(tx).DeleteByUser(ctx, userID)
}

// PurgeExpired removes sessions whose expiry has passed.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.rm.Sessions(m.db).DeleteExpired(ctx, m.now())
}
