package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"time"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/models"
	"github.com/fizisplayer/fplay/internal/repositories/repomanager"
)

const codeDigits = 6

// CodeIssuer manages the single pending verification code of a user.
type CodeIssuer struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	ttl time.Duration
	// maxMisses wrong submissions burn the pending code.
	maxMisses int
	now       func() time.Time
}

func NewCodeIssuer(db *sql.DB, rm repomanager.RepositoryManager, ttl time.Duration, maxMisses int) *CodeIssuer {
	return &CodeIssuer{db: db, rm: rm, ttl: ttl, maxMisses: maxMisses, now: time.Now}
}

// Issue stores a fresh code for purpose, replacing whatever was pending.
func (c *CodeIssuer) Issue(ctx context.Context, userID int64, purpose models.CodePurpose) (string, error) {
	code, err := common.MakeRandDigits(codeDigits)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	pending := models.PendingCode{Code: code, Purpose: purpose, ExpiresAt: c.now().Add(c.ttl)}
	if err := c.rm.Users(c.db).SetPendingCode(ctx, userID, pending); err != nil {
		return "", err
	}
	return code, nil
}

// Validate checks submitted against the user's pending code. Expired and
// matched codes are cleared. A mismatch leaves the code in place until
// maxMisses wrong submissions, after which it is cleared and a new code must
// be requested. A matched login code also clears failed attempts and any
// lockout.
func (c *CodeIssuer) Validate(ctx context.Context, u *models.User, purpose models.CodePurpose, submitted string) error {
	p := u.Pending
	if p == nil || p.Purpose != purpose {
		return common.ErrCodeNotFound
	}

	repo := c.rm.Users(c.db)

	if !c.now().Before(p.ExpiresAt) {
		if err := repo.ClearPendingCode(ctx, u.ID); err != nil {
			return err
		}
		u.Pending = nil
		return common.ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(p.Code), []byte(submitted)) != 1 {
		misses, err := repo.RecordCodeMiss(ctx, u.ID)
		if err != nil {
			return err
		}
		p.Misses = misses
		if c.maxMisses > 0 && misses >= c.maxMisses {
			if err := repo.ClearPendingCode(ctx, u.ID); err != nil {
				return err
			}
			u.Pending = nil
		}
		return common.ErrCodeMismatch
	}

	if err := repo.ClearPendingCode(ctx, u.ID); err != nil {
		return err
	}
	u.Pending = nil

	if purpose == models.PurposeLogin {
		if err := repo.ResetLoginFailures(ctx, u.ID); err != nil {
			return err
		}
		u.LoginAttempts = 0
		u.LockedUntil = nil
	}
	return nil
}
