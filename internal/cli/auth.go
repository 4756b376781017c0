package cli

import (
	"context"
	"errors"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/filex"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register creates an account and, if a code arrives, offers to confirm it
// right away. An empty code postpones confirmation to the confirm command.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.account.Register(ctx, email, username, string(password)); err != nil {
		if errors.Is(err, common.ErrDeliveryFailed) {
			a.say("Account created, but the code could not be sent. Use 'resend' to try again.")
			return nil
		}
		return err
	}

	a.say("A verification code was sent to %s", email)
	return a.confirmWith(ctx, email)
}

// Confirm asks for an email and the registration code sent to it.
func (a *App) Confirm(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	return a.confirmWith(ctx, email)
}

func (a *App) confirmWith(ctx context.Context, email string) error {
	code, err := getSimpleText(a.reader, "Enter verification code (empty to skip)", a.out)
	if err != nil {
		return err
	}
	if code == "" {
		a.say("Confirmation postponed. Use 'confirm' when the code arrives.")
		return nil
	}

	if err := a.account.ConfirmRegistration(ctx, email, code); err != nil {
		return err
	}
	a.say("Email confirmed. You can log in now.")
	return nil
}

// Resend mails a fresh registration code.
func (a *App) Resend(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.account.ResendRegistrationCode(ctx, email); err != nil {
		return err
	}
	a.say("A new code was sent to %s", email)
	return nil
}

// Login runs the whole login protocol: password, emailed code, session.
// The session token is cached in the token file for silent re-login.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	challenge, err := a.account.Authenticate(ctx, email, string(password))
	if err != nil {
		return err
	}

	a.say("A login code was sent to %s (valid until %s)", challenge.Email, challenge.ExpiresAt.Local().Format("15:04"))
	code, err := getSimpleText(a.reader, "Enter login code", a.out)
	if err != nil {
		return err
	}
	if err := a.account.ConfirmLogin(ctx, challenge.Email, code); err != nil {
		return err
	}

	res, err := a.account.CompleteLogin(ctx, challenge.Email, a.device, "")
	if err != nil {
		return err
	}

	a.token = res.Token
	profile := res.Profile
	a.profile = &profile

	if err := filex.WriteToken(a.tokenFile, res.Token); err != nil {
		a.log.Warn(ctx, "failed to cache session token", "path", a.tokenFile, "error", err)
	}

	a.say("Welcome, %s!", profile.Username)
	return nil
}

// Whoami prints the signed-in user, re-validating the cached session.
func (a *App) Whoami(ctx context.Context) error {
	if a.token == "" {
		if err := a.restore(ctx); err != nil {
			return err
		}
	} else {
		p, err := a.account.ValidateSession(ctx, a.token)
		if err != nil {
			a.forget(ctx)
			return err
		}
		a.profile = p
	}

	p := a.profile
	a.say("%s <%s>", p.Username, p.Email)
	a.say("role: %s", p.Role)
	a.say("device: %s", p.DeviceInfo)
	if p.AvatarPath != "" {
		a.say("avatar: %s", p.AvatarPath)
	}
	return nil
}

// Logout revokes the session and drops the cached token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.account.Logout(ctx, a.token); err != nil {
		return err
	}
	a.forget(ctx)
	a.say("Logged out")
	return nil
}

func (a *App) forget(ctx context.Context) {
	a.token = ""
	a.profile = nil
	if err := filex.RemoveToken(a.tokenFile); err != nil {
		a.log.Warn(ctx, "failed to remove token file", "path", a.tokenFile, "error", err)
	}
}

// usageError reports a malformed command line.
type usageError string

func (e usageError) Error() string { return "usage: " + string(e) }

func usage(s string) error { return usageError(s) }
