package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges email and password for a session and persists it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	sess, err := lib.Login(ctx, models.Credentials{
		Email:    strings.TrimSpace(cmd.String("email")),
		Password: cmd.String("password"),
	})
	if err != nil {
		return err
	}

	r.logger.Info("logged in", "uid", sess.User.UID)
	return r.writePlain("✓ Logged in as %s\n", sess.User.DisplayName())
}

// AuthSignup creates an account and logs in with it.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	sess, err := lib.Signup(ctx, models.Credentials{
		Username: strings.TrimSpace(cmd.String("username")),
		Email:    strings.TrimSpace(cmd.String("email")),
		Password: cmd.String("password"),
	})
	if err != nil {
		return err
	}

	r.logger.Info("signed up", "uid", sess.User.UID)
	return r.writePlain("✓ Account created, logged in as %s\n", sess.User.DisplayName())
}

// AuthLogout clears the local session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	if lib.Session() == nil {
		return r.writePlain("Not logged in\n")
	}
	if err := lib.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus shows the persisted session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	sess := lib.Session()
	status := map[string]any{"authenticated": sess != nil, "api": r.api.BaseURL()}
	if sess != nil {
		status["uid"] = sess.User.UID
		status["username"] = sess.User.Username
		status["email"] = sess.User.Email
		status["vip"] = sess.User.IsVIP
	}

	return r.render(cmd, status, func() error {
		r.writePlain("API: %s\n", r.api.BaseURL())
		if sess == nil {
			return r.writePlain("Authentication: ✗ Not logged in\n")
		}
		r.writePlain("Authentication: ✓ Logged in as %s (uid %s)\n", sess.User.DisplayName(), sess.User.UID)
		if sess.User.IsVIP {
			r.writePlain("VIP: ✓\n")
		}
		return nil
	})
}

// AuthVIP upgrades the current account.
func (r *Runner) AuthVIP(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	if err := lib.UpgradeVIP(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ VIP enabled\n")
}
