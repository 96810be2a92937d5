package main

import (
	"context"

	"github.com/desertthunder/vidgen/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges credentials for a token and persists it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")

	r.logger.Info("logging in", "username", username, "api", r.config.API.BaseURL)
	res := r.session.Login(ctx, username, cmd.String("password"))
	if err := res.Err(shared.ErrAuthFailed); err != nil {
		return err
	}

	return r.writePlain("✓ Logged in as %s\n", username)
}

// AuthRegister creates an account and logs in with it.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")

	r.logger.Info("registering", "username", username, "api", r.config.API.BaseURL)
	res := r.session.Register(ctx, username, cmd.String("password"))
	if err := res.Err(shared.ErrAuthFailed); err != nil {
		return err
	}

	return r.writePlain("✓ Registered and logged in as %s\n", username)
}

// AuthLogout erases the stored token. It succeeds when no token is stored.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.session.Logout()
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus verifies the stored token. A token the backend rejects is erased.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	r.session.Initialize(ctx)
	state := r.session.State()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"authenticated": state.Authenticated,
			"api":           r.config.API.BaseURL,
		}, true)
	}

	if !state.Authenticated {
		return r.writePlain("✗ Not logged in\nRun 'vidgen auth login' to start a session.\n")
	}
	return r.writePlain("✓ Logged in\nAPI: %s\n", r.config.API.BaseURL)
}
