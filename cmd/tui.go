package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/vidgen/internal/shared"
	"github.com/desertthunder/vidgen/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive generator and gallery.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.open(); err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Options{
		Session:  r.session,
		Gallery:  r.gallery,
		MediaURL: r.videos.MediaURL,
	})

	if err := ui.Run(ctx, model); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
