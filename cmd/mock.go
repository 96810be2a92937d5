package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/vidgen/internal/server"
	"github.com/urfave/cli/v3"
)

// Mock serves the in-memory backend until interrupted.
func (r *Runner) Mock(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Mock
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	completeAfter := cfg.CompleteAfter()
	if d := cmd.Duration("complete-after"); d > 0 {
		completeAfter = d
	}

	backend := server.NewMockBackend(server.MockOptions{
		CompleteAfter: completeAfter,
		Clock:         r.clock,
		Logger:        r.logger,
	})

	r.logger.Info("starting mock backend", "addr", cfg.Addr(), "complete_after", completeAfter)
	r.writePlain("Mock backend routes:\n")
	for _, route := range backend.Routes() {
		r.writePlain("  %s\n", route)
	}

	if err := server.Serve(ctx, cfg.Addr(), backend, r.logger, nil); err != nil {
		return fmt.Errorf("mock backend stopped: %w", err)
	}
	return nil
}
