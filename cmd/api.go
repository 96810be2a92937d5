package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/vidgen/internal/services"
	"github.com/desertthunder/vidgen/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the backend
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	opts, err := r.requestOptions(cmd.Bool("auth"))
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)
	resp, err := r.api.Get(ctx, path, opts...)
	if err != nil {
		return err
	}
	return r.writeResponse(resp, cmd.Bool("pretty"))
}

// APIPost makes a direct POST request to the backend
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}

	opts, err := r.requestOptions(cmd.Bool("auth"))
	if err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)
	resp, err := r.api.Post(ctx, path, []byte(data), opts...)
	if err != nil {
		return err
	}
	return r.writeResponse(resp, true)
}

func (r *Runner) requestOptions(auth bool) ([]services.RequestOption, error) {
	if !auth {
		return nil, nil
	}
	tok, err := r.session.Token()
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return nil, fmt.Errorf("%w: run 'vidgen auth login' first", err)
		}
		return nil, err
	}
	return []services.RequestOption{services.WithBearer(tok)}, nil
}

// writeResponse prints the body and turns non-2xx responses into errors.
func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if resp.IsJSON {
		if err := r.writeJSON(resp.JSONData, pretty); err != nil {
			return err
		}
	} else if len(resp.Body) > 0 {
		r.output.Write(resp.Body)
		r.output.Write([]byte("\n"))
	}
	return resp.Err()
}
