// package tasks implements polling and bulk media operations against the video backend.
package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/services"
	"github.com/desertthunder/vidgen/internal/shared"
	"github.com/jonboulle/clockwork"
)

// MediaClient defines the backend calls the engine needs.
type MediaClient interface {
	List(ctx context.Context) ([]models.Video, error)
	OpenMedia(ctx context.Context, videoID string) (*services.Media, error)
}

// EngineOptions configures an [Engine]. Zero values select the real clock and a discarding logger.
type EngineOptions struct {
	Clock  clockwork.Clock
	Logger *log.Logger
}

// Engine runs watch and download operations.
type Engine struct {
	client MediaClient
	clock  clockwork.Clock
	logger *log.Logger
}

// NewEngine creates a new Engine backed by client.
func NewEngine(client MediaClient, opts EngineOptions) *Engine {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Engine{
		client: client,
		clock:  opts.Clock,
		logger: shared.WithLogger(opts.Logger, "component", "tasks"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Watch polls the gallery every interval until the video reaches a terminal status.
//
// The returned video is the last one observed, including when ctx ends first.
func (e *Engine) Watch(ctx context.Context, id string, interval time.Duration, progress chan<- ProgressUpdate) (*models.Video, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: poll interval must be positive", shared.ErrInvalidArgument)
	}

	for attempt := 1; ; attempt++ {
		video, err := e.find(ctx, id)
		if err != nil {
			return nil, err
		}

		e.sendProgress(progress, pollUpdate(attempt, video))
		e.logger.Debug("polled video", "video_id", id, "status", video.Status, "attempt", attempt)

		if video.Status.Terminal() {
			if video.Status == models.StatusFailed {
				return video, fmt.Errorf("%w: %s", shared.ErrGenerationFailed, id)
			}
			return video, nil
		}

		select {
		case <-ctx.Done():
			return video, ctx.Err()
		case <-e.clock.After(interval):
		}
	}
}

func (e *Engine) find(ctx context.Context, id string) (*models.Video, error) {
	videos, err := e.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	for i := range videos {
		if videos[i].VideoID == id {
			return &videos[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
}
