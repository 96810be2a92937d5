package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/vidgen/internal/archive"
	"github.com/desertthunder/vidgen/internal/formatter"
	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/shared"
	"github.com/desertthunder/vidgen/internal/tasks"
	"github.com/urfave/cli/v3"
)

// VideoGenerate submits a prompt through the gallery and optionally waits for the result.
func (r *Runner) VideoGenerate(ctx context.Context, cmd *cli.Command) error {
	prompt := cmd.StringArg("prompt")
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}

	res := r.gallery.GenerateVideo(ctx, prompt, cmd.Bool("story"))
	if err := res.Err(shared.ErrGenerationFailed); err != nil {
		return err
	}

	video := res.Video
	r.writePlain("✓ Generation started\n")
	r.writePlain("ID: %s\nStatus: %s\n", video.VideoID, video.Status)
	if msg := video.MessageOr(""); msg != "" {
		r.writePlain("Message: %s\n", msg)
	}

	if !cmd.Bool("watch") {
		return r.writePlainln("Run 'vidgen video watch %s' to follow it.", video.VideoID)
	}
	return r.watch(ctx, video.VideoID, r.config.Gallery.PollInterval())
}

// VideoList prints the gallery. Online listings refresh the local cache.
func (r *Runner) VideoList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var videos []models.Video
	if cmd.Bool("offline") {
		videos, err = r.cache.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to read cache: %w", err)
		}
	} else {
		videos, err = r.videos.List(ctx)
		if err != nil {
			return err
		}
		if err := r.cache.ReplaceVideos(ctx, videos); err != nil {
			r.logger.Warn("failed to cache videos", "error", err)
		}
	}
	r.logger.Debug("listing videos", "count", len(videos), "format", format)

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(videos, format, r.videos.MediaURL, path); err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %d videos to %s\n", len(videos), path)
	}

	data, err := formatter.Render(videos, format, r.videos.MediaURL)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		return r.writePlain("\n")
	}
	return nil
}

// VideoWatch polls a video until it is completed or failed.
func (r *Runner) VideoWatch(ctx context.Context, cmd *cli.Command) error {
	interval := cmd.Duration("interval")
	if interval <= 0 {
		interval = r.config.Gallery.PollInterval()
	}
	return r.watch(ctx, cmd.StringArg("id"), interval)
}

func (r *Runner) watch(ctx context.Context, id string, interval time.Duration) error {
	progress, wait := r.printProgress()
	video, err := r.engine.Watch(ctx, id, interval, progress)
	wait()

	if err != nil {
		if video != nil && errors.Is(err, shared.ErrGenerationFailed) {
			r.writePlain("✗ %s failed: %s\n", id, video.MessageOr("no details"))
		}
		return err
	}

	r.writePlain("✓ %s completed\n", id)
	if video.Ready() {
		r.writePlain("Media: %s\n", r.videos.MediaURL(id))
	}
	return nil
}

// VideoOpen opens the public media URL in the system browser.
func (r *Runner) VideoOpen(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}

	url := r.videos.MediaURL(id)
	r.logger.Debug("opening media", "url", url)
	if err := shared.OpenBrowser(url); err != nil {
		r.writePlain("Open this URL in your browser:\n%s\n", url)
		return err
	}
	return r.writePlain("✓ Opened %s\n", url)
}

// VideoDownload saves one video, or every completed video with --all.
func (r *Runner) VideoDownload(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("output")
	if dir == "" {
		dir = r.config.Gallery.DownloadDir
	}
	overwrite := cmd.Bool("overwrite")

	if !cmd.Bool("all") {
		id := cmd.StringArg("id")
		if id == "" {
			return fmt.Errorf("%w: video id or --all", shared.ErrMissingArgument)
		}

		res := r.engine.Download(ctx, id, dir, overwrite)
		if res.Error != nil {
			return res.Error
		}
		if res.Skipped {
			return r.writePlain("%s already exists, use --overwrite to replace it\n", res.Path)
		}
		return r.writePlain("✓ Saved %s (%d bytes)\n", res.Path, res.Bytes)
	}

	videos, err := r.videos.List(ctx)
	if err != nil {
		return err
	}

	progress, wait := r.printProgress()
	result, err := r.engine.DownloadAll(ctx, progress, videos, tasks.DownloadOpts{
		OutputDir:  dir,
		NumWorkers: cmd.Int("workers"),
		RateLimit:  r.config.Gallery.DownloadRate,
		Overwrite:  overwrite,
	})
	wait()

	if result != nil {
		r.writePlainHeader("Download summary")
		r.writePlain("Ready videos: %d\nDownloaded: %d\nSkipped: %d\nFailed: %d\n",
			result.Total, result.Downloaded, result.Skipped, result.Failed)
		if result.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", result.ManifestPath)
		}
	}
	return err
}

// VideoArchive streams a video's media into the configured bucket.
func (r *Runner) VideoArchive(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}

	archiver, err := archive.New(ctx, r.config.Archive, r.videos, r.logger)
	if err != nil {
		return err
	}

	obj, err := archiver.Archive(ctx, id)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Archived %s to s3://%s/%s (%d bytes)\n", obj.VideoID, obj.Bucket, obj.Key, obj.Bytes)
}

// printProgress drains updates onto the output until the returned wait func is called.
func (r *Runner) printProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Total > 0 {
				r.writePlain("  [%d/%d] %s\n", update.Step, update.Total, update.Message)
			} else {
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()
	return progress, func() {
		close(progress)
		<-done
	}
}
