package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/vidgen/internal/formatter"
	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/shared"
	"golang.org/x/time/rate"
)

// ManifestName is the summary file written by [Engine.DownloadAll].
const ManifestName = "download_manifest.json"

// DownloadOpts contains configuration for bulk downloads.
type DownloadOpts struct {
	OutputDir  string  // Destination directory (default: videos)
	NumWorkers int     // Concurrent workers (default: 3, max: 10)
	RateLimit  float64 // Media requests per second (default: 2)
	Overwrite  bool    // Replace files that already exist
}

// DownloadFileResult is the outcome for a single video.
type DownloadFileResult struct {
	VideoID string `json:"video_id"`
	Path    string `json:"path,omitempty"`
	Bytes   int64  `json:"bytes"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   error  `json:"-"`
	Reason  string `json:"error,omitempty"`
}

// DownloadResult summarizes a bulk download.
type DownloadResult struct {
	OutputDirectory string               `json:"output_directory"`
	Total           int                  `json:"total"`
	Downloaded      int                  `json:"downloaded"`
	Skipped         int                  `json:"skipped"`
	Failed          int                  `json:"failed"`
	Results         []DownloadFileResult `json:"results"`
	ManifestPath    string               `json:"-"`
}

// FileName is the local name for a video's media.
func FileName(videoID string) string {
	return fmt.Sprintf("video_%s.mp4", videoID)
}

// checkVideoID rejects ids that cannot be used as a single file name component.
func checkVideoID(videoID string) error {
	if videoID == "" || strings.ContainsAny(videoID, `/\`) || strings.Contains(videoID, "..") {
		return fmt.Errorf("%w: unsafe video id %q", shared.ErrInvalidArgument, videoID)
	}
	return nil
}

// Download saves one video's media into dir. Existing files are kept unless overwrite is set.
func (e *Engine) Download(ctx context.Context, videoID, dir string, overwrite bool) DownloadFileResult {
	if err := checkVideoID(videoID); err != nil {
		return DownloadFileResult{VideoID: videoID}.fail(err)
	}
	res := DownloadFileResult{VideoID: videoID, Path: filepath.Join(dir, FileName(videoID))}

	if !overwrite {
		if info, err := os.Stat(res.Path); err == nil {
			res.Skipped = true
			res.Bytes = info.Size()
			return res
		}
	}

	media, err := e.client.OpenMedia(ctx, videoID)
	if err != nil {
		return res.fail(err)
	}
	defer media.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return res.fail(fmt.Errorf("failed to create output directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, ".video_*.part")
	if err != nil {
		return res.fail(fmt.Errorf("failed to create temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, media)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return res.fail(fmt.Errorf("failed to write media: %w", err))
	}

	if err := os.Rename(tmp.Name(), res.Path); err != nil {
		return res.fail(fmt.Errorf("failed to move media into place: %w", err))
	}

	res.Bytes = n
	e.logger.Debug("downloaded video", "video_id", videoID, "bytes", n, "path", res.Path)
	return res
}

func (r DownloadFileResult) fail(err error) DownloadFileResult {
	r.Error = err
	r.Reason = err.Error()
	return r
}

// DownloadAll saves every ready video concurrently with rate limiting and progress tracking,
// then writes a manifest into the output directory. Videos that are not ready are ignored.
func (e *Engine) DownloadAll(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	videos []models.Video,
	opts DownloadOpts,
) (*DownloadResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = "videos"
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ready := make([]string, 0, len(videos))
	for _, v := range videos {
		if v.Ready() {
			ready = append(ready, v.VideoID)
		}
	}

	result := &DownloadResult{
		OutputDirectory: opts.OutputDir,
		Total:           len(ready),
		Results:         make([]DownloadFileResult, 0, len(ready)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan string, len(ready))
	results := make(chan DownloadFileResult, len(ready))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.downloadWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, id := range ready {
			select {
			case <-ctx.Done():
				return
			case jobs <- id:
				e.sendProgress(prog, downloadStartedUpdate(i+1, len(ready), id))
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		switch {
		case res.Error != nil:
			result.Failed++
		case res.Skipped:
			result.Skipped++
		default:
			result.Downloaded++
		}
		e.sendProgress(prog, downloadFinishedUpdate(completed, len(ready), res))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("download completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if result.Failed > 0 {
		return result, fmt.Errorf("%w: %d of %d downloads failed", shared.ErrAPIRequest, result.Failed, result.Total)
	}
	return result, nil
}

// downloadWorker drains jobs, waiting on the shared limiter before each media request.
func (e *Engine) downloadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan string,
	results chan<- DownloadFileResult,
	opts DownloadOpts,
) {
	defer wg.Done()

	for id := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			results <- DownloadFileResult{VideoID: id}.fail(err)
			continue
		}
		results <- e.Download(ctx, id, opts.OutputDir, opts.Overwrite)
	}
}
