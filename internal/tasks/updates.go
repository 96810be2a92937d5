package tasks

import (
	"fmt"

	"github.com/desertthunder/vidgen/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unbounded
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	PollStatus Phase = iota
	DownloadMedia
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case PollStatus:
		return "poll_status"
	case DownloadMedia:
		return "download_media"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func pollUpdate(attempt int, v *models.Video) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollStatus,
		Step:    attempt,
		Message: fmt.Sprintf("Video %s is %s", v.VideoID, v.Status),
		Data:    *v,
	}
}

func downloadStartedUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadMedia,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Downloading %s...", id),
	}
}

func downloadFinishedUpdate(step, total int, res DownloadFileResult) ProgressUpdate {
	var msg string
	switch {
	case res.Error != nil:
		msg = fmt.Sprintf("Failed %s: %v", res.VideoID, res.Error)
	case res.Skipped:
		msg = fmt.Sprintf("Skipped %s (already downloaded)", res.VideoID)
	default:
		msg = fmt.Sprintf("Saved %s (%d bytes)", res.Path, res.Bytes)
	}
	return ProgressUpdate{
		Phase:   DownloadMedia,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s", path),
	}
}
