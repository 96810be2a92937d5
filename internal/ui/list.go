package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/vidgen/internal/formatter"
	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/shared"
)

var _ list.Item = videoItem{}

// videoItem wraps [models.Video] to implement [list.Item].
type videoItem struct {
	video models.Video
}

func (i videoItem) FilterValue() string { return i.video.VideoID }
func (i videoItem) Title() string {
	return fmt.Sprintf("%s  %s", i.video.VideoID, styles.Badge(i.video.Status))
}

func (i videoItem) Description() string {
	created := i.video.CreatedAtOr(formatter.TimeLayout, "unknown time")
	msg := i.video.MessageOr("")
	if msg == "" {
		return created
	}
	return fmt.Sprintf("%s • %s", created, shared.Truncate(msg, 60))
}

func videoItems(videos []models.Video) []list.Item {
	items := make([]list.Item, len(videos))
	for i, v := range videos {
		items[i] = videoItem{video: v}
	}
	return items
}
