// package formatter renders video lists as text tables, CSV, Markdown or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "txt"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// TimeLayout is used for created_at in every format but JSON.
const TimeLayout = "2006-01-02 15:04"

// Formats lists the accepted values for --format.
var Formats = []string{string(FormatText), string(FormatCSV), string(FormatMarkdown), string(FormatJSON)}

// ParseFormat accepts a format name or one of its aliases (text, md).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidFlag, s, strings.Join(Formats, ", "))
}

// MediaURLFunc resolves the public media URL of a video.
type MediaURLFunc func(videoID string) string

// Render encodes videos in format. mediaURL may be nil.
func Render(videos []models.Video, format Format, mediaURL MediaURLFunc) ([]byte, error) {
	switch format {
	case FormatCSV:
		return VideosToCSV(videos)
	case FormatMarkdown:
		return VideosToMarkdown(videos, mediaURL), nil
	case FormatJSON:
		return shared.MarshalJSON(videos, true)
	default:
		return VideosToText(videos), nil
	}
}

// VideosToText draws a bordered table with columns: ID, Status, Created, Prompt
func VideosToText(videos []models.Video) []byte {
	if len(videos) == 0 {
		return []byte("No videos yet.\n")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "STATUS", "CREATED", "PROMPT")

	for _, v := range videos {
		t.Row(v.VideoID, string(v.Status), v.CreatedAtOr(TimeLayout, "-"), shared.Truncate(v.MessageOr("-"), 60))
	}

	return []byte(t.String() + "\n")
}

// VideosToCSV converts videos to CSV with columns: ID, Status, Created, Prompt, Path
func VideosToCSV(videos []models.Video) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Status", "Created", "Prompt", "Path"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, v := range videos {
		path := ""
		if v.VideoPath != nil {
			path = *v.VideoPath
		}
		record := []string{v.VideoID, string(v.Status), v.CreatedAtOr(TimeLayout, ""), v.MessageOr(""), path}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// VideosToMarkdown lists videos newest first, linking completed ones to their media.
func VideosToMarkdown(videos []models.Video, mediaURL MediaURLFunc) []byte {
	var buf bytes.Buffer

	buf.WriteString("# My Videos\n\n")
	buf.WriteString(fmt.Sprintf("**Videos**: %d\n\n", len(videos)))

	for i, v := range videos {
		title := v.MessageOr("Untitled")
		if v.Ready() && mediaURL != nil {
			title = fmt.Sprintf("[%s](%s)", title, mediaURL(v.VideoID))
		}
		buf.WriteString(fmt.Sprintf("%d. %s `%s` (%s, %s)\n", i+1, title, v.VideoID, v.Status, v.CreatedAtOr(TimeLayout, "unknown date")))
	}

	return buf.Bytes()
}

// WriteExport renders videos and writes them to path, creating parent directories.
func WriteExport(videos []models.Video, format Format, mediaURL MediaURLFunc, path string) error {
	data, err := Render(videos, format, mediaURL)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// WriteManifest writes v as indented JSON to path.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
