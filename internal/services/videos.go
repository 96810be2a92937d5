package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/shared"
	"golang.org/x/oauth2"
)

// Media is an open video stream. Close must be called.
type Media struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

func (m *Media) Read(p []byte) (int, error) { return m.Body.Read(p) }
func (m *Media) Close() error               { return m.Body.Close() }

// VideoService talks to the generation, listing and media endpoints.
type VideoService struct {
	api *APIService
}

// NewVideoService creates a [VideoService] on top of api.
func NewVideoService(api *APIService) *VideoService {
	return &VideoService{api: api}
}

// Generate submits req with tok as the bearer credential and returns the created record.
func (s *VideoService) Generate(ctx context.Context, tok *oauth2.Token, req models.GenerateRequest) (*models.Video, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, shared.ErrNotAuthenticated
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.api.Post(ctx, PathGenerate, body, WithBearer(tok))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var video models.Video
	if err := resp.Decode(&video); err != nil {
		return nil, err
	}
	if video.VideoID == "" {
		return nil, fmt.Errorf("%w: response missing video_id", shared.ErrAPIRequest)
	}
	return &video, nil
}

// List returns the gallery in server order. No credential is sent.
func (s *VideoService) List(ctx context.Context) ([]models.Video, error) {
	resp, err := s.api.Get(ctx, PathListVideos)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	videos := []models.Video{}
	if err := resp.Decode(&videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// MediaURL is the public URL of a video's media stream.
func (s *VideoService) MediaURL(videoID string) string {
	return s.api.URL(PathPublicVideo + url.PathEscape(videoID))
}

// OpenMedia streams a video's media. 404s map to [shared.ErrVideoNotFound] or
// [shared.ErrVideoNotReady] depending on the backend's detail.
func (s *VideoService) OpenMedia(ctx context.Context, videoID string) (*Media, error) {
	if videoID == "" {
		return nil, fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}

	resp, err := s.api.Stream(ctx, PathPublicVideo+url.PathEscape(videoID))
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == 404 {
			if apiErr.Detail == "Video not ready" {
				return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotReady, videoID)
			}
			return nil, fmt.Errorf("%w: %s: %s", shared.ErrVideoNotFound, videoID, apiErr.Detail)
		}
		return nil, err
	}

	return &Media{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}
