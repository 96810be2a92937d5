// Package gallery tracks the video list and generation requests.
package gallery

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/services"
	"github.com/desertthunder/vidgen/internal/shared"
	"golang.org/x/oauth2"
)

const generationFailed = "Video generation failed"

// VideoClient is the subset of [services.VideoService] the manager needs.
type VideoClient interface {
	Generate(ctx context.Context, tok *oauth2.Token, req models.GenerateRequest) (*models.Video, error)
	List(ctx context.Context) ([]models.Video, error)
}

// VideoCacher mirrors the list into local storage.
type VideoCacher interface {
	ReplaceVideos(ctx context.Context, videos []models.Video) error
	CacheVideo(ctx context.Context, video models.Video) error
}

// Options configures optional collaborators.
type Options struct {
	Cache  VideoCacher
	Logger *log.Logger
}

// State is a snapshot of the gallery.
type State struct {
	Videos     []models.Video
	Loading    bool
	Generating bool
}

// Manager owns the video list and the loading/generating flags.
type Manager struct {
	client VideoClient
	tokens oauth2.TokenSource
	cache  VideoCacher
	logger *log.Logger

	mu         sync.Mutex
	videos     []models.Video
	fetching   int
	generating int
	seq        uint64
	subs       map[int]func(State)
	next       int
}

// New creates a [Manager]. tokens supplies the bearer credential for generation.
func New(client VideoClient, tokens oauth2.TokenSource, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{
		client: client,
		tokens: tokens,
		cache:  opts.Cache,
		logger: shared.WithLogger(logger, "component", "gallery"),
		videos: []models.Video{},
		subs:   make(map[int]func(State)),
	}
}

// Start performs the initial fetch. It does not depend on authentication.
func (m *Manager) Start(ctx context.Context) {
	m.FetchVideos(ctx)
}

// FetchVideos replaces the list with the server's. Failures leave the list untouched.
//
// Only the most recently issued fetch may apply its response; earlier ones that resolve
// late are dropped.
func (m *Manager) FetchVideos(ctx context.Context) {
	m.mu.Lock()
	m.fetching++
	m.seq++
	seq := m.seq
	snapshot := m.snapshot()
	m.mu.Unlock()
	m.publish(snapshot)

	var applied []models.Video
	defer func() {
		m.mu.Lock()
		m.fetching--
		snapshot := m.snapshot()
		m.mu.Unlock()
		m.publish(snapshot)

		if applied != nil && m.cache != nil {
			if err := m.cache.ReplaceVideos(ctx, applied); err != nil {
				m.logger.Warn("failed to cache videos", "error", err)
			}
		}
	}()

	videos, err := m.client.List(ctx)
	if err != nil {
		m.logger.Error("failed to fetch videos", "error", err)
		return
	}

	m.mu.Lock()
	if latest := m.seq; seq != latest {
		m.mu.Unlock()
		m.logger.Debug("discarding stale video list", "seq", seq, "latest", latest)
		return
	}
	m.videos = append([]models.Video(nil), videos...)
	m.mu.Unlock()

	m.warnDuplicates(videos)
	m.logger.Debug("fetched videos", "count", len(videos))
	applied = videos
}

// GenerateVideo submits a prompt and prepends the created record.
func (m *Manager) GenerateVideo(ctx context.Context, prompt string, isStory bool) models.Result {
	req := models.GenerateRequest{Prompt: prompt, IsStory: isStory}
	if err := req.Validate(); err != nil {
		return models.Fail(err.Error())
	}

	m.mu.Lock()
	m.generating++
	snapshot := m.snapshot()
	m.mu.Unlock()
	m.publish(snapshot)

	defer func() {
		m.mu.Lock()
		m.generating--
		snapshot := m.snapshot()
		m.mu.Unlock()
		m.publish(snapshot)
	}()

	tok, err := m.tokenOrNil()
	if err != nil {
		m.logger.Warn("generation without token", "error", err)
		return models.Fail(shared.ErrNotAuthenticated.Error())
	}

	video, err := m.client.Generate(ctx, tok, req)
	if err != nil {
		m.logger.Error("generation failed", "error", err)
		return models.Fail(services.DetailMessage(err, generationFailed))
	}

	m.mu.Lock()
	m.videos = append([]models.Video{*video}, m.videos...)
	m.mu.Unlock()

	if m.cache != nil {
		if err := m.cache.CacheVideo(ctx, *video); err != nil {
			m.logger.Warn("failed to cache video", "video_id", video.VideoID, "error", err)
		}
	}

	m.logger.Info("generation started", "video_id", video.VideoID, "status", video.Status)
	return models.Result{Success: true, Video: video}
}

// State returns a copy of the current gallery.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Videos returns a copy of the current list.
func (m *Manager) Videos() []models.Video {
	return m.State().Videos
}

// Subscribe registers fn to receive every state change. The returned func unregisters it.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) tokenOrNil() (*oauth2.Token, error) {
	if m.tokens == nil {
		return nil, shared.ErrNotAuthenticated
	}
	tok, err := m.tokens.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return tok, nil
}

func (m *Manager) warnDuplicates(videos []models.Video) {
	seen := make(map[string]struct{}, len(videos))
	for _, v := range videos {
		if _, ok := seen[v.VideoID]; ok {
			m.logger.Warn("duplicate video id in list", "video_id", v.VideoID)
			continue
		}
		seen[v.VideoID] = struct{}{}
	}
}

// snapshot must be called with mu held.
func (m *Manager) snapshot() State {
	return State{
		Videos:     append(make([]models.Video, 0, len(m.videos)), m.videos...),
		Loading:    m.fetching > 0,
		Generating: m.generating > 0,
	}
}

func (m *Manager) publish(s State) {
	m.mu.Lock()
	subs := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
