package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/shared"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

var errDuplicateUser = fmt.Errorf("%w: username already registered", shared.ErrInvalidInput)

// PlaceholderMP4 is served for every completed video: a bare ftyp box.
var PlaceholderMP4 = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")

// pythonTimeLayout matches str(datetime) for values with microseconds.
const pythonTimeLayout = "2006-01-02 15:04:05.000000"

// MockOptions configures a [MockBackend].
type MockOptions struct {
	// CompleteAfter is how long a generation stays processing. Zero or negative leaves
	// generations processing until [MockBackend.SetStatus] is called.
	CompleteAfter time.Duration
	Clock         clockwork.Clock
	Logger        *log.Logger
	// BcryptCost defaults to bcrypt.MinCost.
	BcryptCost int
}

// Failure is a canned error response.
type Failure struct {
	Status int
	Detail any
}

type mockUser struct {
	id       int
	username string
	hash     []byte
}

type mockVideo struct {
	id        string
	userID    int
	status    models.VideoStatus
	message   string
	path      string
	createdAt time.Time
	seq       int
}

// MockBackend is an in-memory implementation of the video generation backend.
type MockBackend struct {
	clock         clockwork.Clock
	completeAfter time.Duration
	cost          int
	logger        *log.Logger
	router        *BasicRouter

	mu       sync.Mutex
	users    map[string]*mockUser
	tokens   map[string]string
	videos   map[string]*mockVideo
	failures map[string]Failure
	nextUser int
	nextSeq  int
}

// NewMockBackend creates a [MockBackend] with its routes registered.
func NewMockBackend(opts MockOptions) *MockBackend {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}

	m := &MockBackend{
		clock:         opts.Clock,
		completeAfter: opts.CompleteAfter,
		cost:          opts.BcryptCost,
		logger:        shared.WithLogger(opts.Logger, "component", "mock"),
		users:         make(map[string]*mockUser),
		tokens:        make(map[string]string),
		videos:        make(map[string]*mockVideo),
		failures:      make(map[string]Failure),
	}

	r := NewBasicRouter()
	r.Use(RequestID(), Logger(m.logger), Recoverer(m.logger), m.injectFailures)
	r.Handle(http.MethodPost, "/auth/token", http.HandlerFunc(m.handleToken))
	r.Handle(http.MethodPost, "/auth/register", http.HandlerFunc(m.handleRegister))
	r.Handle(http.MethodGet, "/auth/verify", http.HandlerFunc(m.handleVerify))
	r.Handle(http.MethodPost, "/generate-video", http.HandlerFunc(m.handleGenerate))
	r.Handle(http.MethodGet, "/my-videos", http.HandlerFunc(m.handleList))
	r.Handle(http.MethodGet, "/public-video/", http.HandlerFunc(m.handlePublicVideo))
	r.Handle(http.MethodGet, "/video/", http.HandlerFunc(m.handleOwnerVideo))
	r.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	}))
	m.router = r

	return m
}

// Routes lists the backend's endpoints as "METHOD path".
func (m *MockBackend) Routes() []string {
	var routes []string
	for _, route := range m.router.Routes() {
		if route.Path == "/" {
			continue
		}
		routes = append(routes, route.String())
	}
	return routes
}

func (m *MockBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.router.ServeHTTP(w, r)
}

// Fail makes every request to path answer with f until [MockBackend.ClearFailures].
func (m *MockBackend) Fail(path string, f Failure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = f
}

// ClearFailures removes all injected failures.
func (m *MockBackend) ClearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = make(map[string]Failure)
}

// SetStatus moves a video to status. Completed videos get a media path.
func (m *MockBackend) SetStatus(id string, status models.VideoStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.videos[id]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
	}
	v.status = status
	if status == models.StatusCompleted {
		v.path = fmt.Sprintf("videos/%s.mp4", id)
	}
	return nil
}

// Videos returns the gallery as the list endpoint would.
func (m *MockBackend) Videos() []models.Video {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked()
}

// AddUser registers a user directly, bypassing HTTP.
func (m *MockBackend) AddUser(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; ok {
		return errDuplicateUser
	}
	m.nextUser++
	m.users[username] = &mockUser{id: m.nextUser, username: username, hash: hash}
	return nil
}

func (m *MockBackend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		f, ok := m.failures[r.URL.Path]
		m.mu.Unlock()
		if ok {
			writeDetail(w, f.Status, f.Detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// passwordForm reads an OAuth2 password request form, answering 422 when fields are missing.
func passwordForm(w http.ResponseWriter, r *http.Request) (username, password string, ok bool) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, validationError("body", "form", "invalid form body"))
		return "", "", false
	}

	username, password = r.PostForm.Get("username"), r.PostForm.Get("password")
	var missing []map[string]any
	for field, value := range map[string]string{"username": username, "password": password} {
		if value == "" {
			missing = append(missing, validationError("body", field, "field required"))
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool {
			return fmt.Sprint(missing[i]["loc"]) < fmt.Sprint(missing[j]["loc"])
		})
		writeDetail(w, http.StatusUnprocessableEntity, missing)
		return "", "", false
	}
	return username, password, true
}

func (m *MockBackend) handleToken(w http.ResponseWriter, r *http.Request) {
	username, password, ok := passwordForm(w, r)
	if !ok {
		return
	}

	m.mu.Lock()
	user, found := m.users[username]
	m.mu.Unlock()

	if !found || bcrypt.CompareHashAndPassword(user.hash, []byte(password)) != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	writeJSON(w, http.StatusOK, m.issueToken(username))
}

func (m *MockBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	username, password, ok := passwordForm(w, r)
	if !ok {
		return
	}

	if err := m.AddUser(username, password); err != nil {
		if errors.Is(err, errDuplicateUser) {
			writeDetail(w, http.StatusBadRequest, "Username already registered")
			return
		}
		m.logger.Error("failed to create user", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	m.logger.Info("registered user", "username", username)
	writeJSON(w, http.StatusOK, m.issueToken(username))
}

func (m *MockBackend) handleVerify(w http.ResponseWriter, r *http.Request) {
	user, ok := m.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "username": user.username})
}

func (m *MockBackend) handleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := m.currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Prompt  *string `json:"prompt"`
		IsStory bool    `json:"is_story"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]any{validationError("body", "", "invalid JSON body")})
		return
	}
	if req.Prompt == nil {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]any{validationError("body", "prompt", "field required")})
		return
	}

	id := shared.ShortID(8)
	m.mu.Lock()
	m.nextSeq++
	m.videos[id] = &mockVideo{
		id:        id,
		userID:    user.id,
		status:    models.StatusProcessing,
		message:   *req.Prompt,
		createdAt: m.clock.Now(),
		seq:       m.nextSeq,
	}
	m.mu.Unlock()

	if m.completeAfter > 0 {
		m.clock.AfterFunc(m.completeAfter, func() {
			if err := m.SetStatus(id, models.StatusCompleted); err == nil {
				m.logger.Info("generation completed", "video_id", id)
			}
		})
	}

	m.logger.Info("generation started", "video_id", id, "username", user.username, "is_story", req.IsStory)
	writeJSON(w, http.StatusOK, map[string]any{
		"video_id":   id,
		"status":     models.StatusProcessing,
		"message":    shared.Truncate(*req.Prompt, 100),
		"video_path": nil,
		"created_at": nil,
	})
}

func (m *MockBackend) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, m.Videos())
}

func (m *MockBackend) handlePublicVideo(w http.ResponseWriter, r *http.Request) {
	m.serveMedia(w, strings.TrimPrefix(r.URL.Path, "/public-video/"), nil)
}

func (m *MockBackend) handleOwnerVideo(w http.ResponseWriter, r *http.Request) {
	user, ok := m.currentUser(w, r)
	if !ok {
		return
	}
	m.serveMedia(w, strings.TrimPrefix(r.URL.Path, "/video/"), user)
}

// serveMedia streams the placeholder media. owner, when set, must own the video.
func (m *MockBackend) serveMedia(w http.ResponseWriter, id string, owner *mockUser) {
	m.mu.Lock()
	v, ok := m.videos[id]
	var status models.VideoStatus
	var path string
	var userID int
	if ok {
		status, path, userID = v.status, v.path, v.userID
	}
	m.mu.Unlock()

	switch {
	case !ok:
		writeDetail(w, http.StatusNotFound, "Video not found")
	case owner != nil && owner.id != userID:
		writeDetail(w, http.StatusForbidden, "Access denied")
	case status != models.StatusCompleted || path == "":
		writeDetail(w, http.StatusNotFound, "Video not ready")
	default:
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="video_%s.mp4"`, id))
		w.Header().Set("Content-Length", fmt.Sprint(len(PlaceholderMP4)))
		_, _ = w.Write(PlaceholderMP4)
	}
}

// currentUser resolves the bearer token, answering 401 the way the backend does.
func (m *MockBackend) currentUser(w http.ResponseWriter, r *http.Request) (*mockUser, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	username, ok := m.tokens[token]
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	return m.users[username], true
}

func (m *MockBackend) issueToken(username string) map[string]string {
	token := shared.GenerateID()
	m.mu.Lock()
	m.tokens[token] = username
	m.mu.Unlock()
	return map[string]string{"access_token": token, "token_type": "bearer"}
}

// listLocked renders every video newest first. Must be called with mu held.
func (m *MockBackend) listLocked() []models.Video {
	all := make([]*mockVideo, 0, len(m.videos))
	for _, v := range m.videos {
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].createdAt.Equal(all[j].createdAt) {
			return all[i].createdAt.After(all[j].createdAt)
		}
		return all[i].seq > all[j].seq
	})

	out := make([]models.Video, 0, len(all))
	for _, v := range all {
		msg := v.message
		ts, _ := models.ParseTimestamp(v.createdAt.UTC().Format(pythonTimeLayout))
		video := models.Video{VideoID: v.id, Status: v.status, Message: &msg, CreatedAt: &ts}
		if v.path != "" {
			path := v.path
			video.VideoPath = &path
		}
		out = append(out, video)
	}
	return out
}

func validationError(location, field, msg string) map[string]any {
	loc := []string{location}
	if field != "" {
		loc = append(loc, field)
	}
	return map[string]any{"loc": loc, "msg": msg, "type": "value_error"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}
