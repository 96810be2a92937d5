package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidgen/internal/formatter"
	"github.com/desertthunder/vidgen/internal/gallery"
	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/session"
	"github.com/desertthunder/vidgen/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CheckingView ViewState = iota
	LoginView
	DashboardView
	GalleryView
)

// SessionManager is the part of [session.Manager] the views use.
type SessionManager interface {
	Initialize(ctx context.Context)
	Login(ctx context.Context, username, password string) models.Result
	Register(ctx context.Context, username, password string) models.Result
	Logout()
	State() session.State
	Subscribe(fn func(session.State)) (cancel func())
}

// GalleryManager is the part of [gallery.Manager] the views use.
type GalleryManager interface {
	Start(ctx context.Context)
	FetchVideos(ctx context.Context)
	GenerateVideo(ctx context.Context, prompt string, isStory bool) models.Result
	State() gallery.State
	Subscribe(fn func(gallery.State)) (cancel func())
}

// Options wires the managers and media helpers into a [Model].
type Options struct {
	Session  SessionManager
	Gallery  GalleryManager
	MediaURL formatter.MediaURLFunc
	// Open launches a URL. Defaults to [shared.OpenBrowser].
	Open func(url string) error
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	session  SessionManager
	gallery  GalleryManager
	mediaURL formatter.MediaURLFunc
	open     func(string) error

	view   ViewState
	auth   session.State
	videos gallery.State

	register   bool
	fields     []textinput.Model
	focus      int
	submitting bool

	prompt textinput.Model
	story  bool

	videoList list.Model
	spinner   spinner.Model
	notice    string
	err       string

	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "Username: "
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	prompt := textinput.New()
	prompt.Placeholder = "Describe the video you want"
	prompt.Prompt = "> "
	prompt.CharLimit = 500

	videoList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	videoList.Title = "My Videos"
	videoList.SetShowHelp(false)
	videoList.SetFilteringEnabled(false)

	open := opts.Open
	if open == nil {
		open = shared.OpenBrowser
	}

	m := &Model{
		ctx:       ctx,
		session:   opts.Session,
		gallery:   opts.Gallery,
		mediaURL:  opts.MediaURL,
		open:      open,
		view:      DashboardView,
		auth:      opts.Session.State(),
		videos:    opts.Gallery.State(),
		fields:    []textinput.Model{username, password},
		prompt:    prompt,
		videoList: videoList,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.warn)),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.syncSession()
	return m
}

// Run starts the program and forwards manager changes into it until it exits.
func Run(ctx context.Context, m *Model, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)...)

	stopSession := m.session.Subscribe(func(session.State) { p.Send(sessionChangedMsg()) })
	defer stopSession()
	stopGallery := m.gallery.Subscribe(func(gallery.State) { p.Send(galleryChangedMsg()) })
	defer stopGallery()

	_, err := p.Run()
	return err
}

// Init resolves the stored session and loads the gallery concurrently.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, m.initialize(), m.refresh(true))
}

// Current is the view actually rendered. Authenticated views are guarded: until the
// session resolves the check view is shown, and without a session the login view is.
func (m *Model) Current() ViewState {
	switch {
	case m.auth.Loading:
		return CheckingView
	case !m.auth.Authenticated:
		return LoginView
	default:
		return m.view
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.videoList.SetSize(max(msg.Width-4, 0), max(msg.Height-8, 0))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.Current() {
		case LoginView:
			return m.handleLoginKeys(msg)
		case DashboardView:
			return m.handleDashboardKeys(msg)
		case GalleryView:
			return m.handleGalleryKeys(msg)
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSessionChanged:
		return m, m.syncSession()
	case MsgGalleryChanged:
		return m, m.syncGallery()
	case MsgAuthDone:
		done := msg.data.(authDone)
		m.submitting = false
		if !done.res.Success {
			m.err = done.res.Error
			return m, m.syncSession()
		}
		m.err = ""
		m.notice = ""
		m.fields[1].Reset()
		m.view = DashboardView
		return m, m.syncSession()
	case MsgGenerateDone:
		res := msg.data.(models.Result)
		cmd := m.syncGallery()
		if !res.Success {
			m.err = res.Error
			return m, cmd
		}
		m.err = ""
		m.prompt.Reset()
		if res.Video != nil {
			m.notice = fmt.Sprintf("Generation started: %s (%s)", res.Video.VideoID, res.Video.Status)
		}
		return m, cmd
	case MsgOpenDone:
		done := msg.data.(openDone)
		if done.err != nil {
			m.err = fmt.Sprintf("Could not open %s: %v", done.url, done.err)
		} else {
			m.err = ""
			m.notice = "Opened " + done.url
		}
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.next):
		return m, m.cycleFocus(msg.String() == "shift+tab")
	case key.Matches(msg, m.keys.mode):
		m.register = !m.register
		m.err = ""
		return m, nil
	case key.Matches(msg, m.keys.submit):
		if m.focus == 0 {
			return m, m.cycleFocus(false)
		}
		return m, m.submitAuth()
	}
	return m.updateInputs(msg)
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.switchTo):
		m.view = GalleryView
		m.prompt.Blur()
		return m, nil
	case key.Matches(msg, m.keys.story):
		m.story = !m.story
		return m, nil
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	case key.Matches(msg, m.keys.submit):
		return m, m.generate()
	}
	return m.updateInputs(msg)
}

func (m *Model) handleGalleryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.switchTo):
		m.view = DashboardView
		return m, m.focusPrompt()
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh(false)
	case key.Matches(msg, m.keys.open):
		return m, m.openSelected()
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

// updateInputs forwards msg to whichever text input the current view owns.
func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.Current() {
	case LoginView:
		m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	case DashboardView:
		m.prompt, cmd = m.prompt.Update(msg)
	case GalleryView:
		m.videoList, cmd = m.videoList.Update(msg)
	}
	return m, cmd
}

func (m *Model) cycleFocus(back bool) tea.Cmd {
	m.fields[m.focus].Blur()
	if back {
		m.focus = (m.focus + len(m.fields) - 1) % len(m.fields)
	} else {
		m.focus = (m.focus + 1) % len(m.fields)
	}
	return m.fields[m.focus].Focus()
}

func (m *Model) focusPrompt() tea.Cmd {
	for i := range m.fields {
		m.fields[i].Blur()
	}
	return m.prompt.Focus()
}

// syncSession re-reads the session and moves focus to the input the guarded view owns.
func (m *Model) syncSession() tea.Cmd {
	m.auth = m.session.State()
	switch m.Current() {
	case LoginView:
		m.prompt.Blur()
		return m.fields[m.focus].Focus()
	case DashboardView:
		return m.focusPrompt()
	}
	return nil
}

func (m *Model) syncGallery() tea.Cmd {
	m.videos = m.gallery.State()
	return m.videoList.SetItems(videoItems(m.videos.Videos))
}

func (m *Model) submitAuth() tea.Cmd {
	if m.submitting {
		return nil
	}
	m.submitting = true
	m.err = ""

	username, password := m.fields[0].Value(), m.fields[1].Value()
	ctx, sess, register := m.ctx, m.session, m.register
	return func() tea.Msg {
		if register {
			return authDoneMsg(opRegister, sess.Register(ctx, username, password))
		}
		return authDoneMsg(opLogin, sess.Login(ctx, username, password))
	}
}

func (m *Model) logout() tea.Cmd {
	m.session.Logout()
	m.notice = ""
	m.err = ""
	m.view = DashboardView
	return m.syncSession()
}

func (m *Model) generate() tea.Cmd {
	prompt, story := strings.TrimSpace(m.prompt.Value()), m.story
	ctx, g := m.ctx, m.gallery
	m.err = ""
	m.notice = ""
	return func() tea.Msg {
		return generateDoneMsg(g.GenerateVideo(ctx, prompt, story))
	}
}

// refresh fetches the list. On startup the gallery's own Start is used.
func (m *Model) refresh(initial bool) tea.Cmd {
	ctx, g := m.ctx, m.gallery
	return func() tea.Msg {
		if initial {
			g.Start(ctx)
		} else {
			g.FetchVideos(ctx)
		}
		return galleryChangedMsg()
	}
}

func (m *Model) initialize() tea.Cmd {
	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		sess.Initialize(ctx)
		return sessionChangedMsg()
	}
}

func (m *Model) openSelected() tea.Cmd {
	item, ok := m.videoList.SelectedItem().(videoItem)
	if !ok {
		return nil
	}
	if !item.video.Ready() {
		m.err = fmt.Sprintf("Video %s is not ready yet", item.video.VideoID)
		return nil
	}
	if m.mediaURL == nil {
		m.err = "No media URL configured"
		return nil
	}

	url, open := m.mediaURL(item.video.VideoID), m.open
	return func() tea.Msg {
		return openDoneMsg(url, open(url))
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.Current() {
	case CheckingView:
		return fmt.Sprintf("\n %s Checking session...\n", m.spinner.View())
	case LoginView:
		return m.renderLogin()
	case DashboardView:
		return m.renderDashboard()
	case GalleryView:
		return m.renderGallery()
	default:
		return ""
	}
}

func (m *Model) renderLogin() string {
	title, action := "Log in", "log in"
	if m.register {
		title, action = "Create an account", "register"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	for i := range m.fields {
		b.WriteString(styles.Input(m.fields[i].View(), i == m.focus))
		b.WriteString("\n")
	}
	if m.submitting {
		b.WriteString(fmt.Sprintf("%s Please wait...\n", m.spinner.View()))
	}
	b.WriteString(m.renderStatus())

	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", action))
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{submit, m.keys.next, m.keys.mode, m.keys.quit}))
	return b.String()
}

func (m *Model) renderDashboard() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Generate a video"))
	b.WriteString("\n")
	if m.auth.User != nil {
		b.WriteString(styles.help.Render("Signed in as "+m.auth.User.Username) + "\n\n")
	}
	b.WriteString(styles.Input(m.prompt.View(), true))
	b.WriteString("\n")

	check := "[ ]"
	if m.story {
		check = "[x]"
	}
	b.WriteString(fmt.Sprintf("%s Story mode\n", check))

	if m.videos.Generating {
		b.WriteString(fmt.Sprintf("%s Generating...\n", m.spinner.View()))
	}
	b.WriteString(m.renderStatus())
	b.WriteString(styles.help.Render(fmt.Sprintf("%d videos in your gallery", len(m.videos.Videos))) + "\n")

	generate := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate"))
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{generate, m.keys.story, m.keys.switchTo, m.keys.logout, m.keys.quit}))
	return b.String()
}

func (m *Model) renderGallery() string {
	var b strings.Builder
	if m.videos.Loading {
		b.WriteString(fmt.Sprintf("%s Loading videos...\n", m.spinner.View()))
	}
	if len(m.videos.Videos) == 0 && !m.videos.Loading {
		b.WriteString(styles.title.Render("My Videos"))
		b.WriteString("\nNo videos yet. Generate one from the dashboard.\n")
	} else {
		b.WriteString(m.videoList.View())
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus())
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.open, m.keys.refresh, m.keys.switchTo, m.keys.quit}))
	return b.String()
}

func (m *Model) renderStatus() string {
	switch {
	case m.err != "":
		return styles.err.Render(m.err) + "\n"
	case m.notice != "":
		return styles.ok.Render(m.notice) + "\n"
	default:
		return ""
	}
}
