// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a thin view over the session and gallery managers:
//  1. [CheckingView] : spinner while a stored token is verified
//  2. [LoginView] : login and registration form
//  3. [DashboardView] : prompt input with a story toggle
//  4. [GalleryView] : the video list with refresh and open
//
// [Model.Current] guards the last two: an unauthenticated session always renders the login view.
// Manager changes reach the program through [Run], which subscribes to both managers and
// forwards change signals with tea.Program.Send.
package ui
