package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidgen/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionChanged MsgKind = iota
	MsgGalleryChanged
	MsgAuthDone
	MsgGenerateDone
	MsgOpenDone
)

// authOp names the form submission that produced a [MsgAuthDone].
type authOp int

const (
	opLogin authOp = iota
	opRegister
)

// sessionChangedMsg is the constructor for [MsgSessionChanged].
//
// Change messages carry no state. Subscribers fire outside the managers' locks, so
// deliveries can arrive out of order; the model re-reads the manager instead.
func sessionChangedMsg() Msg {
	return Msg{kind: MsgSessionChanged}
}

// galleryChangedMsg is the constructor for [MsgGalleryChanged]
func galleryChangedMsg() Msg {
	return Msg{kind: MsgGalleryChanged}
}

// authDoneMsg is the constructor for [MsgAuthDone]
func authDoneMsg(op authOp, res models.Result) Msg {
	return Msg{
		kind: MsgAuthDone,
		data: authDone{op, res},
	}
}

type authDone struct {
	op  authOp
	res models.Result
}

// generateDoneMsg is the constructor for [MsgGenerateDone]
func generateDoneMsg(res models.Result) Msg {
	return Msg{kind: MsgGenerateDone, data: res}
}

// openDoneMsg is the constructor for [MsgOpenDone]
func openDoneMsg(url string, err error) Msg {
	return Msg{kind: MsgOpenDone, data: openDone{url, err}}
}

type openDone struct {
	url string
	err error
}
