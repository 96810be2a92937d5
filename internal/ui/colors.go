package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/vidgen/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette is a small stylesheet built with named [lipgloss.Style] fields.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	field lipgloss.Style
	focus lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		field: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(h)).Padding(0, 1),
		focus: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 1),
	}
}

// Badge renders a video status the way the gallery shows it.
func (p *Palette) Badge(s models.VideoStatus) string {
	switch s {
	case models.StatusCompleted:
		return p.ok.Render("✓ " + s.String())
	case models.StatusFailed:
		return p.err.Render("✗ " + s.String())
	case models.StatusProcessing:
		return p.warn.Render("… " + s.String())
	default:
		return p.help.Render(s.String())
	}
}

// Input wraps a rendered input in a border, highlighted when focused.
func (p *Palette) Input(view string, focused bool) string {
	if focused {
		return p.focus.Render(view)
	}
	return p.field.Render(view)
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
