// Package styles renders the dashboard's shared visual elements: badges,
// status glyphs, dividers and row highlights. Everything goes through the
// active theme so NO_COLOR degrades cleanly.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tview/internal/nav"
	"tview/internal/tui/theme"
)

// EnvColor returns the accent color for an environment.
func EnvColor(env nav.Environment) lipgloss.Color {
	t := theme.Current()
	switch env {
	case nav.EnvTetra:
		return t.Tetra
	case nav.EnvLocal:
		return t.Local
	case nav.EnvDev:
		return t.Dev
	case nav.EnvStaging:
		return t.Staging
	case nav.EnvProd:
		return t.Prod
	case nav.EnvQA:
		return t.QA
	}
	return t.Overlay
}

// EnvBadge renders an environment name, inverted when active.
func EnvBadge(env nav.Environment, active bool) string {
	t := theme.Current()
	s := lipgloss.NewStyle().Padding(0, 1)
	if active {
		s = s.Bold(true).Foreground(t.Base).Background(EnvColor(env))
	} else {
		s = s.Foreground(t.Subtext)
	}
	return s.Render(env.String())
}

// ModeBadge renders a mode name, underlined when active.
func ModeBadge(mode nav.Mode, active bool) string {
	t := theme.Current()
	s := lipgloss.NewStyle().Padding(0, 1)
	if active {
		s = s.Bold(true).Underline(true).Foreground(t.Primary)
	} else {
		s = s.Foreground(t.Overlay)
	}
	return s.Render(mode.String())
}

// Status glyphs for cached reachability and execution states.
func GlyphConnected() string {
	return lipgloss.NewStyle().Foreground(theme.Current().Success).Render("●")
}

func GlyphUnreachable() string {
	return lipgloss.NewStyle().Foreground(theme.Current().Error).Render("●")
}

func GlyphChecking() string {
	return lipgloss.NewStyle().Foreground(theme.Current().Overlay).Render("◌")
}

func GlyphExecuting() string {
	return lipgloss.NewStyle().Foreground(theme.Current().Warning).Render("◐")
}

// Selected highlights the current item row.
func Selected(text string) string {
	t := theme.Current()
	return lipgloss.NewStyle().Bold(true).Foreground(t.Text).Background(t.Surface).Render(text)
}

// Dim renders secondary text.
func Dim(text string) string {
	return lipgloss.NewStyle().Foreground(theme.Current().Overlay).Render(text)
}

// Title renders a section heading.
func Title(text string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.Current().Primary).Render(text)
}

// ErrorText renders an inline error.
func ErrorText(text string) string {
	return lipgloss.NewStyle().Foreground(theme.Current().Error).Render(text)
}

// Hint renders the transient action hint line.
func Hint(text string) string {
	return lipgloss.NewStyle().Italic(true).Foreground(theme.Current().Info).Render(text)
}

// Divider returns a horizontal rule of the given width.
func Divider(width int) string {
	if width <= 0 {
		return ""
	}
	return Dim(strings.Repeat("─", width))
}

// PadTo right-pads text with spaces to the given display width, accounting
// for wide runes.
func PadTo(text string, width int) string {
	w := runewidth.StringWidth(text)
	if w >= width {
		return text
	}
	return text + strings.Repeat(" ", width-w)
}
