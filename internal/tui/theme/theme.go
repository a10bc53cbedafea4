// Package theme defines the dashboard color palettes.
package theme

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme is a complete color palette for the dashboard.
type Theme struct {
	// Base colors
	Base     lipgloss.Color // Background
	Surface  lipgloss.Color // Raised surface
	Border   lipgloss.Color // Box borders

	// Text colors
	Text    lipgloss.Color // Primary text
	Subtext lipgloss.Color // Secondary text
	Overlay lipgloss.Color // Dimmed text

	// Semantic colors
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Environment accent colors
	Tetra   lipgloss.Color
	Local   lipgloss.Color
	Dev     lipgloss.Color
	Staging lipgloss.Color
	Prod    lipgloss.Color
	QA      lipgloss.Color
}

// Mocha is the flagship dark palette (Catppuccin Mocha).
var Mocha = Theme{
	Base:    lipgloss.Color("#1e1e2e"),
	Surface: lipgloss.Color("#313244"),
	Border:  lipgloss.Color("#45475a"),

	Text:    lipgloss.Color("#cdd6f4"),
	Subtext: lipgloss.Color("#a6adc8"),
	Overlay: lipgloss.Color("#6c7086"),

	Primary: lipgloss.Color("#89b4fa"), // Blue
	Success: lipgloss.Color("#a6e3a1"), // Green
	Warning: lipgloss.Color("#f9e2af"), // Yellow
	Error:   lipgloss.Color("#f38ba8"), // Red
	Info:    lipgloss.Color("#89dceb"), // Sky

	Tetra:   lipgloss.Color("#cba6f7"), // Mauve
	Local:   lipgloss.Color("#94e2d5"), // Teal
	Dev:     lipgloss.Color("#89b4fa"), // Blue
	Staging: lipgloss.Color("#f9e2af"), // Yellow
	Prod:    lipgloss.Color("#f38ba8"), // Red
	QA:      lipgloss.Color("#fab387"), // Peach
}

// Latte is the light variant for light terminals.
var Latte = Theme{
	Base:    lipgloss.Color("#eff1f5"),
	Surface: lipgloss.Color("#ccd0da"),
	Border:  lipgloss.Color("#bcc0cc"),

	Text:    lipgloss.Color("#4c4f69"),
	Subtext: lipgloss.Color("#6c6f85"),
	Overlay: lipgloss.Color("#7c7f93"),

	Primary: lipgloss.Color("#1e66f5"),
	Success: lipgloss.Color("#40a02b"),
	Warning: lipgloss.Color("#df8e1d"),
	Error:   lipgloss.Color("#d20f39"),
	Info:    lipgloss.Color("#04a5e5"),

	Tetra:   lipgloss.Color("#8839ef"),
	Local:   lipgloss.Color("#179299"),
	Dev:     lipgloss.Color("#1e66f5"),
	Staging: lipgloss.Color("#df8e1d"),
	Prod:    lipgloss.Color("#d20f39"),
	QA:      lipgloss.Color("#fe640b"),
}

// Plain is a no-color theme; empty colors mean terminal default. Used when
// NO_COLOR is set.
var Plain = Theme{}

var (
	mu      sync.RWMutex
	current = Mocha
)

// Current returns the active theme.
func Current() Theme {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Set replaces the active theme.
func Set(t Theme) {
	mu.Lock()
	current = t
	mu.Unlock()
}

// NoColorEnabled reports whether color output should be disabled.
// Respects the NO_COLOR standard (https://no-color.org/); TVIEW_NO_COLOR
// overrides it in either direction.
func NoColorEnabled() bool {
	override := strings.ToLower(strings.TrimSpace(os.Getenv("TVIEW_NO_COLOR")))
	switch override {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}
	_, noColorSet := os.LookupEnv("NO_COLOR")
	return noColorSet
}

// FromName returns a theme by name.
func FromName(name string) Theme {
	if NoColorEnabled() {
		return Plain
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plain", "none", "no-color", "nocolor":
		return Plain
	case "latte", "light":
		return Latte
	case "mocha", "dark":
		return Mocha
	default:
		return autoTheme()
	}
}

// autoTheme picks dark or light based on the terminal background.
func autoTheme() Theme {
	if termenv.HasDarkBackground() {
		return Mocha
	}
	return Latte
}
