// Package picker is the full-screen org selector. It runs as its own
// program while the dashboard screen is suspended, then hands the chosen
// org back to the caller.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tview/internal/org"
	"tview/internal/tui/theme"
)

// OrgPicker is the selection model.
type OrgPicker struct {
	orgs     []org.Org
	active   string
	cursor   int
	selected string
	quitting bool
	width    int
	height   int

	theme theme.Theme
}

// KeyMap defines the picker's bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var pickerKeys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k", "w"),
		key.WithHelp("↑/w", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j", "s"),
		key.WithHelp("↓/s", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

// New builds a picker over the manifests; active highlights the current org.
func New(orgs []org.Org, active string) OrgPicker {
	cursor := 0
	for i, o := range orgs {
		if o.Name == active {
			cursor = i
			break
		}
	}
	return OrgPicker{
		orgs:   orgs,
		active: active,
		cursor: cursor,
		width:  60,
		height: 20,
		theme:  theme.Current(),
	}
}

// Init implements tea.Model.
func (p OrgPicker) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (p OrgPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pickerKeys.Quit):
			p.quitting = true
			return p, tea.Quit

		case key.Matches(msg, pickerKeys.Up):
			if p.cursor > 0 {
				p.cursor--
			}

		case key.Matches(msg, pickerKeys.Down):
			if p.cursor < len(p.orgs)-1 {
				p.cursor++
			}

		case key.Matches(msg, pickerKeys.Select):
			if len(p.orgs) > 0 {
				p.selected = p.orgs[p.cursor].Name
				return p, tea.Quit
			}
		}
	}
	return p, nil
}

// View implements tea.Model.
func (p OrgPicker) View() string {
	if p.quitting && p.selected == "" {
		return ""
	}
	t := p.theme

	title := lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Render("Select organization")
	var rows []string
	if len(p.orgs) == 0 {
		rows = append(rows, lipgloss.NewStyle().Foreground(t.Overlay).Render("no org manifests found"))
	}
	for i, o := range p.orgs {
		label := o.Name
		if o.Provider != "" {
			label += "  " + o.Provider
		}
		if o.Name == p.active {
			label += " (active)"
		}
		style := lipgloss.NewStyle().Foreground(t.Text)
		prefix := "  "
		if i == p.cursor {
			style = style.Bold(true).Foreground(t.Primary)
			prefix = "> "
		}
		rows = append(rows, style.Render(prefix+label))
	}
	help := lipgloss.NewStyle().Foreground(t.Overlay).Render("↑/↓ move   enter select   esc cancel")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(1, 2).
		Render(title + "\n\n" + strings.Join(rows, "\n") + "\n\n" + help)

	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, box)
}

// Selected returns the chosen org name, or "" if cancelled.
func (p OrgPicker) Selected() string { return p.selected }

// Run shows the picker and returns the chosen org name ("" = cancelled).
func Run(orgs []org.Org, active string) (string, error) {
	m, err := tea.NewProgram(New(orgs, active), tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	final, ok := m.(OrgPicker)
	if !ok {
		return "", nil
	}
	return final.Selected(), nil
}
