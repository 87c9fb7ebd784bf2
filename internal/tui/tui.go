// Package tui is a two-pane terminal browser for stored ideas.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ideaforge/internal/core"
)

var (
	docStyle      = lipgloss.NewStyle().Margin(1, 2)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle    = lipgloss.NewStyle().Faint(true)
)

type model struct {
	records     []core.Record
	selectedIdx int
	width       int
	height      int
	quitting    bool
}

// NewModel returns the browser state for records.
func NewModel(records []core.Record) tea.Model {
	return model{records: records}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(m.records)-1 {
				m.selectedIdx++
			}
		case "home", "g":
			m.selectedIdx = 0
		case "end", "G":
			if len(m.records) > 0 {
				m.selectedIdx = len(m.records) - 1
			}
		}
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	width := m.width/2 - 5
	if width < 30 {
		width = 30
	}

	var list strings.Builder
	list.WriteString("Ideas\n\n")
	if len(m.records) == 0 {
		list.WriteString("No ideas stored yet.")
	}
	for i, rec := range m.records {
		line := fmt.Sprintf("%s  %s", scoreText(rec.Idea.CriticScore), rec.Idea.Name)
		if i == m.selectedIdx {
			list.WriteString(selectedStyle.Render("> "+line) + "\n")
			continue
		}
		list.WriteString("  " + line + "\n")
	}

	layout := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(width).Render(list.String()),
		paneStyle.Width(width).Render(m.detail()),
	)

	help := labelStyle.Render("\n[↑/k] Up | [↓/j] Down | [q] Quit")
	return docStyle.Render(layout + help)
}

func (m model) detail() string {
	if m.selectedIdx >= len(m.records) {
		return "Nothing selected."
	}
	rec := m.records[m.selectedIdx]
	idea := rec.Idea

	var b strings.Builder
	b.WriteString(selectedStyle.Render(idea.Name) + "\n")
	b.WriteString(idea.Description + "\n\n")
	field := func(label, value string) {
		if value != "" {
			b.WriteString(labelStyle.Render(label+": ") + value + "\n")
		}
	}
	field("Problem", idea.Problem)
	field("Solution", idea.Solution)
	field("Vertical", idea.Vertical)
	field("Type", idea.Type)
	field("Monetization", idea.Monetization)
	field("Price", idea.Price.String())
	field("Viability", scoreText(idea.CriticScore))
	field("Virality", scoreText(idea.ViralityScore))
	field("Execution", scoreText(idea.GeneratorScore))
	field("Reason", rec.Reason)
	if c := rec.Critique; c != nil && c.Summary != "" {
		b.WriteString("\n" + c.Summary + "\n")
	}
	return b.String()
}

func scoreText(v *int) string {
	if v == nil {
		return " --"
	}
	return fmt.Sprintf("%3d", *v)
}

// Run starts the browser on the alternate screen and blocks until quit.
func Run(records []core.Record) error {
	p := tea.NewProgram(NewModel(records), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
