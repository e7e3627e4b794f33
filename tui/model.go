// Package tui renders the live status display: connected inputs, loaded
// profiles, held keys, and the recent report stream. The driver loop
// pushes Status snapshots over a channel; key presses in the display can
// request a profile switch back.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FugLong/miditohid/engine"
	"github.com/FugLong/miditohid/hid"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fd75f"))
	heldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
)

// Status is one snapshot of everything the display shows, assembled by the
// driver loop.
type Status struct {
	Devices []string
	Engine  engine.Status
	Sink    string
	Recent  []hid.Report
	Sent    uint64
}

type statusMsg Status

// Model is the bubbletea model for the status display.
type Model struct {
	updates  <-chan Status
	switches chan<- struct{}
	st       Status
	seen     bool
	quitting bool
}

func NewModel(updates <-chan Status, switches chan<- struct{}) Model {
	return Model{updates: updates, switches: switches}
}

func listenForStatus(updates <-chan Status) tea.Cmd {
	return func() tea.Msg {
		return statusMsg(<-updates)
	}
}

func (m Model) Init() tea.Cmd {
	return listenForStatus(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "n", "tab":
			// Ask the driver loop for a profile switch; never block the
			// display on it.
			select {
			case m.switches <- struct{}{}:
			default:
			}
		}

	case statusMsg:
		m.st = Status(msg)
		m.seen = true
		return m, listenForStatus(m.updates)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.seen {
		return "\n  " + dimStyle.Render("waiting for status...") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("miditohid") + "\n\n")

	b.WriteString(row("inputs", renderDevices(m.st.Devices)))
	b.WriteString(row("profiles", renderProfiles(m.st.Engine)))
	b.WriteString(row("sink", m.st.Sink))
	b.WriteString(row("held", renderHeld(m.st.Engine)))
	b.WriteString(row("reports", renderReports(m.st)))

	b.WriteString("\n  " + dimStyle.Render("n:next profile  q:quit") + "\n")
	return b.String()
}

func row(label, value string) string {
	return fmt.Sprintf("  %s  %s\n", labelStyle.Render(fmt.Sprintf("%-8s", label)), value)
}

func renderDevices(devices []string) string {
	if len(devices) == 0 {
		return dimStyle.Render("none (waiting for a device)")
	}
	return strings.Join(devices, ", ")
}

func renderProfiles(st engine.Status) string {
	parts := make([]string, 0, len(st.Profiles))
	for i, name := range st.Profiles {
		if i == st.ProfileIndex {
			parts = append(parts, activeStyle.Render("["+name+"]"))
		} else {
			parts = append(parts, dimStyle.Render(name))
		}
	}
	return strings.Join(parts, " ")
}

func renderHeld(st engine.Status) string {
	var parts []string
	if st.HeldMods != 0 {
		parts = append(parts, heldStyle.Render(hid.ModNames(st.HeldMods)))
	}
	for _, p := range st.Pressed {
		name := hid.KeyName(p.Key)
		if p.Mods != 0 {
			name = hid.ModNames(p.Mods) + "+" + name
		}
		parts = append(parts, heldStyle.Render(name))
	}
	if len(parts) == 0 {
		return dimStyle.Render("nothing")
	}
	return strings.Join(parts, " ")
}

func renderReports(st Status) string {
	last := ""
	if len(st.Recent) > 0 {
		last = "  last " + st.Recent[0].String()
	}
	return fmt.Sprintf("%d sent%s", st.Sent, dimStyle.Render(last))
}
