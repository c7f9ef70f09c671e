package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"chaoscontext/chat"
)

// pickerState holds the session picker overlay: a fuzzy filter input over
// the session list, newest first.
type pickerState struct {
	active   bool
	filter   textinput.Model
	selected int
	sessions []chat.Session
	filtered []chat.Session
}

func newPickerState() pickerState {
	ti := textinput.New()
	ti.Placeholder = "filter sessions"
	ti.Prompt = "/ "
	ti.CharLimit = 80
	return pickerState{filter: ti}
}

func (a *AppView) openSessionPicker() {
	a.picker.active = true
	a.picker.selected = 0
	a.picker.filter.Reset()
	a.picker.filter.Focus()
	a.picker.sessions = a.client.Sessions()
	a.picker.filtered = a.picker.sessions
}

func (a *AppView) applySessionFilter() {
	query := strings.TrimSpace(a.picker.filter.Value())
	if query == "" {
		a.picker.filtered = a.picker.sessions
		a.picker.selected = 0
		return
	}

	previews := make([]string, len(a.picker.sessions))
	for i, s := range a.picker.sessions {
		previews[i] = s.Preview
	}

	matches := fuzzy.Find(query, previews)
	filtered := make([]chat.Session, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, a.picker.sessions[m.Index])
	}
	a.picker.filtered = filtered
	a.picker.selected = 0
}

func (a AppView) updateSessionPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+s":
		a.picker.active = false
		return a, nil

	case "ctrl+c":
		return a, tea.Quit

	case "up":
		if a.picker.selected > 0 {
			a.picker.selected--
		}
		return a, nil

	case "down":
		if a.picker.selected < len(a.picker.filtered)-1 {
			a.picker.selected++
		}
		return a, nil

	case "enter":
		if a.picker.selected < len(a.picker.filtered) {
			a.client.SelectSession(a.picker.filtered[a.picker.selected].ID)
		}
		a.picker.active = false
		a.refreshViewport()
		return a, nil
	}

	var cmd tea.Cmd
	a.picker.filter, cmd = a.picker.filter.Update(msg)
	a.applySessionFilter()
	return a, cmd
}

func (a AppView) renderSessionPicker() string {
	modalWidth := a.width - 10
	if modalWidth > 90 {
		modalWidth = 90
	}
	if modalWidth < 30 {
		modalWidth = 30
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Sessions")

	var header string
	if len(a.picker.filtered) == len(a.picker.sessions) {
		header = fmt.Sprintf("%d sessions", len(a.picker.sessions))
	} else {
		header = fmt.Sprintf("%d of %d sessions", len(a.picker.filtered), len(a.picker.sessions))
	}
	headerLine := statusStyle.Align(lipgloss.Center).Width(modalWidth).Render(header)

	var rows []string
	for i, s := range a.picker.filtered {
		line := runewidth.Truncate(s.Preview, modalWidth-6, "…")
		marker := "  "
		if s.ID == a.client.ActiveSessionID() {
			marker = "● "
		}
		row := marker + line
		if i == a.picker.selected {
			row = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("> " + marker + line)
		} else {
			row = "  " + row
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		rows = append(rows, thoughtStyle.Render("  no matching sessions"))
	}

	help := statusStyle.Render("enter: open • esc: close • type to filter")

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.picker.filter.View(),
		headerLine,
		strings.Join(rows, "\n"),
		"",
		help,
	)

	modal := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(1, 2).
		Width(modalWidth).
		Render(body)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}
