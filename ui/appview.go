// Package ui is the terminal rendering layer. It only reads the snapshots
// exposed by the chat client and calls its mutating entry points; all
// correctness lives below it in the chat package.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"chaoscontext/chat"
)

var (
	accentColor = lipgloss.Color("62")
	dimColor    = lipgloss.Color("240")
	userColor   = lipgloss.Color("39")
	agentColor  = lipgloss.Color("142")
	dangerColor = lipgloss.Color("196")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	statusStyle   = lipgloss.NewStyle().Foreground(dimColor)
	userStyle     = lipgloss.NewStyle().Bold(true).Foreground(userColor)
	agentStyle    = lipgloss.NewStyle().Bold(true).Foreground(agentColor)
	thoughtStyle  = lipgloss.NewStyle().Foreground(dimColor).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(dangerColor)
	inputBarStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(dimColor)
)

// AppView is the root bubbletea model.
type AppView struct {
	client *chat.Client

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	// Session picker overlay state
	picker pickerState

	status  string
	version string
}

// NewAppView builds the root view over an already initialized chat client.
func NewAppView(client *chat.Client, version string) AppView {
	ta := textarea.New()
	ta.Placeholder = "Ask the agents anything..."
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.CharLimit = 0
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	return AppView{
		client:   client,
		textarea: ta,
		spinner:  sp,
		picker:   newPickerState(),
		version:  version,
	}
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForChange(a.client))
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.picker.active {
		return a.renderSessionPicker()
	}

	header := a.renderHeader()
	footer := a.renderFooter()
	input := inputBarStyle.Width(a.width).Render(a.textarea.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, a.viewport.View(), input, footer)
}

func (a AppView) renderHeader() string {
	title := titleStyle.Render("chaoscontext")
	session := "no session"
	for _, s := range a.client.Sessions() {
		if s.ID == a.client.ActiveSessionID() {
			session = s.Preview
			break
		}
	}

	left := fmt.Sprintf("%s  %s", title, statusStyle.Render(runewidth.Truncate(session, 48, "…")))
	right := statusStyle.Render(a.version)
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a AppView) renderFooter() string {
	if a.client.IsStreaming() {
		return a.spinner.View() + statusStyle.Render(" streaming… • ctrl+c: quit")
	}
	if a.status != "" {
		return errorStyle.Render(a.status)
	}
	return statusStyle.Render("enter: send • ctrl+n: new chat • ctrl+s: sessions • ctrl+y: copy answer • ctrl+c: quit")
}

// renderTranscript turns the active session's messages into viewport text.
func (a AppView) renderTranscript() string {
	messages := a.client.Messages()
	if len(messages) == 0 {
		return thoughtStyle.Render("\n  No messages yet. Ask something to get the agents working.\n")
	}

	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case chat.RoleUser:
			b.WriteString(userStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(m.Content)
		case chat.RoleAssistant:
			b.WriteString(agentStyle.Render("Agents"))
			b.WriteString("\n")
			for _, step := range m.Thoughts {
				b.WriteString(thoughtStyle.Render("  " + describeThought(step)))
				b.WriteString("\n")
			}
			if m.Content != "" {
				b.WriteString(m.Content)
			} else if m.IsStreaming {
				b.WriteString(thoughtStyle.Render("…"))
			}
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// describeThought formats one reasoning step as a single transcript line.
func describeThought(step chat.ThoughtStep) string {
	switch s := step.(type) {
	case chat.AgentStart:
		return fmt.Sprintf("● %s is working", s.Agent)
	case chat.Handoff:
		return fmt.Sprintf("⇄ %s handed off to %s", s.From, s.To)
	case chat.ToolCall:
		return fmt.Sprintf("⚒ %s called %s(%s)", s.Agent, s.Tool, runewidth.Truncate(s.Query, 60, "…"))
	case chat.ToolResult:
		return fmt.Sprintf("✓ %s: %s returned %s", s.Agent, s.Tool, runewidth.Truncate(s.Result, 60, "…"))
	default:
		return ""
	}
}

func (a *AppView) refreshViewport() {
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}
