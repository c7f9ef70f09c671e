package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"chaoscontext/chat"
)

// chatChangedMsg signals that the chat client's state moved; the view
// re-reads its snapshots.
type chatChangedMsg struct{}

// sendFinishedMsg reports the outcome of a SendMessage call.
type sendFinishedMsg struct {
	err error
}

// waitForChange blocks on the client's coalesced change channel.
func waitForChange(client *chat.Client) tea.Cmd {
	return func() tea.Msg {
		<-client.Changed()
		return chatChangedMsg{}
	}
}

// sendMessage runs one exchange off the UI loop. The client serializes
// exchanges itself; a concurrent send comes back as chat.ErrBusy.
func sendMessage(client *chat.Client, text string) tea.Cmd {
	return func() tea.Msg {
		return sendFinishedMsg{err: client.SendMessage(context.Background(), text)}
	}
}

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		chrome := 6 // header + input border + textarea + footer
		if !a.ready {
			a.viewport = viewport.New(msg.Width, msg.Height-chrome)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = msg.Height - chrome
		}
		a.textarea.SetWidth(msg.Width - 2)
		a.refreshViewport()
		return a, nil

	case chatChangedMsg:
		a.refreshViewport()
		cmds = append(cmds, waitForChange(a.client))
		if a.client.IsStreaming() {
			cmds = append(cmds, a.spinner.Tick)
		}
		return a, tea.Batch(cmds...)

	case sendFinishedMsg:
		if msg.err != nil && !errors.Is(msg.err, chat.ErrBusy) {
			a.status = msg.err.Error()
		}
		a.refreshViewport()
		return a, nil

	case spinner.TickMsg:
		if !a.client.IsStreaming() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if a.picker.active {
			return a.updateSessionPicker(msg)
		}
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "ctrl+n":
		a.client.NewSession()
		a.textarea.Reset()
		a.status = ""
		a.refreshViewport()
		return a, nil

	case "ctrl+s":
		a.openSessionPicker()
		return a, nil

	case "ctrl+y":
		a.status = ""
		if answer := a.lastAnswer(); answer != "" {
			if err := clipboard.WriteAll(answer); err != nil {
				a.status = "copy failed: " + err.Error()
			}
		}
		return a, nil

	case "enter":
		text := strings.TrimSpace(a.textarea.Value())
		if text == "" || a.client.IsStreaming() {
			return a, nil
		}
		a.textarea.Reset()
		a.status = ""
		return a, tea.Batch(sendMessage(a.client, text), a.spinner.Tick)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// lastAnswer returns the content of the most recent finished assistant
// message in the active session.
func (a AppView) lastAnswer() string {
	messages := a.client.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == chat.RoleAssistant && !messages[i].IsStreaming {
			return messages[i].Content
		}
	}
	return ""
}
