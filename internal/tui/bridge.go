package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/n1rna/recipe-cli/internal/controller"
)

// Bridge delivers controller callbacks to the running program as messages.
// It implements controller.Notifier, controller.Navigator and
// controller.Confirmer.
type Bridge struct {
	events chan tea.Msg
	done   chan struct{}
	once   sync.Once
}

// NewBridge creates a bridge with a small event buffer
func NewBridge() *Bridge {
	return &Bridge{
		events: make(chan tea.Msg, 16),
		done:   make(chan struct{}),
	}
}

// Close releases callers waiting on a program that no longer reads events.
// Later navigation and confirmation requests return immediately.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// NotificationMsg is a message shown in the status line
type NotificationMsg struct {
	Text     string
	Severity controller.Severity
}

// NotFoundMsg switches to the not-found screen
type NotFoundMsg struct{}

// LeaveEditingMsg switches back to read-only mode
type LeaveEditingMsg struct{}

// ConfirmMsg asks the user a yes/no question; the answer goes to reply
type ConfirmMsg struct {
	Prompt string
	reply  chan<- bool
}

// Answer sends the user's answer. It never blocks.
func (c ConfirmMsg) Answer(ok bool) {
	select {
	case c.reply <- ok:
	default:
	}
}

// Notify queues a status line message. Messages are dropped while the
// buffer is full so the caller never blocks.
func (b *Bridge) Notify(message string, severity controller.Severity) {
	b.post(NotificationMsg{Text: message, Severity: severity})
}

// NotFound switches to the not-found screen. Unlike notifications it is
// never dropped; it waits for buffer space until the bridge is closed.
func (b *Bridge) NotFound() {
	b.send(NotFoundMsg{})
}

// LeaveEditing switches to read-only mode. It is never dropped.
func (b *Bridge) LeaveEditing() {
	b.send(LeaveEditingMsg{})
}

// Confirm shows prompt in the UI and waits for the answer. A cancelled
// context counts as "no".
func (b *Bridge) Confirm(ctx context.Context, prompt string) bool {
	reply := make(chan bool, 1)
	select {
	case b.events <- ConfirmMsg{Prompt: prompt, reply: reply}:
	case <-ctx.Done():
		return false
	case <-b.done:
		return false
	}

	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	case <-b.done:
		return false
	}
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

func (b *Bridge) post(msg tea.Msg) {
	select {
	case b.events <- msg:
	default:
	}
}

// wait returns a command that delivers the next bridge event
func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.events
	}
}
