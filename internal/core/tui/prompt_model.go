package tui

import (
	"time"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/confirm"
	tea "github.com/charmbracelet/bubbletea"
)

const tickInterval = 200 * time.Millisecond

// model is the Bubble Tea model for a single confirmation prompt
type model struct {
	info     confirm.Info
	resolver Resolver
	keys     keyMap
	now      time.Time
	decided  confirm.Outcome
	final    *confirm.Resolution
	width    int
}

// NewModel creates a prompt model for one pending request
func NewModel(info confirm.Info, resolver Resolver) Model {
	return model{
		info:     info,
		resolver: resolver,
		keys:     defaultKeyMap(),
		now:      info.ArmedAt,
	}
}

// Init starts the countdown
func (m model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg{Now: t}
	})
}

// Update handles messages
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case TickMsg:
		m.now = msg.Now
		if !m.info.Deadline.IsZero() && !m.now.Before(m.info.Deadline) {
			return m, tea.Quit
		}
		return m, tick()

	case ResolvedMsg:
		if msg.Resolution.RequestID != m.info.ID {
			return m, nil
		}
		res := msg.Resolution
		m.final = &res
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.decided != confirm.Pending {
		return m, nil
	}

	switch {
	case m.keys.Confirm.matches(msg):
		m.decided = confirm.Approved
	case m.keys.Reject.matches(msg), m.keys.Quit.matches(msg):
		m.decided = confirm.Denied
	default:
		return m, nil
	}

	if m.resolver != nil {
		m.resolver.Resolve(m.info.ID, m.decided)
	}
	return m, tea.Quit
}

// remaining returns the time left before the request times out
func (m model) remaining() time.Duration {
	if m.info.Deadline.IsZero() {
		return 0
	}
	left := m.info.Deadline.Sub(m.now)
	if left < 0 {
		return 0
	}
	return left
}

// View renders the prompt
func (m model) View() string {
	return NewRenderer(m.width).Render(m)
}
