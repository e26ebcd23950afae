package tui

import (
	"time"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/confirm"
	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to refresh the countdown
type TickMsg struct {
	Now time.Time
}

// ResolvedMsg is sent when the request was resolved outside the prompt,
// e.g. by the deadline or a hardware key
type ResolvedMsg struct {
	Resolution confirm.Resolution
}

// Resolver resolves a specific confirmation request
type Resolver interface {
	Resolve(id string, outcome confirm.Outcome) bool
}

// Model is the interface for the TUI model
type Model interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Model, tea.Cmd)
	View() string
}
