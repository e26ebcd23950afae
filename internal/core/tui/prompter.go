package tui

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/confirm"
	tea "github.com/charmbracelet/bubbletea"
)

// exitWait bounds how long Resolved waits for the prompt to tear down.
const exitWait = 500 * time.Millisecond

// Prompter shows a confirmation prompt for every armed request. It is a
// confirm.Notifier; keypresses resolve the request through the bound
// Resolver by request ID.
type Prompter struct {
	mu       sync.Mutex
	resolver Resolver
	options  []tea.ProgramOption
	active   *session
	logger   *slog.Logger
}

type session struct {
	id      string
	program *tea.Program
	done    chan struct{}
}

// NewPrompter creates a prompter. Program options are passed to every
// prompt, e.g. tea.WithOutput(os.Stderr).
func NewPrompter(logger *slog.Logger, options ...tea.ProgramOption) *Prompter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Prompter{
		options: options,
		logger:  logger,
	}
}

// Bind sets the resolver used by keypresses. It must be called before the
// first request is armed.
func (p *Prompter) Bind(resolver Resolver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolver = resolver
}

// Armed starts a prompt for info.
func (p *Prompter) Armed(info confirm.Info) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active != nil {
		// The previous prompt outlived its request
		p.active.program.Kill()
	}

	s := &session{
		id:      info.ID,
		program: tea.NewProgram(NewModel(info, p.resolver), p.options...),
		done:    make(chan struct{}),
	}
	p.active = s

	go func() {
		defer close(s.done)
		if _, err := s.program.Run(); err != nil {
			p.logger.Warn("confirmation prompt failed", "id", s.id, "error", err)
		}
	}()
}

// Resolved tells the prompt the outcome and waits briefly for it to exit.
func (p *Prompter) Resolved(info confirm.Info, res confirm.Resolution) {
	p.mu.Lock()
	s := p.active
	if s == nil || s.id != info.ID {
		p.mu.Unlock()
		return
	}
	p.active = nil
	p.mu.Unlock()

	go s.program.Send(ResolvedMsg{Resolution: res})

	timer := time.NewTimer(exitWait)
	defer timer.Stop()
	select {
	case <-s.done:
	case <-timer.C:
		p.logger.Debug("confirmation prompt did not exit, killing", "id", s.id)
		s.program.Kill()
	}
}
