package main

import (
	"context"
	"io"
	"os"

	"github.com/Lin-Jiong-HDU/execguard/internal/core"
	"github.com/Lin-Jiong-HDU/execguard/internal/core/signal"
	"github.com/Lin-Jiong-HDU/execguard/internal/core/tui"
	"github.com/Lin-Jiong-HDU/execguard/internal/storage"
	"github.com/Lin-Jiong-HDU/execguard/internal/terminal"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// resolveSource falls back from the TUI prompt to plain lines when input
// is not a terminal
func resolveSource(source string, in io.Reader) string {
	if source != storage.SourceTUI {
		return source
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return source
	}
	return storage.SourceLine
}

func connectSource(ctx context.Context, source string, cfg *storage.Config, in io.Reader, out io.Writer) (*core.Engine, error) {
	opts := core.EngineOptions{Logger: logger}

	switch source {
	case storage.SourceTUI:
		prompter := tui.NewPrompter(logger.With("component", "tui"),
			tea.WithInput(in),
			tea.WithOutput(out),
		)
		opts.Notifier = prompter
		engine, err := core.NewEngine(cfg, opts)
		if err != nil {
			return nil, err
		}
		prompter.Bind(engine.Coordinator())
		return engine, nil

	case storage.SourceLine:
		line := terminal.NewLineSource(in, out)
		opts.Notifier = line
		engine, err := core.NewEngine(cfg, opts)
		if err != nil {
			return nil, err
		}
		if err := line.Bind(engine.Coordinator()); err != nil {
			engine.Close()
			return nil, err
		}
		go func() {
			if err := line.Run(ctx); err != nil {
				logger.Warn("line source stopped", "error", err)
			}
		}()
		return engine, nil

	case storage.SourceEvdev:
		engine, err := core.NewEngine(cfg, opts)
		if err != nil {
			return nil, err
		}
		src := signal.NewEvdevSource(cfg.Signal.Device)
		if err := engine.Attach(src); err != nil {
			engine.Close()
			return nil, err
		}
		go func() {
			if err := src.Run(ctx); err != nil {
				logger.Warn("evdev source stopped", "device", cfg.Signal.Device, "error", err)
			}
		}()
		return engine, nil

	default:
		// No source: dangerous commands time out and are denied
		return core.NewEngine(cfg, opts)
	}
}
