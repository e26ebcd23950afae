package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/confirm"
	"github.com/Lin-Jiong-HDU/execguard/internal/core/guard"
	"github.com/Lin-Jiong-HDU/execguard/internal/core/security"
	"github.com/Lin-Jiong-HDU/execguard/internal/core/signal"
	"github.com/Lin-Jiong-HDU/execguard/internal/observe"
	"github.com/Lin-Jiong-HDU/execguard/internal/storage"
)

// EngineOptions holds optional collaborators of the engine.
type EngineOptions struct {
	Logger *slog.Logger
	// Notifier is told when a confirmation is armed and resolved, e.g. to
	// show a prompt.
	Notifier confirm.Notifier
}

// Engine wires the guard components together and attaches the guard to
// the executor.
type Engine struct {
	coordinator *confirm.Coordinator
	adapter     *signal.Adapter
	executor    *Executor
	sink        *observe.LogSink
}

// NewEngine creates an engine from cfg.
func NewEngine(cfg *storage.Config, opts EngineOptions) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	busy, err := confirm.ParseBusyPolicy(cfg.Confirm.Busy)
	if err != nil {
		return nil, err
	}

	classifier := security.NewClassifier(&cfg.Policy)
	coordinator := confirm.NewCoordinator(confirm.Options{
		Timeout:  cfg.Confirm.Timeout(),
		Busy:     busy,
		Notifier: opts.Notifier,
		Logger:   logger.With("component", "confirm"),
	})
	sink := observe.NewLogSink(logger.With("component", "guard"), cfg.Log.Buffer)
	g := guard.New(classifier, coordinator, sink, logger)

	executor := NewExecutor(time.Duration(cfg.Exec.Timeout) * time.Second)
	if err := executor.RegisterPreExec(g.PreExec); err != nil {
		sink.Close()
		return nil, err
	}

	return &Engine{
		coordinator: coordinator,
		adapter:     signal.NewAdapter(coordinator, Labels(cfg.Signal), logger.With("component", "signal")),
		executor:    executor,
		sink:        sink,
	}, nil
}

// Labels builds the signal label table from the configured key codes.
func Labels(cfg storage.SignalConfig) map[uint16]signal.Label {
	labels := make(map[uint16]signal.Label)
	for _, code := range cfg.ConfirmCodes {
		labels[uint16(code)] = signal.LabelConfirm
	}
	for _, code := range cfg.RejectCodes {
		labels[uint16(code)] = signal.LabelReject
	}
	return labels
}

// Execute runs cmd through the guard and, if allowed, the executor.
func (e *Engine) Execute(ctx context.Context, cmd Command) (*Result, error) {
	return e.executor.Execute(ctx, cmd)
}

// Attach subscribes the signal adapter to src.
func (e *Engine) Attach(src signal.Source) error {
	if err := src.Subscribe(func(ev signal.Event) { e.adapter.Handle(ev) }); err != nil {
		return fmt.Errorf("%w: %v", security.ErrSignalSourceUnavailable, err)
	}
	return nil
}

// Executor returns the guarded executor.
func (e *Engine) Executor() *Executor {
	return e.executor
}

// Coordinator returns the confirmation coordinator.
func (e *Engine) Coordinator() *confirm.Coordinator {
	return e.coordinator
}

// Close denies any pending confirmation and flushes observations.
func (e *Engine) Close() {
	e.coordinator.Close()
	e.sink.Close()
}
