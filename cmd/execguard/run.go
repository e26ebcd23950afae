package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/Lin-Jiong-HDU/execguard/internal/core"
	"github.com/Lin-Jiong-HDU/execguard/internal/core/security"
	"github.com/Lin-Jiong-HDU/execguard/internal/storage"
	"github.com/spf13/cobra"
)

var runSource string

// getRunCommand returns the run command
func getRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [--] command [args...]",
		Short: "Run a command through the guard",
		Long: `Classify the command and run it if the policy allows.

Protected targets are refused. Dangerous commands wait for a confirmation
from the configured signal source and are refused when it does not arrive
in time. A refused command exits with status 126.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runGuarded,
	}

	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&runSource, "source", "", "signal source override (tui|line|evdev|none)")

	return cmd
}

func runGuarded(cmd *cobra.Command, args []string) error {
	cfg := *config
	if runSource != "" {
		cfg.Signal.Source = runSource
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := newGuardedEngine(ctx, &cfg, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer engine.Close()

	engine.Executor().WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	result, err := engine.Execute(ctx, core.ParseArgv(args))
	if err != nil {
		if errors.Is(err, security.ErrPermissionDenied) {
			fmt.Fprintf(cmd.ErrOrStderr(), "execguard: %v\n", err)
			return &exitError{code: exitDenied}
		}
		return err
	}

	if result.Error != nil {
		code := result.ExitCode
		if code <= 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "execguard: %v\n", result.Error)
			code = 1
		}
		return &exitError{code: code}
	}

	return nil
}

// newGuardedEngine builds the engine and connects the signal source the
// configuration selects. Sources run until ctx is done.
func newGuardedEngine(ctx context.Context, cfg *storage.Config, in io.Reader, out io.Writer) (*core.Engine, error) {
	source := resolveSource(cfg.Signal.Source, in)
	if source != cfg.Signal.Source {
		logger.Debug("signal source changed", "configured", cfg.Signal.Source, "using", source)
	}

	return connectSource(ctx, source, cfg, in, out)
}
