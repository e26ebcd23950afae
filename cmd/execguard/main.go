package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Lin-Jiong-HDU/execguard/internal/observe"
	"github.com/Lin-Jiong-HDU/execguard/internal/storage"
	"github.com/spf13/cobra"
)

// exitDenied is the exit status of a command the guard refused to run
const exitDenied = 126

var (
	configPath string
	config     *storage.Config
	logger     *slog.Logger
)

// exitError carries a process exit status out of a command
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRootCommand() *cobra.Command {
	configPath = ""
	config = nil
	logger = nil

	rootCmd := &cobra.Command{
		Use:   "execguard",
		Short: "Guard command execution with a policy",
		Long: `execguard - classifies command lines against a dangerous-command and a
protected-target policy, blocks protected targets, and asks for an
out-of-band confirmation before running dangerous commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.execguard/config.yaml)")

	rootCmd.AddCommand(getRunCommand())
	rootCmd.AddCommand(getClassifyCommand())
	rootCmd.AddCommand(getPolicyCommand())
	rootCmd.AddCommand(getConfigCommand())

	return rootCmd
}

func loadConfig(cmd *cobra.Command) error {
	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		return err
	}

	l, err := observe.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	config = cfg
	logger = l
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
