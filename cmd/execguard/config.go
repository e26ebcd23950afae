package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Lin-Jiong-HDU/execguard/internal/storage"
	"github.com/spf13/cobra"
)

var configForce bool

// getConfigCommand returns the config command
func getConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		// The file may not exist yet
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	save := func() error { return storage.SaveConfigAs(storage.DefaultConfig(), path) }
	if path == "" {
		dir, err := storage.GetConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, storage.ConfigFileName+"."+storage.ConfigFileType)
		save = func() error { return storage.SaveConfig(storage.DefaultConfig()) }
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}

	if err := save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
