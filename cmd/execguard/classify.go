package main

import (
	"fmt"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/security"
	"github.com/spf13/cobra"
)

// getClassifyCommand returns the classify command
func getClassifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [command...]",
		Short: "Classify a command line without running it",
		Long: `Print how the policy classifies a command line. With no arguments the
command line is read from standard input.`,
		RunE: runClassify,
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	classifier := security.NewClassifier(&config.Policy)

	var (
		result security.Result
		err    error
	)
	if len(args) > 0 {
		result, err = classifier.ClassifyArgv(args)
	} else {
		var command security.CommandString
		command, err = security.ReadCommand(cmd.InOrStdin())
		if err == nil {
			result = classifier.Classify(command)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to classify: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "command:        %s\n", result.Command)
	fmt.Fprintf(out, "classification: %s\n", result.Classification)
	if result.Pattern != "" {
		fmt.Fprintf(out, "pattern:        %s\n", result.Pattern)
	}
	if result.Truncated {
		fmt.Fprintf(out, "truncated:      true (limit %d bytes)\n", security.MaxCommandLen)
	}
	return nil
}
