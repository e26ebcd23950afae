package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var policyOutput string

// getPolicyCommand returns the policy command
func getPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the effective policy",
		Args:  cobra.NoArgs,
		RunE:  runPolicy,
	}
	cmd.Flags().StringVarP(&policyOutput, "output", "o", "text", "output format (text|yaml)")
	return cmd
}

func runPolicy(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	switch policyOutput {
	case "text":
		fmt.Fprintln(out, "Protected targets (always refused):")
		for _, p := range config.Policy.ProtectedTargets {
			fmt.Fprintf(out, "  %s\n", p)
		}
		fmt.Fprintln(out, "Dangerous commands (confirmation required):")
		for _, p := range config.Policy.DangerousCommands {
			fmt.Fprintf(out, "  %s\n", p)
		}
		fmt.Fprintf(out, "Confirmation timeout: %s\n", config.Confirm.Timeout())
		return nil

	case "yaml":
		data, err := yaml.Marshal(config.Policy)
		if err != nil {
			return fmt.Errorf("failed to encode policy: %w", err)
		}
		fmt.Fprint(out, string(data))
		return nil

	default:
		return fmt.Errorf("unknown output format %q (want text|yaml)", policyOutput)
	}
}
