package security

import (
	"fmt"
	"slices"
)

// Policy defines the two pattern lists the classifier evaluates.
type Policy struct {
	// DangerousCommands contains substrings that mark a command as
	// destructive. Matching commands require confirmation.
	DangerousCommands []string `mapstructure:"dangerous_commands" yaml:"dangerous_commands"`

	// ProtectedTargets contains substrings naming resources that can never
	// be modified, regardless of confirmation.
	ProtectedTargets []string `mapstructure:"protected_targets" yaml:"protected_targets"`
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() *Policy {
	return &Policy{
		DangerousCommands: []string{
			"dd", "rm", "mknod", "umount", "blockdev",
		},
		ProtectedTargets: []string{
			"persist", "vm-persist", "modem_", "fsg", "xbl_", "vendor_boot",
		},
	}
}

// Validate checks that no pattern is empty. An empty pattern would match
// every command.
func (p *Policy) Validate() error {
	for i, pattern := range p.DangerousCommands {
		if pattern == "" {
			return fmt.Errorf("dangerous_commands[%d]: empty pattern", i)
		}
	}
	for i, pattern := range p.ProtectedTargets {
		if pattern == "" {
			return fmt.Errorf("protected_targets[%d]: empty pattern", i)
		}
	}
	return nil
}

// Clone returns a deep copy of the policy.
func (p *Policy) Clone() *Policy {
	return &Policy{
		DangerousCommands: slices.Clone(p.DangerousCommands),
		ProtectedTargets:  slices.Clone(p.ProtectedTargets),
	}
}
