package security

import (
	"slices"
	"strings"
)

// Classification is the verdict of the classifier for one command.
type Classification int

const (
	Benign Classification = iota
	DangerousCommand
	ProtectedTarget
)

// String returns the classification name.
func (c Classification) String() string {
	switch c {
	case Benign:
		return "benign"
	case DangerousCommand:
		return "dangerous_command"
	case ProtectedTarget:
		return "protected_target"
	default:
		return "unknown"
	}
}

// Result is the outcome of classifying one command.
type Result struct {
	Classification Classification
	// Pattern is the policy pattern that matched, empty for Benign.
	Pattern string
	// Command is the bounded command that was scanned.
	Command string
	// Truncated is set when the command was cut to MaxCommandLen, in
	// which case a match may have been missed or faked.
	Truncated bool
}

// Classifier matches commands against an immutable policy.
type Classifier struct {
	dangerous []string
	protected []string
}

// NewClassifier creates a classifier from a copy of policy. A nil policy
// selects DefaultPolicy.
func NewClassifier(policy *Policy) *Classifier {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Classifier{
		dangerous: slices.Clone(policy.DangerousCommands),
		protected: slices.Clone(policy.ProtectedTargets),
	}
}

// Classify scans cmd against protected targets first, then dangerous
// commands.
func (c *Classifier) Classify(cmd CommandString) Result {
	result := Result{
		Classification: Benign,
		Command:        cmd.String(),
		Truncated:      cmd.Truncated(),
	}

	if pattern, ok := firstMatch(result.Command, c.protected); ok {
		result.Classification = ProtectedTarget
		result.Pattern = pattern
		return result
	}

	if pattern, ok := firstMatch(result.Command, c.dangerous); ok {
		result.Classification = DangerousCommand
		result.Pattern = pattern
	}

	return result
}

// ClassifyRaw copies raw into a bounded command and classifies it.
func (c *Classifier) ClassifyRaw(raw []byte) (Result, error) {
	cmd, err := NewCommandString(raw)
	if err != nil {
		return Result{}, err
	}
	return c.Classify(cmd), nil
}

// ClassifyArgv joins argv into a bounded command and classifies it.
func (c *Classifier) ClassifyArgv(argv []string) (Result, error) {
	cmd, err := CommandFromArgv(argv)
	if err != nil {
		return Result{}, err
	}
	return c.Classify(cmd), nil
}

// Policy returns a copy of the policy the classifier evaluates.
func (c *Classifier) Policy() *Policy {
	return &Policy{
		DangerousCommands: slices.Clone(c.dangerous),
		ProtectedTargets:  slices.Clone(c.protected),
	}
}

func firstMatch(cmd string, patterns []string) (string, bool) {
	for _, pattern := range patterns {
		if strings.Contains(cmd, pattern) {
			return pattern, true
		}
	}
	return "", false
}
