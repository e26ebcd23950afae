package security

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// MaxCommandLen is the number of command bytes kept for classification.
const MaxCommandLen = 255

// CommandString is a bounded copy of a caller-supplied command line.
type CommandString struct {
	value     string
	truncated bool
}

// NewCommandString copies raw into a bounded command string. Input longer
// than MaxCommandLen is truncated, not rejected. A nil or empty buffer, or
// one containing a NUL byte, fails with ErrInvalidInput.
func NewCommandString(raw []byte) (CommandString, error) {
	if len(raw) == 0 {
		return CommandString{}, fmt.Errorf("%w: empty command", ErrInvalidInput)
	}

	truncated := false
	if len(raw) > MaxCommandLen {
		raw = raw[:MaxCommandLen]
		truncated = true
	}

	// execve arguments are C strings, so a NUL means the buffer is corrupt
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		return CommandString{}, fmt.Errorf("%w: NUL byte at offset %d", ErrInvalidInput, i)
	}

	return CommandString{value: string(raw), truncated: truncated}, nil
}

// CommandFromArgv builds a command string from an argument vector, joining
// the arguments with single spaces.
func CommandFromArgv(argv []string) (CommandString, error) {
	if len(argv) == 0 || argv[0] == "" {
		return CommandString{}, fmt.Errorf("%w: empty argument vector", ErrInvalidInput)
	}
	return NewCommandString([]byte(strings.Join(argv, " ")))
}

// ReadCommand copies at most MaxCommandLen bytes of a command from r. It
// never reads more than one byte past the bound.
func ReadCommand(r io.Reader) (CommandString, error) {
	if r == nil {
		return CommandString{}, fmt.Errorf("%w: nil reader", ErrInvalidInput)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxCommandLen+1))
	if err != nil {
		return CommandString{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return NewCommandString(bytes.TrimRight(data, "\r\n"))
}

// String returns the (possibly truncated) command.
func (c CommandString) String() string {
	return c.value
}

// Truncated reports whether the original command exceeded MaxCommandLen.
func (c CommandString) Truncated() bool {
	return c.truncated
}
