package core

import "strings"

// Command is an external command to run.
type Command struct {
	Cmd  string   `json:"cmd"`
	Args []string `json:"args"`
}

// Argv returns the command as an argument vector.
func (c Command) Argv() []string {
	return append([]string{c.Cmd}, c.Args...)
}

// String returns the command line joined with spaces.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// ParseArgv builds a command from an argument vector.
func ParseArgv(argv []string) Command {
	if len(argv) == 0 {
		return Command{}
	}
	return Command{Cmd: argv[0], Args: append([]string{}, argv[1:]...)}
}
