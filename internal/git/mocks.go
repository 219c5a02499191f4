package git

import (
	"os/exec"
	"strings"
)

// MockCommandExecutor records commands instead of running them.
type MockCommandExecutor struct {
	Commands []*exec.Cmd

	// Outputs maps a subcommand ("remote", "init", ...) to its stdout.
	Outputs map[string]string
	// Errors maps a subcommand to the error it fails with.
	Errors map[string]error
}

func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Outputs: make(map[string]string),
		Errors:  make(map[string]error),
	}
}

// ExecuteWithOutput implements the CommandExecutor interface
func (m *MockCommandExecutor) ExecuteWithOutput(cmd *exec.Cmd) (string, error) {
	m.Commands = append(m.Commands, cmd)

	op := ""
	if len(cmd.Args) > 1 {
		op = cmd.Args[1]
	}
	if err, ok := m.Errors[op]; ok {
		return "", err
	}
	return m.Outputs[op], nil
}

// Invocations returns every recorded command line without the leading "git".
func (m *MockCommandExecutor) Invocations() []string {
	out := make([]string, len(m.Commands))
	for i, c := range m.Commands {
		out[i] = strings.Join(c.Args[1:], " ")
	}
	return out
}

// Count returns how many times the subcommand op was run.
func (m *MockCommandExecutor) Count(op string) int {
	n := 0
	for _, c := range m.Commands {
		if len(c.Args) > 1 && c.Args[1] == op {
			n++
		}
	}
	return n
}
