package git

import (
	"bytes"
	"fmt"
	"os/exec"
)

// CommandExecutor runs a prepared git command.
type CommandExecutor interface {
	// ExecuteWithOutput runs cmd and returns its stdout.
	ExecuteWithOutput(cmd *exec.Cmd) (string, error)
}

// ExecExecutor delegates to os/exec.
type ExecExecutor struct{}

func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// ExecuteWithOutput implements CommandExecutor.ExecuteWithOutput
func (e *ExecExecutor) ExecuteWithOutput(cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var op string
		var args []string
		// Args[0] is "git"
		if len(cmd.Args) > 1 {
			op = cmd.Args[1]
		}
		if len(cmd.Args) > 2 {
			args = cmd.Args[2:]
		}
		return "", &GitError{
			Operation: op,
			Args:      args,
			Err:       fmt.Errorf("%w: %v", ErrGitOperationFailed, err),
			Stderr:    stderr.String(),
		}
	}
	return stdout.String(), nil
}
