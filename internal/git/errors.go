package git

import (
	"errors"
	"strings"
)

var (
	ErrGitNotFound        = errors.New("git executable not found in PATH")
	ErrGitOperationFailed = errors.New("git operation failed")
)

// GitError describes a failed git invocation.
type GitError struct {
	Operation string   // subcommand, e.g. "commit"
	Args      []string // arguments after the subcommand
	Err       error
	Stderr    string
}

func (e *GitError) Error() string {
	var b strings.Builder
	b.WriteString("git ")
	b.WriteString(e.Operation)
	for _, a := range e.Args {
		b.WriteString(" ")
		b.WriteString(a)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString(": ")
		b.WriteString(s)
	}
	return b.String()
}

func (e *GitError) Unwrap() error {
	return e.Err
}
