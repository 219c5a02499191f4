package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// LookPath reports whether the git executable is available.
func LookPath() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("%w: %v", ErrGitNotFound, err)
	}
	return nil
}

// Repo runs git commands inside one working tree.
type Repo struct {
	dir      string
	executor CommandExecutor
}

func NewRepo(dir string) *Repo {
	return NewRepoWithExecutor(dir, NewExecExecutor())
}

func NewRepoWithExecutor(dir string, executor CommandExecutor) *Repo {
	return &Repo{dir: dir, executor: executor}
}

func (r *Repo) Dir() string {
	return r.dir
}

// IsRepository reports whether the directory already has a .git entry.
func (r *Repo) IsRepository() bool {
	_, err := os.Stat(filepath.Join(r.dir, ".git"))
	return err == nil
}

func (r *Repo) run(ctx context.Context, env []string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return r.executor.ExecuteWithOutput(cmd)
}

func (r *Repo) Init(ctx context.Context) error {
	_, err := r.run(ctx, nil, "init")
	return err
}

// Add stages paths, given relative to the repository root.
func (r *Repo) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	_, err := r.run(ctx, nil, args...)
	return err
}

// Commit records the index, even when nothing changed. Author and committer
// dates are pinned to date so the same input produces the same history.
func (r *Repo) Commit(ctx context.Context, message string, date time.Time) error {
	// git's internal "<unix seconds> <offset>" form
	stamp := fmt.Sprintf("%d %s", date.Unix(), date.Format("-0700"))
	env := []string{
		"GIT_AUTHOR_DATE=" + stamp,
		"GIT_COMMITTER_DATE=" + stamp,
	}
	_, err := r.run(ctx, env, "commit", "--allow-empty", "--message", message)
	return err
}

func (r *Repo) HasRemote(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, nil, "remote")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (r *Repo) Push(ctx context.Context) error {
	_, err := r.run(ctx, nil, "push")
	return err
}
