// Package git wraps the git binary with the narrow set of operations the
// tracker needs: staging, committing and backup branch management.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrBranchExists is returned by CreateBranch when a branch of the requested
// name already exists. The caller must not overwrite it.
var ErrBranchExists = errors.New("branch already exists")

// OpError wraps a failed git operation with enough context to diagnose it
// without reading source: the operation name, its arguments and the
// underlying cause.
type OpError struct {
	Op   string
	Args []string
	Err  error
}

func (e *OpError) Error() string {
	return "git " + e.Op + " " + strings.Join(e.Args, " ") + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Runner executes a git command in dir and returns its combined stdout.
// This abstraction allows mocking in tests.
type Runner func(dir string, args ...string) (string, error)

// defaultRunner runs git as a real subprocess. Stderr is folded into the
// returned error so failures carry git's own diagnostic.
func defaultRunner(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return string(out), fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return string(out), err
	}
	return string(out), nil
}

// Git drives a single local repository through the git binary.
type Git struct {
	Dir string
	Run Runner // if nil, uses the real git subprocess
}

// New returns a Git bound to the repository at dir.
func New(dir string) *Git {
	return &Git{Dir: dir}
}

func (g *Git) run(args ...string) (string, error) {
	runner := g.Run
	if runner == nil {
		runner = defaultRunner
	}
	return runner(g.Dir, args...)
}

// IsRepo reports whether Dir is inside a git work tree.
func (g *Git) IsRepo() bool {
	out, err := g.run("rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// CurrentBranch returns the name of the checked-out branch.
func (g *Git) CurrentBranch() (string, error) {
	out, err := g.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", &OpError{Op: "rev-parse", Args: []string{"--abbrev-ref", "HEAD"}, Err: err}
	}
	return strings.TrimSpace(out), nil
}

// Stage stages exactly the given repository-relative paths. Each path is
// staged independently so one bad path (already deleted and never tracked,
// say) cannot block the rest. The returned error joins the individual
// failures, if any.
func (g *Git) Stage(paths []string) error {
	var errs []error
	for _, p := range paths {
		if _, err := g.run("add", "-A", "--", p); err != nil {
			errs = append(errs, &OpError{Op: "add", Args: []string{p}, Err: err})
		}
	}
	return errors.Join(errs...)
}

// HasStagedChanges reports whether the index differs from HEAD.
func (g *Git) HasStagedChanges() (bool, error) {
	// diff --cached --quiet exits 1 when there are staged changes.
	_, err := g.run("diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, &OpError{Op: "diff", Args: []string{"--cached", "--quiet"}, Err: err}
}

// Commit records the staged changes and returns the new commit hash.
func (g *Git) Commit(message string) (string, error) {
	if _, err := g.run("commit", "-m", message); err != nil {
		return "", &OpError{Op: "commit", Err: err}
	}
	out, err := g.run("rev-parse", "HEAD")
	if err != nil {
		return "", &OpError{Op: "rev-parse", Args: []string{"HEAD"}, Err: err}
	}
	return strings.TrimSpace(out), nil
}

// CreateBranch creates a branch at the current commit. Returns
// ErrBranchExists when the name is already taken.
func (g *Git) CreateBranch(name string) error {
	if _, err := g.run("rev-parse", "--verify", "--quiet", "refs/heads/"+name); err == nil {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	}
	if _, err := g.run("branch", name); err != nil {
		return &OpError{Op: "branch", Args: []string{name}, Err: err}
	}
	return nil
}

// ListBranches returns the local branches whose name starts with prefix,
// sorted ascending by name. Branch names embed a sortable timestamp, so
// name order is creation order.
func (g *Git) ListBranches(prefix string) ([]string, error) {
	out, err := g.run("for-each-ref", "--format=%(refname:short)",
		"--sort=refname", "refs/heads/"+prefix+"*")
	if err != nil {
		return nil, &OpError{Op: "for-each-ref", Args: []string{prefix}, Err: err}
	}
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

// DeleteBranch force-deletes a local branch.
func (g *Git) DeleteBranch(name string) error {
	if _, err := g.run("branch", "-D", name); err != nil {
		return &OpError{Op: "branch", Args: []string{"-D", name}, Err: err}
	}
	return nil
}
