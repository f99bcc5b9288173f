// Package state persists the active-run marker for a watched repository, so
// status commands can tell whether a tracker is (or was) running.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNotRunning is returned by Load when no run state file exists on disk.
var ErrNotRunning = errors.New("no active tracker run")

// RunState describes the tracker run that owns a repository's watch.
type RunState struct {
	RunID     string    `json:"run_id"`
	PID       int       `json:"pid"`
	StartTime time.Time `json:"start_time"`
	RepoPath  string    `json:"repo_path"`
}

// Store persists a RunState under the repository's .autosnap directory.
type Store struct {
	path string // full path to run.json
}

// NewStore returns a Store for the repository at repoPath, creating the
// .autosnap directory if needed.
func NewStore(repoPath string) (*Store, error) {
	dir := filepath.Join(repoPath, ".autosnap")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &Store{path: filepath.Join(dir, "run.json")}, nil
}

// Save marshals s to JSON and writes it atomically via a temp file + os.Rename.
func (st *Store) Save(s *RunState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to persist run state: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(st.path), "run-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist run state: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist run state: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist run state: %w", err)
	}

	if err = os.Rename(tmpName, st.path); err != nil {
		return fmt.Errorf("failed to persist run state: %w", err)
	}
	return nil
}

// Load reads and unmarshals the run state file.
// Returns ErrNotRunning if the file does not exist.
func (st *Store) Load() (*RunState, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotRunning
		}
		return nil, fmt.Errorf("failed to read run state: %w", err)
	}

	var s RunState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse run state: %w", err)
	}
	return &s, nil
}

// Delete removes the run state file from disk.
func (st *Store) Delete() error {
	if err := os.Remove(st.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete run state: %w", err)
	}
	return nil
}
