package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "autosnap.log")

	log, closeLog, err := Setup(logFile, false)
	if err != nil {
		t.Fatalf("Setup returned unexpected error: %v", err)
	}

	log.Info("created commit", "commit", "abc123")
	if err := closeLog(); err != nil {
		t.Fatalf("close returned unexpected error: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "created commit") {
		t.Errorf("log file %q missing the record message", string(data))
	}
	if !strings.Contains(string(data), "commit=abc123") {
		t.Errorf("log file %q missing the structured attribute", string(data))
	}
}

func TestSetupDebugLevelGating(t *testing.T) {
	dir := t.TempDir()

	quietFile := filepath.Join(dir, "quiet.log")
	log, closeLog, err := Setup(quietFile, false)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hidden detail")
	closeLog()

	data, _ := os.ReadFile(quietFile)
	if strings.Contains(string(data), "hidden detail") {
		t.Error("debug record written without verbose mode")
	}

	verboseFile := filepath.Join(dir, "verbose.log")
	log, closeLog, err = Setup(verboseFile, true)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hidden detail")
	closeLog()

	data, _ = os.ReadFile(verboseFile)
	if !strings.Contains(string(data), "hidden detail") {
		t.Error("debug record missing in verbose mode")
	}
}

func TestSetupAppends(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "autosnap.log")

	log, closeLog, err := Setup(logFile, false)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("first run")
	closeLog()

	log, closeLog, err = Setup(logFile, false)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("second run")
	closeLog()

	data, _ := os.ReadFile(logFile)
	if !strings.Contains(string(data), "first run") || !strings.Contains(string(data), "second run") {
		t.Errorf("log file %q missing records from both runs", string(data))
	}
}
