// Package e2e provides end-to-end testing utilities for the redraw CLI.
package e2e

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Harness provides utilities for end-to-end CLI testing.
type Harness struct {
	T            *testing.T
	BinaryPath   string
	WorkDir      string
	EnvVars      map[string]string
	Timeout      time.Duration
	LastOutput   string
	LastError    string
	LastExitCode int
}

// NewHarness creates a new end-to-end test harness.
// It builds the redraw binary if needed.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	workDir := filepath.Join(t.TempDir(), "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", workDir, err)
	}

	return &Harness{
		T:          t,
		BinaryPath: getBinary(t),
		WorkDir:    workDir,
		EnvVars:    make(map[string]string),
		Timeout:    30 * time.Second,
	}
}

// getBinary returns the path to the redraw binary.
// It builds the binary unless REDRAW_BINARY points at one.
func getBinary(t *testing.T) string {
	t.Helper()

	if path := os.Getenv("REDRAW_BINARY"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	binaryPath := filepath.Join(t.TempDir(), "redraw-test")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/redraw")
	cmd.Dir = findProjectRoot(t)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to build redraw binary: %v\n%s", err, stderr.String())
	}

	return binaryPath
}

// findProjectRoot finds the project root directory.
func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}

// WithEnv sets an environment variable for commands.
func (h *Harness) WithEnv(key, value string) *Harness {
	h.EnvVars[key] = value
	return h
}

// Run executes a redraw command and returns the exit code.
func (h *Harness) Run(args ...string) int {
	h.T.Helper()

	cmd := exec.Command(h.BinaryPath, args...)
	cmd.Dir = h.WorkDir
	cmd.Env = os.Environ()
	for k, v := range h.EnvVars {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- cmd.Run()
	}()

	select {
	case err := <-done:
		h.LastOutput = stdout.String()
		h.LastError = stderr.String()
		h.LastExitCode = 0
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				h.LastExitCode = exitErr.ExitCode()
			} else {
				h.LastExitCode = -1
			}
		}
	case <-time.After(h.Timeout):
		_ = cmd.Process.Kill()
		h.T.Fatalf("command timed out after %v: %v", h.Timeout, args)
	}

	return h.LastExitCode
}

// RunSuccess executes a command and expects it to succeed.
func (h *Harness) RunSuccess(args ...string) string {
	h.T.Helper()

	if exitCode := h.Run(args...); exitCode != 0 {
		h.T.Fatalf("command failed with exit code %d: %v\nOutput: %s\nStderr: %s",
			exitCode, args, h.LastOutput, h.LastError)
	}
	return h.LastOutput
}

// RunFail executes a command and expects it to fail.
func (h *Harness) RunFail(args ...string) string {
	h.T.Helper()

	if h.Run(args...) == 0 {
		h.T.Fatalf("command succeeded but expected failure: %v\nOutput: %s", args, h.LastOutput)
	}
	return h.LastOutput + h.LastError
}

// Plan runs redraw plan against a document in the work directory.
func (h *Harness) Plan(document string, extraArgs ...string) string {
	h.T.Helper()

	args := append([]string{"plan", "--config", document}, extraArgs...)
	return h.RunSuccess(args...)
}

// Render runs redraw render against documents in the work directory.
func (h *Harness) Render(output string, documents ...string) string {
	h.T.Helper()

	args := []string{"render", "--config", documents[0], "--output", output}
	args = append(args, documents[1:]...)
	return h.RunSuccess(args...)
}

// CreateFile creates a file in the work directory.
func (h *Harness) CreateFile(relativePath, content string) string {
	h.T.Helper()

	path := filepath.Join(h.WorkDir, relativePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		h.T.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		h.T.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// FileExists checks if a file exists in the work directory.
func (h *Harness) FileExists(relativePath string) bool {
	_, err := os.Stat(filepath.Join(h.WorkDir, relativePath))
	return err == nil
}

// ReadFile reads a file from the work directory.
func (h *Harness) ReadFile(relativePath string) string {
	h.T.Helper()

	content, err := os.ReadFile(filepath.Join(h.WorkDir, relativePath))
	if err != nil {
		h.T.Fatalf("failed to read file %s: %v", relativePath, err)
	}
	return string(content)
}

// OutputContains checks if the last output contains a string.
func (h *Harness) OutputContains(s string) bool {
	return strings.Contains(h.LastOutput, s) || strings.Contains(h.LastError, s)
}

// AssertOutputContains asserts the last output contains a string.
func (h *Harness) AssertOutputContains(s string) {
	h.T.Helper()

	if !h.OutputContains(s) {
		h.T.Errorf("expected output to contain %q, got:\n%s", s, h.LastOutput+h.LastError)
	}
}

// AssertFileExists asserts a file exists in the work directory.
func (h *Harness) AssertFileExists(relativePath string) {
	h.T.Helper()

	if !h.FileExists(relativePath) {
		h.T.Errorf("expected file to exist: %s", relativePath)
	}
}
