// Package exec provides a testable command execution abstraction for the
// external tools saydo drives (tesseract, pgrep, transcribers).
package exec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	osexec "os/exec"
	"strings"
	"sync"
)

// Runner defines the interface for executing external commands.
// Inject this instead of calling exec.Command directly.
type Runner interface {
	// Run executes a command and returns combined stdout/stderr.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// RunWithStdin executes a command with stdin input.
	RunWithStdin(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error)

	// RunSeparate executes and returns stdout and stderr separately.
	RunSeparate(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

	// LookPath reports where name is installed.
	LookPath(name string) (string, error)
}

// OSRunner implements Runner using os/exec.
type OSRunner struct {
	// Env overrides environment variables (nil = inherit from parent)
	Env []string
}

// NewOSRunner creates a new OS-based command runner.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

func (r *OSRunner) command(ctx context.Context, name string, args ...string) *osexec.Cmd {
	cmd := osexec.CommandContext(ctx, name, args...)
	if r.Env != nil {
		cmd.Env = r.Env
	}
	return cmd
}

// Run executes a command and returns combined output.
func (r *OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.command(ctx, name, args...).CombinedOutput()
}

// RunWithStdin executes a command with stdin input.
func (r *OSRunner) RunWithStdin(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	cmd := r.command(ctx, name, args...)
	cmd.Stdin = stdin
	return cmd.CombinedOutput()
}

// RunSeparate executes and returns stdout and stderr separately.
func (r *OSRunner) RunSeparate(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := r.command(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func (r *OSRunner) LookPath(name string) (string, error) {
	return osexec.LookPath(name)
}

// MockRunner implements Runner for testing.
type MockRunner struct {
	mu sync.Mutex

	// Calls records all command invocations
	Calls []MockCall

	// Responses maps "name args..." (or just "name") to response
	Responses map[string]MockResponse

	// Installed lists the binaries LookPath finds.
	Installed map[string]bool
}

// MockCall records a single command invocation.
type MockCall struct {
	Name  string
	Args  []string
	Stdin string
}

// Line is the call as a shell-like string.
func (c MockCall) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// MockResponse defines the response for a mocked command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// NewMockRunner creates a new mock runner.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Responses: make(map[string]MockResponse),
		Installed: make(map[string]bool),
	}
}

// AddResponse sets the response for a command. The key is either the
// binary name or the full command line; the full line wins.
func (m *MockRunner) AddResponse(key string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[key] = resp
}

func (m *MockRunner) record(name string, args []string, stdin string) MockResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := MockCall{Name: name, Args: args, Stdin: stdin}
	m.Calls = append(m.Calls, call)
	if resp, ok := m.Responses[call.Line()]; ok {
		return resp
	}
	return m.Responses[name]
}

// CallLines returns every recorded invocation as a command line.
func (m *MockRunner) CallLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		out[i] = c.Line()
	}
	return out
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	resp := m.record(name, args, "")
	out := append(append([]byte(nil), resp.Stdout...), resp.Stderr...)
	return out, resp.Err
}

func (m *MockRunner) RunWithStdin(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	var in []byte
	if stdin != nil {
		in, _ = io.ReadAll(stdin)
	}
	resp := m.record(name, args, string(in))
	out := append(append([]byte(nil), resp.Stdout...), resp.Stderr...)
	return out, resp.Err
}

func (m *MockRunner) RunSeparate(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	resp := m.record(name, args, "")
	return resp.Stdout, resp.Stderr, resp.Err
}

func (m *MockRunner) LookPath(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Installed[name] {
		return "/usr/local/bin/" + name, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}

// Default is the runner commands use outside tests.
var Default Runner = NewOSRunner()
