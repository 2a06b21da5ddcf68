package listen

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joss/saydo/internal/exec"
)

// ErrNothingHeard means a capture ended without usable speech. The loop
// simply listens again.
var ErrNothingHeard = errors.New("nothing heard")

// Transcriber captures one utterance and returns its text. io.EOF ends
// the listen loop.
type Transcriber interface {
	Next(ctx context.Context) (string, error)
}

// LineTranscriber reads one utterance per line, e.g. from a dictation
// tool piped into stdin.
type LineTranscriber struct {
	lines chan string
	err   chan error
}

// NewLineTranscriber starts reading r. The reader goroutine exits when r
// returns an error or EOF.
func NewLineTranscriber(r io.Reader) *LineTranscriber {
	t := &LineTranscriber{lines: make(chan string), err: make(chan error, 1)}
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			t.lines <- sc.Text()
		}
		if err := sc.Err(); err != nil {
			t.err <- err
		} else {
			t.err <- io.EOF
		}
		close(t.lines)
	}()
	return t
}

func (t *LineTranscriber) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return "", ErrNothingHeard
		}
		return line, nil
	case err := <-t.err:
		// Keep the terminal error visible to later calls.
		t.err <- err
		return "", err
	}
}

// CommandTranscriber runs an external speech-to-text command once per
// capture and reads the transcription from its stdout.
type CommandTranscriber struct {
	Runner  exec.Runner
	Command string
}

// NewCommandTranscriber creates a transcriber for the shell command cmd.
func NewCommandTranscriber(r exec.Runner, cmd string) *CommandTranscriber {
	return &CommandTranscriber{Runner: r, Command: cmd}
}

func (t *CommandTranscriber) Next(ctx context.Context) (string, error) {
	stdout, stderr, err := t.Runner.RunSeparate(ctx, "sh", "-c", t.Command)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", fmt.Errorf("transcriber %q: %w: %s", t.Command, err, strings.TrimSpace(string(stderr)))
	}
	text := strings.TrimSpace(string(stdout))
	if text == "" {
		return "", ErrNothingHeard
	}
	return text, nil
}
