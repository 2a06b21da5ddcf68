package exec

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockRunnerFullLineWins(t *testing.T) {
	m := NewMockRunner()
	m.AddResponse("tesseract", MockResponse{Stdout: []byte("generic")})
	m.AddResponse("tesseract shot.png stdout -l rus+eng", MockResponse{Err: errors.New("no rus")})

	_, _, err := m.RunSeparate(context.Background(), "tesseract", "shot.png", "stdout", "-l", "rus+eng")
	assert.Error(t, err)

	out, _, err := m.RunSeparate(context.Background(), "tesseract", "shot.png", "stdout")
	require.NoError(t, err)
	assert.Equal(t, "generic", string(out))

	assert.Equal(t, []string{
		"tesseract shot.png stdout -l rus+eng",
		"tesseract shot.png stdout",
	}, m.CallLines())
}

func TestMockRunnerCombinesOutput(t *testing.T) {
	m := NewMockRunner()
	m.AddResponse("pgrep", MockResponse{Stdout: []byte("123\n"), Stderr: []byte("warn")})

	out, err := m.Run(context.Background(), "pgrep", "-x", "Google Chrome")
	require.NoError(t, err)
	assert.Equal(t, "123\nwarn", string(out))
	assert.Equal(t, []string{"-x", "Google Chrome"}, m.Calls[0].Args)
}

func TestMockRunnerStdin(t *testing.T) {
	m := NewMockRunner()

	_, err := m.RunWithStdin(context.Background(), strings.NewReader("audio"), "whisper")
	require.NoError(t, err)
	assert.Equal(t, "audio", m.Calls[0].Stdin)
}

func TestMockRunnerLookPath(t *testing.T) {
	m := NewMockRunner()
	m.Installed["tesseract"] = true

	p, err := m.LookPath("tesseract")
	require.NoError(t, err)
	assert.Contains(t, p, "tesseract")

	_, err = m.LookPath("pgrep")
	assert.Error(t, err)
}

func TestOSRunnerSeparate(t *testing.T) {
	r := NewOSRunner()
	if _, err := r.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	stdout, stderr, err := r.RunSeparate(context.Background(), "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(stdout))
	assert.Equal(t, "err\n", string(stderr))
}
