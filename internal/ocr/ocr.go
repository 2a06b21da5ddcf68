// Package ocr finds a chat or tab in a screenshot of search results. The
// automation daemon runs `saydo ocr` and reads the JSON it prints.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/joss/saydo/internal/exec"
	"github.com/joss/saydo/internal/logging"
	"github.com/joss/saydo/internal/match"
)

// Mode selects the matching strategy.
type Mode string

const (
	ModeChat Mode = "chat"
	ModeTab  Mode = "tab"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeChat:
		return ModeChat, nil
	case ModeTab:
		return ModeTab, nil
	}
	return "", fmt.Errorf("unknown ocr mode %q (want chat or tab)", s)
}

// Recognizer extracts raw text from an image file.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Tesseract runs the tesseract CLI.
type Tesseract struct {
	Runner    exec.Runner
	Binary    string
	Languages string
	// Enhance converts to grayscale and boosts contrast first.
	Enhance bool
}

// NewTesseract creates a recognizer using r.
func NewTesseract(r exec.Runner) *Tesseract {
	return &Tesseract{Runner: r, Binary: "tesseract", Languages: "rus+eng", Enhance: true}
}

// Recognize runs tesseract in block mode with the configured languages,
// falling back to its default language when those are not installed.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	input := imagePath
	if t.Enhance {
		tmp, err := prepare(imagePath)
		if err != nil {
			return "", err
		}
		defer os.Remove(tmp)
		input = tmp
	}

	args := []string{input, "stdout", "--oem", "3", "--psm", "6"}
	if t.Languages != "" {
		out, _, err := t.Runner.RunSeparate(ctx, t.Binary, append(args, "-l", t.Languages)...)
		if err == nil {
			return string(out), nil
		}
		logging.New("ocr").Debug("language_fallback", map[string]interface{}{"languages": t.Languages, "error": err.Error()})
	}

	out, stderr, err := t.Runner.RunSeparate(ctx, t.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(string(stderr)))
	}
	return string(out), nil
}

// Report is the JSON contract the daemon consumes.
type Report struct {
	Index int      `json:"index"`
	Found bool     `json:"found"`
	Score *float64 `json:"score,omitempty"`
}

// ExitCode is 0 when a line was found and 1 otherwise.
func (r Report) ExitCode() int {
	if r.Found {
		return 0
	}
	return 1
}

// ErrNoScreenshot is returned when the image path does not exist.
var ErrNoScreenshot = errors.New("screenshot not found")

// Locator finds target among the recognized lines.
type Locator struct {
	Recognizer Recognizer
}

// Locate recognizes the screenshot and picks the matching line. OCR
// failures are reported as not found; only a missing file is an error.
func (l *Locator) Locate(ctx context.Context, mode Mode, imagePath, target string) (Report, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return Report{Index: -1}, fmt.Errorf("%w: %s", ErrNoScreenshot, imagePath)
	}

	log := logging.New("ocr")
	text, err := l.Recognizer.Recognize(ctx, imagePath)
	if err != nil {
		log.Warn("recognize_failed", map[string]interface{}{"image": imagePath}, err)
		return notFound(mode), nil
	}

	lines := match.CleanLines(text)
	rep := LocateLines(mode, lines, target)
	log.Debug("located", map[string]interface{}{
		"mode":  string(mode),
		"lines": len(lines),
		"index": rep.Index,
	})
	return rep, nil
}

// LocateLines matches already recognized lines.
func LocateLines(mode Mode, lines []string, target string) Report {
	if mode == ModeTab {
		m := match.BestTabLine(lines, target)
		if !m.Found {
			return notFound(mode)
		}
		return Report{Index: m.Index, Found: true, Score: score(m.Score)}
	}

	m := match.BestChatLine(lines, target)
	if !m.Found {
		return notFound(mode)
	}
	return Report{Index: m.Index, Found: true}
}

func notFound(mode Mode) Report {
	r := Report{Index: -1}
	if mode == ModeTab {
		r.Score = score(0)
	}
	return r
}

func score(v float64) *float64 {
	rounded := math.Round(v*100) / 100
	return &rounded
}
