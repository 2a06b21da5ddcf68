// Package logging provides structured JSON logging for saydo components.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Event represents a structured log event
type Event struct {
	Timestamp string                 `json:"ts"`
	Level     Level                  `json:"level"`
	Component string                 `json:"component"`
	Event     string                 `json:"event"`
	Session   string                 `json:"session,omitempty"`
	CommandID string                 `json:"command_id,omitempty"`
	Duration  int64                  `json:"duration_ms,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

var (
	outMu    sync.Mutex
	out      io.Writer = os.Stderr
	minLevel           = parseLevel(os.Getenv("SAYDO_LOG_LEVEL"))

	sessionID   string
	sessionOnce sync.Once
)

// SetOutput redirects all loggers. Returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return prev
}

// SetLevel sets the minimum level that is emitted.
func SetLevel(l Level) {
	outMu.Lock()
	defer outMu.Unlock()
	minLevel = l
}

func parseLevel(s string) Level {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := levelRank[l]; ok {
		return l
	}
	return LevelInfo
}

// Session returns the process-wide session id shared by every logger.
func Session() string {
	sessionOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// Logger provides structured logging
type Logger struct {
	component string
	commandID string
}

// New creates a new logger for a component
func New(component string) *Logger {
	return &Logger{component: component}
}

// WithCommand tags subsequent events with a command id.
func (l *Logger) WithCommand(id string) *Logger {
	return &Logger{component: l.component, commandID: id}
}

func (l *Logger) emit(e Event) {
	outMu.Lock()
	defer outMu.Unlock()
	if levelRank[e.Level] < levelRank[minLevel] {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	// Logging is best-effort; write errors are dropped.
	_, _ = fmt.Fprintln(out, string(data))
}

// log emits a structured log event
func (l *Logger) log(level Level, event string, extra map[string]interface{}, err error) {
	e := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: l.component,
		Event:     event,
		Session:   Session(),
		CommandID: l.commandID,
		Extra:     extra,
	}

	if err != nil {
		e.Error = err.Error()
	}

	l.emit(e)
}

// Debug logs a debug event
func (l *Logger) Debug(event string, extra map[string]interface{}) {
	l.log(LevelDebug, event, extra, nil)
}

// Info logs an info event
func (l *Logger) Info(event string, extra map[string]interface{}) {
	l.log(LevelInfo, event, extra, nil)
}

// Warn logs a warning event
func (l *Logger) Warn(event string, extra map[string]interface{}, err error) {
	l.log(LevelWarn, event, extra, err)
}

// Error logs an error event
func (l *Logger) Error(event string, extra map[string]interface{}, err error) {
	l.log(LevelError, event, extra, err)
}

// TimedEvent logs an event with duration
func (l *Logger) TimedEvent(event string, start time.Time, extra map[string]interface{}, err error) {
	level := LevelInfo
	if err != nil {
		level = LevelWarn
	}
	e := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: l.component,
		Event:     event,
		Session:   Session(),
		CommandID: l.commandID,
		Duration:  time.Since(start).Milliseconds(),
		Extra:     extra,
	}
	if err != nil {
		e.Error = err.Error()
	}

	l.emit(e)
}

// DaemonEvent logs one request to the automation daemon.
func DaemonEvent(cmd string, ok bool, duration time.Duration, err error) {
	e := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     LevelDebug,
		Component: "daemon",
		Event:     "call",
		Session:   Session(),
		Duration:  duration.Milliseconds(),
		Extra: map[string]interface{}{
			"cmd": cmd,
			"ok":  ok,
		},
	}

	if err != nil {
		e.Level = LevelWarn
		e.Error = err.Error()
	}

	New("daemon").emit(e)
}

// HealthEvent logs a health check event
func HealthEvent(component, message string, healthy bool) {
	level := LevelInfo
	if !healthy {
		level = LevelWarn
	}

	New("health").emit(Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: "health",
		Event:     "check",
		Session:   Session(),
		Extra: map[string]interface{}{
			"target":  component,
			"message": message,
			"healthy": healthy,
		},
	})
}
