package listen

import (
	"context"
	"errors"
	"io"

	"github.com/joss/saydo/internal/dispatch"
	"github.com/joss/saydo/internal/history"
	"github.com/joss/saydo/internal/logging"
)

// Executor runs one command. *dispatch.Dispatcher implements it.
type Executor interface {
	Run(ctx context.Context, text, fullText string) *dispatch.Report
}

// Recorder stores heard speech. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, e *history.Entry) error
}

// EventKind says what happened during one capture.
type EventKind string

const (
	EventListening EventKind = "listening"
	EventHeard     EventKind = "heard"
	EventNoWake    EventKind = "no_wake_word"
	EventEmpty     EventKind = "empty_command"
	EventExecuted  EventKind = "executed"
	EventError     EventKind = "error"
)

// Event is reported to the UI after each step.
type Event struct {
	Kind   EventKind
	Text   string
	Wake   Wake
	Report *dispatch.Report
	Err    error
}

// DefaultMaxErrors is how many transcriber failures in a row stop the loop.
const DefaultMaxErrors = 3

// Loop alternates strictly between capturing and executing. Only one
// command is ever in flight.
type Loop struct {
	Transcriber Transcriber
	Executor    Executor
	Detector    *Detector

	// History receives every transcription. Optional.
	History Recorder
	// OnEvent is called synchronously from the loop goroutine. Optional.
	OnEvent func(Event)

	MaxErrors int
}

// NewLoop creates a loop with the default wake words.
func NewLoop(t Transcriber, e Executor) *Loop {
	return &Loop{Transcriber: t, Executor: e, Detector: defaultDetector, MaxErrors: DefaultMaxErrors}
}

// Run listens until ctx is cancelled or the transcriber is exhausted. It
// returns nil in both cases; only repeated transcriber failures are errors.
func (l *Loop) Run(ctx context.Context) error {
	log := logging.New("listen")
	log.Info("started", nil)
	defer log.Info("stopped", nil)

	failures := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		l.emit(Event{Kind: EventListening})
		text, err := l.Transcriber.Next(ctx)
		switch {
		case err == nil:
			failures = 0
		case errors.Is(err, io.EOF), ctx.Err() != nil:
			return nil
		case errors.Is(err, ErrNothingHeard):
			continue
		default:
			failures++
			log.Warn("transcribe_failed", map[string]interface{}{"failures": failures}, err)
			l.emit(Event{Kind: EventError, Err: err})
			if failures >= l.maxErrors() {
				return err
			}
			continue
		}

		l.handle(ctx, text)
	}
}

// handle processes one transcription to completion before the next capture.
func (l *Loop) handle(ctx context.Context, text string) {
	log := logging.New("listen")
	log.Debug("heard", map[string]interface{}{"text": text})
	l.emit(Event{Kind: EventHeard, Text: text})

	if l.History != nil {
		if err := l.History.Record(ctx, &history.Entry{Kind: history.KindHeard, Text: text}); err != nil {
			log.Warn("history_failed", nil, err)
		}
	}

	det := l.Detector
	if det == nil {
		det = defaultDetector
	}
	w := det.Extract(text)
	switch {
	case !w.Found:
		l.emit(Event{Kind: EventNoWake, Text: text, Wake: w})
		return
	case w.Command == "":
		l.emit(Event{Kind: EventEmpty, Text: text, Wake: w})
		return
	}

	var rep *dispatch.Report
	err := logging.NewRecoveryHandler("listen").WrapError(func() error {
		rep = l.Executor.Run(ctx, w.Command, text)
		return nil
	})
	if err != nil {
		l.emit(Event{Kind: EventError, Text: text, Wake: w, Err: err})
		return
	}
	l.emit(Event{Kind: EventExecuted, Text: text, Wake: w, Report: rep})
}

func (l *Loop) emit(e Event) {
	if l.OnEvent != nil {
		l.OnEvent(e)
	}
}

func (l *Loop) maxErrors() int {
	if l.MaxErrors <= 0 {
		return DefaultMaxErrors
	}
	return l.MaxErrors
}
