// Package dispatch runs one utterance through the pipeline: parse, pick a
// driver, resolve the target, open it and perform the intent.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/joss/saydo/internal/domain"
	"github.com/joss/saydo/internal/driver"
	"github.com/joss/saydo/internal/history"
	"github.com/joss/saydo/internal/intent"
	"github.com/joss/saydo/internal/logging"
	"github.com/joss/saydo/internal/textnorm"
	"github.com/joss/saydo/internal/whitelist"
)

// Recorder persists executed commands. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, e *history.Entry) error
}

// Observer receives one sample per command. *metrics.Metrics implements it.
type Observer interface {
	RecordCommand(kind domain.FailureKind, durationMs int64)
}

// Report describes one execution.
type Report struct {
	CommandID string            `json:"command_id,omitempty"`
	Text      string            `json:"text"`
	FullText  string            `json:"full_text,omitempty"`
	Command   intent.Command    `json:"command"`
	Rule      string            `json:"rule,omitempty"`
	Outcome   whitelist.Outcome `json:"outcome"`
	Trace     Trace             `json:"trace"`
	Result    domain.Result     `json:"result"`
	Duration  time.Duration     `json:"-"`
}

// Dispatcher executes commands. It is synchronous and never retries.
type Dispatcher struct {
	router   *intent.Router
	resolver *whitelist.Resolver
	drivers  *driver.Registry

	// History and Metrics are optional; failures to record are logged and dropped.
	History Recorder
	Metrics Observer
}

// New creates a dispatcher.
func New(router *intent.Router, resolver *whitelist.Resolver, drivers *driver.Registry) *Dispatcher {
	return &Dispatcher{router: router, resolver: resolver, drivers: drivers}
}

// Execute runs text and returns the last attempted result.
func (d *Dispatcher) Execute(ctx context.Context, text string) domain.Result {
	return d.Run(ctx, text, text).Result
}

// Run executes the command text. fullText is what was heard around it and
// only ends up in history.
func (d *Dispatcher) Run(ctx context.Context, text, fullText string) *Report {
	start := time.Now()
	if logging.CommandID(ctx) == "" {
		ctx = logging.WithCommandID(ctx, "")
	}
	rep := &Report{CommandID: logging.CommandID(ctx), Text: text, FullText: fullText}
	rep.Trace.enter(StateStart, "")

	drv, res := d.prepare(rep)
	if drv != nil {
		res = d.perform(ctx, drv, rep)
	}
	rep.Result = res
	if res.OK {
		rep.Trace.enter(StateDone, "")
	} else {
		rep.Trace.enter(StateFailed, res.Error)
	}
	rep.Duration = time.Since(start)

	d.finish(ctx, rep, start)
	return rep
}

// Plan parses and resolves text without touching any driver.
func (d *Dispatcher) Plan(text string) *Report {
	rep := &Report{Text: text, FullText: text}
	rep.Trace.enter(StateStart, "")
	drv, res := d.prepare(rep)
	if drv != nil {
		res = domain.Success(nil)
	}
	rep.Result = res
	if !res.OK {
		rep.Trace.enter(StateFailed, res.Error)
	}
	return rep
}

// prepare parses, selects the driver and resolves the target. A nil driver
// means the returned result is the final failure.
func (d *Dispatcher) prepare(rep *Report) (driver.Driver, domain.Result) {
	cmd, rule, ok := d.router.Match(rep.Text)
	if !ok {
		return nil, domain.Failure(domain.KindParse, "command not recognized: "+rep.Text, nil)
	}
	rep.Command = cmd
	rep.Rule = rule
	rep.Trace.enter(StateParsed, rule)

	drv, err := d.drivers.Get(cmd.Driver)
	if err != nil {
		return nil, domain.FromError(err)
	}
	if res, ok := checkCapabilities(drv, cmd.Intent); !ok {
		return nil, res
	}

	if !drv.Capabilities().Chats {
		rep.Outcome = whitelist.Outcome{Canonical: cmd.Target, Policy: whitelist.AutoOCR()}
		rep.Trace.enter(StateResolved, cmd.Target)
		return drv, domain.Result{}
	}

	outcome, err := d.resolver.Resolve(cmd.Target)
	if err != nil {
		return nil, resolutionFailure(err)
	}
	rep.Outcome = outcome
	rep.Trace.enter(StateResolved, outcome.Canonical)
	return drv, domain.Result{}
}

func (d *Dispatcher) perform(ctx context.Context, drv driver.Driver, rep *Report) domain.Result {
	res := drv.Open(ctx, rep.Outcome.Canonical, rep.Outcome.Policy)
	if !res.OK {
		return res
	}
	rep.Trace.enter(StateOpened, rep.Outcome.Canonical)

	switch rep.Command.Intent {
	case intent.SendMessage:
		msg := textnorm.CleanOneLine(rep.Command.Message)
		if msg == "" {
			return domain.Failure(domain.KindOperation, "message is empty", nil)
		}
		return drv.Send(ctx, msg)
	case intent.Paste:
		return drv.Paste(ctx)
	}
	return res
}

// checkCapabilities rejects a command before any daemon call when the
// driver cannot finish it.
func checkCapabilities(drv driver.Driver, in intent.Intent) (domain.Result, bool) {
	caps := drv.Capabilities()
	var op string
	switch {
	case !caps.Open:
		op = "open"
	case in == intent.SendMessage && !caps.Send:
		op = "send"
	case in == intent.Paste && !caps.Paste:
		op = "paste"
	default:
		return domain.Result{}, true
	}
	return domain.Failure(domain.KindUnsupported, drv.Name()+" driver does not support "+op, map[string]any{
		"driver":    drv.Name(),
		"operation": op,
	}), false
}

func resolutionFailure(err error) domain.Result {
	var re *domain.ResolutionError
	if errors.As(err, &re) {
		data := map[string]any{"target": re.Target}
		if len(re.Suggestions) > 0 {
			data["suggestions"] = re.Suggestions
		}
		return domain.Failure(domain.KindResolution, re.Error(), data)
	}
	return domain.FromError(err)
}

func (d *Dispatcher) finish(ctx context.Context, rep *Report, start time.Time) {
	log := logging.FromContext(ctx, "dispatch")
	res := rep.Result

	extra := map[string]interface{}{
		"text":  rep.Text,
		"trace": rep.Trace.String(),
	}
	if rep.Rule != "" {
		extra["rule"] = rep.Rule
		extra["intent"] = string(rep.Command.Intent)
		extra["driver"] = rep.Command.Driver
		extra["target"] = rep.Outcome.Canonical
	}
	if !res.OK {
		extra["kind"] = string(res.Kind)
	}
	log.TimedEvent("command", start, extra, res.Err())

	if d.Metrics != nil {
		d.Metrics.RecordCommand(res.Kind, rep.Duration.Milliseconds())
	}

	if d.History == nil {
		return
	}
	e := &history.Entry{
		Kind:      history.KindCommand,
		Text:      rep.Text,
		FullText:  rep.FullText,
		Driver:    rep.Command.Driver,
		Intent:    string(rep.Command.Intent),
		Target:    rep.Command.Target,
		OK:        res.OK,
		Error:     res.Error,
		Failure:   string(res.Kind),
		Duration:  rep.Duration,
		CommandID: rep.CommandID,
	}
	if res.Kind == domain.KindParse {
		e.Kind = history.KindUnrecognized
	}
	if err := d.History.Record(ctx, e); err != nil {
		log.Warn("history_failed", nil, err)
	}
}
