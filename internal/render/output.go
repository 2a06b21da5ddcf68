package render

import (
	"fmt"
	"io"
	"time"

	"github.com/joss/saydo/internal/browser"
	"github.com/joss/saydo/internal/dispatch"
	"github.com/joss/saydo/internal/domain"
	"github.com/joss/saydo/internal/health"
	"github.com/joss/saydo/internal/intent"
	sstrings "github.com/joss/saydo/internal/strings"
	"github.com/joss/saydo/internal/whitelist"
)

// Examples are shown when an utterance matches no rule.
var Examples = []string{
	"открой чат прокачка и напиши «всем привет»",
	"напиши в избранное: тест",
	"отправь из буфера в избранное",
	"отправь в телеграм в избранное сообщение привет мир",
	"открой вкладку смета",
}

// Renderer handles output formatting.
type Renderer struct {
	*Writer
	pretty bool
}

// New creates a renderer writing to w.
func New(w io.Writer, pretty bool) *Renderer {
	return &Renderer{Writer: NewWriter(w), pretty: pretty}
}

// Report prints the outcome of one executed command.
func (r *Renderer) Report(rep *dispatch.Report) {
	res := rep.Result
	if res.OK {
		r.Println("%s %s%s", paint(r.pretty, green, "✓"), doneMessage(rep.Command), r.duration(rep.Duration))
		return
	}

	r.Println("%s %s: %s", paint(r.pretty, red, "✗"), res.Kind, res.Error)
	switch res.Kind {
	case domain.KindParse:
		r.Item("examples:")
		for _, ex := range Examples {
			r.SubItem("%q", ex)
		}
	case domain.KindResolution:
		if s, ok := res.Data["suggestions"].([]string); ok && len(s) > 0 {
			r.Item("did you mean: %s", paint(r.pretty, cyan, joinQuoted(s)))
		}
		r.Item("to pass unknown chats through, set SAYDO_DISABLE_WHITELIST=1")
	default:
		if data := sstrings.FormatData(res.Data, 120); data != "" {
			r.Nested("%s", paint(r.pretty, dim, data))
		}
	}
}

func doneMessage(cmd intent.Command) string {
	switch {
	case cmd.Driver == domain.DriverChrome:
		return "tab opened or found in Chrome: " + cmd.Target
	case cmd.Intent == intent.SendMessage:
		return "chat " + cmd.Target + " opened, text pasted as draft, nothing sent"
	case cmd.Intent == intent.Paste:
		return "chat " + cmd.Target + " opened, clipboard pasted as draft, nothing sent"
	default:
		return "chat opened: " + cmd.Target
	}
}

// Plan prints a dry run: the parsed command and how its target resolves.
func (r *Renderer) Plan(rep *dispatch.Report) {
	r.Header("parse")
	r.Item("text:    %s", rep.Text)
	if rep.Rule == "" {
		r.Item("result:  %s", paint(r.pretty, red, "not recognized"))
		return
	}
	cmd := rep.Command
	r.Item("rule:    %s", rep.Rule)
	r.Item("driver:  %s", cmd.Driver)
	r.Item("intent:  %s", cmd.Intent)
	r.Item("target:  %s", cmd.Target)
	if cmd.Message != "" {
		r.Item("message: %s", cmd.Message)
	}
	if rep.Result.OK {
		r.Item("resolve: %s (%s)", paint(r.pretty, green, rep.Outcome.Canonical), PolicyString(rep.Outcome.Policy))
	} else {
		r.Item("resolve: %s", paint(r.pretty, red, string(rep.Result.Kind)+": "+rep.Result.Error))
	}
	r.Item("trace:   %s", paint(r.pretty, dim, rep.Trace.String()))
}

// PolicyString describes how the search result is selected.
func PolicyString(p whitelist.IndexPolicy) string {
	if p.Auto {
		return "on-screen match"
	}
	return fmt.Sprintf("result #%d", p.Index)
}

// Rules lists every parser's rules in match order.
func (r *Renderer) Rules(router *intent.Router) {
	for _, p := range router.Parsers() {
		r.Section(p.Driver())
		for i, name := range p.Rules() {
			r.Item("%2d. %s", i+1, name)
		}
	}
}

// Health prints a health report.
func (r *Renderer) Health(rep *health.Report) {
	r.Println("%s saydo %s (up %s)", r.statusIcon(rep.Status), rep.Status, rep.Uptime)
	for _, c := range rep.Components {
		name := c.Name
		if c.Critical {
			name += "*"
		}
		r.Item("%s %-12s %s %s", r.statusIcon(c.Status), name, c.Message, paint(r.pretty, dim, fmt.Sprintf("%dms", c.Latency)))
	}
}

func (r *Renderer) statusIcon(status string) string {
	icon := StatusIcon(status)
	switch icon {
	case "✓":
		return paint(r.pretty, green, icon)
	case "✗":
		return paint(r.pretty, red, icon)
	case "!":
		return paint(r.pretty, amber, icon)
	}
	return icon
}

// Chats lists the whitelist with aliases, fixed result indexes and
// alias collisions.
func (r *Renderer) Chats(idx *whitelist.Index, path string) {
	names := idx.Canonicals()
	if len(names) == 0 {
		r.Empty("No tracked chats in " + path)
		return
	}

	r.Header("tracked chats (%d)", len(names))
	for _, name := range names {
		policy := "on-screen match"
		if n, ok := idx.FixedIndex(name); ok {
			policy = fmt.Sprintf("result #%d", n)
		}
		r.Item("%s %s", paint(r.pretty, cyan, name), paint(r.pretty, dim, "("+policy+")"))
		if aliases := idx.AliasesOf(name); len(aliases) > 0 {
			r.Nested("%s", joinQuoted(aliases))
		}
	}

	if cs := idx.Collisions(); len(cs) > 0 {
		r.Section("alias collisions")
		for _, c := range cs {
			r.Item("%s %q: %s -> %s", paint(r.pretty, amber, "!"), c.Alias, c.Previous, c.Winner)
		}
	}
}

// Tabs prints ranked tabs the way the chrome driver would consider them.
func (r *Renderer) Tabs(total int, keywords string, ranked []browser.Ranked) {
	r.Println("%d tabs open, looking for: %s", total, keywords)
	if len(ranked) == 0 {
		r.Empty("No tabs match")
		return
	}
	r.Line()
	for i, t := range ranked {
		r.Println("%d. [%d matched: %s]", i+1, len(t.Matched), joinQuoted(t.Matched))
		r.Item("[%d] %s", t.Position, t.Title)
		r.Item("%s", paint(r.pretty, dim, sstrings.Truncate(t.URL, 80)))
	}
}

func (r *Renderer) duration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return paint(r.pretty, dim, " ("+FormatDuration(d)+")")
}

func joinQuoted(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q", s)
	}
	return out
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
