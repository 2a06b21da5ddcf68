// Package tui provides a terminal view of the listen loop using Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joss/saydo/internal/health"
	"github.com/joss/saydo/internal/listen"
	sstrings "github.com/joss/saydo/internal/strings"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// State is what the loop is doing right now.
type State string

const (
	StateStarting  State = "starting"
	StateListening State = "listening"
	StateHandling  State = "handling"
	StateStopped   State = "stopped"
)

// maxLines bounds the scrollback.
const maxLines = 500

// Counts summarizes the session.
type Counts struct {
	Heard    int
	Executed int
	Failed   int
}

// Model is the listen view.
type Model struct {
	state    State
	lines    []string
	counts   Counts
	health   *health.Report
	err      error
	ready    bool
	quitting bool

	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int

	cancel   context.CancelFunc
	healthFn func(context.Context) *health.Report
	interval time.Duration
}

// Message types
type eventMsg listen.Event
type loopDoneMsg struct{ err error }
type healthMsg struct{ rep *health.Report }
type tickMsg time.Time

// New creates the view. cancel stops the listen loop on quit.
func New(cancel context.CancelFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		state:    StateStarting,
		spinner:  s,
		cancel:   cancel,
		interval: 30 * time.Second,
	}
}

// WithHealth polls fn for the status line.
func (m Model) WithHealth(fn func(context.Context) *health.Report) Model {
	m.healthFn = fn
	return m
}

// Init initializes the view
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchHealth(), m.tick())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "c":
			m.lines = nil
			m.refresh()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		headerHeight := 5
		footerHeight := 3
		m.viewport = viewport.New(msg.Width-4, max(msg.Height-headerHeight-footerHeight, 3))
		m.refresh()

	case eventMsg:
		m.apply(listen.Event(msg))

	case loopDoneMsg:
		m.state = StateStopped
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit

	case healthMsg:
		m.health = msg.rep

	case tickMsg:
		cmds = append(cmds, m.fetchHealth(), m.tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// apply folds one loop event into the view.
func (m *Model) apply(e listen.Event) {
	switch e.Kind {
	case listen.EventListening:
		m.state = StateListening
		return
	case listen.EventHeard:
		m.state = StateHandling
		m.counts.Heard++
	case listen.EventExecuted:
		m.counts.Executed++
		if e.Report != nil && !e.Report.Result.OK {
			m.counts.Failed++
		}
	}
	if line := FormatEvent(e); line != "" {
		m.lines = append(m.lines, line)
		if len(m.lines) > maxLines {
			m.lines = m.lines[len(m.lines)-maxLines:]
		}
		m.refresh()
	}
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(sstrings.WordWrap(strings.Join(m.lines, "\n"), m.viewport.Width))
	m.viewport.GotoBottom()
}

// FormatEvent renders one event as a scrollback line. Listening events
// only change the status line.
func FormatEvent(e listen.Event) string {
	ts := infoStyle.Render(time.Now().Format("15:04:05"))
	switch e.Kind {
	case listen.EventHeard:
		return fmt.Sprintf("%s 🗣  %s", ts, e.Text)
	case listen.EventNoWake:
		return infoStyle.Render("         no wake word, ignored")
	case listen.EventEmpty:
		return warnStyle.Render("         wake word \"" + e.Wake.Keyword + "\" without a command")
	case listen.EventExecuted:
		if e.Report == nil {
			return ""
		}
		res := e.Report.Result
		if res.OK {
			cmd := e.Report.Command
			return activeStyle.Render("         ✓ ") + fmt.Sprintf("%s %s → %s", cmd.Driver, cmd.Intent, e.Report.Outcome.Canonical)
		}
		return errorStyle.Render(fmt.Sprintf("         ✗ %s: %s", res.Kind, sstrings.Truncate(res.Error, 120)))
	case listen.EventError:
		if e.Err == nil {
			return ""
		}
		return errorStyle.Render("         ✗ transcriber: " + sstrings.Truncate(e.Err.Error(), 120))
	}
	return ""
}

// View renders the listen view
func (m Model) View() string {
	if m.quitting {
		return "Stopped listening.\n"
	}

	if !m.ready {
		return fmt.Sprintf("\n  %s Starting...", m.spinner.View())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("🎙  saydo") + "\n\n")
	b.WriteString("  " + m.statusLine() + "\n\n")

	b.WriteString(boxStyle.Width(m.width-4).Render(m.viewport.View()) + "\n")

	b.WriteString(helpStyle.Render("  q: stop │ c: clear │ ↑/↓: scroll"))
	return b.String()
}

func (m Model) statusLine() string {
	var state string
	switch m.state {
	case StateListening:
		state = activeStyle.Render(m.spinner.View() + " listening")
	case StateHandling:
		state = warnStyle.Render(m.spinner.View() + " handling")
	default:
		state = infoStyle.Render(string(m.state))
	}

	daemon := infoStyle.Render("daemon ?")
	if m.health != nil {
		if m.health.OK() {
			daemon = activeStyle.Render("●") + infoStyle.Render(" "+m.health.Status)
		} else {
			daemon = errorStyle.Render("○") + infoStyle.Render(" "+m.health.Status)
		}
	}

	counts := infoStyle.Render(fmt.Sprintf("heard %d │ executed %d │ failed %d",
		m.counts.Heard, m.counts.Executed, m.counts.Failed))
	return state + infoStyle.Render(" │ ") + daemon + infoStyle.Render(" │ ") + counts
}

// Commands

func (m Model) fetchHealth() tea.Cmd {
	fn := m.healthFn
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return healthMsg{rep: fn(ctx)}
	}
}

func (m Model) tick() tea.Cmd {
	if m.healthFn == nil {
		return nil
	}
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Options configures Run.
type Options struct {
	// Health feeds the status line. Optional.
	Health func(context.Context) *health.Report
}

// Run shows the view while loop runs. Quitting the view cancels the loop;
// the command in flight, if any, still completes.
func Run(ctx context.Context, loop *listen.Loop, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(cancel).WithHealth(opts.Health), tea.WithAltScreen())

	prev := loop.OnEvent
	loop.OnEvent = func(e listen.Event) {
		if prev != nil {
			prev(e)
		}
		p.Send(eventMsg(e))
	}

	loopErr := make(chan error, 1)
	go func() {
		err := loop.Run(ctx)
		p.Send(loopDoneMsg{err: err})
		loopErr <- err
	}()

	_, err := p.Run()
	cancel()
	lerr := <-loopErr
	if err != nil {
		return err
	}
	return lerr
}
