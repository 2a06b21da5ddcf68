package dispatch

import (
	"strings"
	"time"
)

// State is a step of command execution.
type State string

const (
	StateStart    State = "START"
	StateParsed   State = "PARSED"
	StateResolved State = "RESOLVED"
	StateOpened   State = "OPENED"
	StateDone     State = "DONE"
	StateFailed   State = "FAILED"
)

// Step is one recorded transition.
type Step struct {
	State  State     `json:"state"`
	At     time.Time `json:"at"`
	Detail string    `json:"detail,omitempty"`
}

// Trace is the ordered list of states a command went through.
type Trace struct {
	Steps []Step `json:"steps"`
}

func (t *Trace) enter(s State, detail string) {
	t.Steps = append(t.Steps, Step{State: s, At: time.Now(), Detail: detail})
}

// States returns the visited states in order.
func (t *Trace) States() []State {
	out := make([]State, len(t.Steps))
	for i, s := range t.Steps {
		out[i] = s.State
	}
	return out
}

// Final is the last state reached.
func (t *Trace) Final() State {
	if len(t.Steps) == 0 {
		return ""
	}
	return t.Steps[len(t.Steps)-1].State
}

// Reached reports whether s was visited.
func (t *Trace) Reached(s State) bool {
	for _, st := range t.Steps {
		if st.State == s {
			return true
		}
	}
	return false
}

func (t *Trace) String() string {
	parts := make([]string, len(t.Steps))
	for i, s := range t.Steps {
		parts[i] = string(s.State)
	}
	return strings.Join(parts, " → ")
}
