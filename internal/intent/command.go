// Package intent classifies utterances into structured commands using
// ordered, per-driver cascades of phrase rules.
package intent

// Intent is the action a command asks for.
type Intent string

const (
	OpenOnly    Intent = "open_only"
	SendMessage Intent = "send_message"
	Paste       Intent = "paste_from_clipboard"
)

// Command is the parsed form of an utterance. It is never mutated after
// a rule produces it.
type Command struct {
	Intent  Intent `json:"intent"`
	Target  string `json:"target"`
	Message string `json:"message,omitempty"`
	Driver  string `json:"driver"`
}

// Valid reports whether the command carries everything its intent needs.
func (c Command) Valid() bool {
	if c.Target == "" {
		return false
	}
	switch c.Intent {
	case SendMessage:
		return c.Message != ""
	case OpenOnly, Paste:
		return true
	}
	return false
}
