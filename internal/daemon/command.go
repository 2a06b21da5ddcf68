package daemon

// Command is one daemon instruction.
type Command interface {
	Name() string
	Payload() map[string]any
}

// OpenChat searches the messenger for Query and opens a result.
// A nil ResultIndex lets the daemon pick the result by on-screen matching.
type OpenChat struct {
	Query       string
	ResultIndex *int
}

func (OpenChat) Name() string { return "open_chat" }

func (c OpenChat) Payload() map[string]any {
	p := map[string]any{"cmd": c.Name(), "query": c.Query, "auto_select": true}
	if c.ResultIndex != nil {
		p["result_index"] = *c.ResultIndex
	}
	return p
}

// OpenTab focuses the browser tab best matching Keywords.
type OpenTab struct {
	Keywords string
}

func (OpenTab) Name() string { return "open_chrome_tab" }

func (c OpenTab) Payload() map[string]any {
	return map[string]any{"cmd": c.Name(), "keywords": c.Keywords}
}

// Send types Text into the open chat as a draft, via the clipboard.
type Send struct {
	Text string
}

func (Send) Name() string { return "send" }

func (c Send) Payload() map[string]any {
	return map[string]any{"cmd": c.Name(), "text": c.Text, "use_clipboard": true, "draft": true}
}

// PasteClipboard pastes the clipboard into the open chat as a draft.
type PasteClipboard struct{}

func (PasteClipboard) Name() string { return "paste" }

func (c PasteClipboard) Payload() map[string]any {
	return map[string]any{"cmd": c.Name(), "draft": true}
}

// Ping checks the command channel end to end.
type Ping struct{}

func (Ping) Name() string { return "ping" }

func (c Ping) Payload() map[string]any {
	return map[string]any{"cmd": c.Name()}
}
