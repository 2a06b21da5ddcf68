// Package domain defines the values that flow between the pipeline stages:
// action results and the failure taxonomy.
package domain

// Result is the terminal value of every driver operation and of a whole
// command. OK drives downstream branching.
type Result struct {
	OK    bool           `json:"ok"`
	Error string         `json:"error,omitempty"`
	Kind  FailureKind    `json:"kind,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Success returns an OK result carrying data.
func Success(data map[string]any) Result {
	return Result{OK: true, Data: data}
}

// Failure returns a failed result of the given kind.
func Failure(kind FailureKind, msg string, data map[string]any) Result {
	return Result{OK: false, Kind: kind, Error: msg, Data: data}
}

// FromError converts err into a failed result. A nil error yields success.
func FromError(err error) Result {
	if err == nil {
		return Success(nil)
	}
	return Failure(KindOf(err), err.Error(), nil)
}

// Err returns nil for OK results and a typed error otherwise.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	kind := r.Kind
	if kind == KindNone {
		kind = KindOperation
	}
	return &Error{Kind: kind, Message: r.Error}
}
