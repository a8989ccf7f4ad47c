package dispatch

import (
	"context"
	"fmt"
	"strings"
)

// Command is one user action processed by the dispatcher loop.
type Command interface {
	// apply runs on the loop goroutine and reports whether state may have changed.
	apply(ctx context.Context, d *Dispatcher) (bool, error)
}

// OpenRequested asks for the identity dialog to be shown.
type OpenRequested struct{}

// CloseRequested asks for the identity dialog to be hidden.
type CloseRequested struct{}

// NameSubmitted is the identity form's submission.
type NameSubmitted struct {
	Name string
}

// ResetRequested clears the committed identity.
type ResetRequested struct{}

// SessionRequested remounts the chat root under a fresh session id.
type SessionRequested struct{}

// Query reads the current state without changing it.
type Query struct{}

func (OpenRequested) apply(_ context.Context, d *Dispatcher) (bool, error) {
	d.gate.RequestOpenChange(true)
	return true, nil
}

func (CloseRequested) apply(_ context.Context, d *Dispatcher) (bool, error) {
	d.gate.RequestOpenChange(false)
	return true, nil
}

func (c NameSubmitted) apply(_ context.Context, d *Dispatcher) (bool, error) {
	d.gate.Submit(c.Name)
	return true, nil
}

func (ResetRequested) apply(_ context.Context, d *Dispatcher) (bool, error) {
	d.store.Reset()
	return true, nil
}

func (SessionRequested) apply(ctx context.Context, d *Dispatcher) (bool, error) {
	if _, err := d.root.Mount(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (Query) apply(context.Context, *Dispatcher) (bool, error) {
	return false, nil
}

// ParseCommand maps a wire command kind ("open", "close", "submit", "reset", "session",
// "state") to a Command. name is only used by "submit".
func ParseCommand(kind, name string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "open":
		return OpenRequested{}, nil
	case "close":
		return CloseRequested{}, nil
	case "submit":
		return NameSubmitted{Name: name}, nil
	case "reset":
		return ResetRequested{}, nil
	case "session":
		return SessionRequested{}, nil
	case "state", "":
		return Query{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, kind)
	}
}
