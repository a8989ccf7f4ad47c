// Package identity holds the display name of the local user.
//
// Store is a plain state container: it is not safe for concurrent use and is meant to be
// driven from a single goroutine (see package dispatch). Persistence is attached from the
// outside with a ChangeHook, so the setter itself stays a pure in-memory transition.
package identity

import (
	"github.com/zhouzirui/kairn/backend/internal/metrics"
	"github.com/zhouzirui/kairn/backend/internal/model/identity"
)

// ChangeHook runs after every state change, before subscribers are notified.
type ChangeHook func(identity.State)

// Store owns identity.State.
type Store struct {
	state       identity.State
	hooks       []ChangeHook
	subscribers map[int]func(identity.State)
	nextSub     int
}

// New returns a store seeded with initial, typically the output of Restore.
func New(initial identity.State, hooks ...ChangeHook) *Store {
	return &Store{
		state:       initial,
		hooks:       hooks,
		subscribers: make(map[int]func(identity.State)),
	}
}

// UserName returns the committed name and whether one is set.
func (s *Store) UserName() (string, bool) {
	return s.state.Name()
}

// State returns a copy of the current state.
func (s *Store) State() identity.State {
	if s.state.UserName == nil {
		return identity.State{}
	}
	return s.state.WithName(*s.state.UserName)
}

// SetUserName overwrites the committed name. Empty names are accepted.
func (s *Store) SetUserName(name string) {
	s.state = s.state.WithName(name)
	metrics.IdentityWrites.WithLabelValues("set").Inc()
	s.changed()
}

// Reset clears the committed name.
func (s *Store) Reset() {
	s.state = identity.State{}
	metrics.IdentityWrites.WithLabelValues("reset").Inc()
	s.changed()
}

// Subscribe registers fn for change notifications and returns its cancel function.
func (s *Store) Subscribe(fn func(identity.State)) func() {
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() { delete(s.subscribers, id) }
}

func (s *Store) changed() {
	snapshot := s.State()
	for _, hook := range s.hooks {
		hook(snapshot)
	}
	for _, fn := range s.subscribers {
		fn(snapshot)
	}
}
