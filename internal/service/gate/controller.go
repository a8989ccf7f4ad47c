// Package gate decides whether the identity-capture dialog is shown.
package gate

import (
	"github.com/zhouzirui/kairn/backend/internal/metrics"
	"github.com/zhouzirui/kairn/backend/internal/model/identity"
	identitysvc "github.com/zhouzirui/kairn/backend/internal/service/identity"
)

// Controller is the open/closed state machine of the identity dialog. Like the store it
// wraps, it must be driven from a single goroutine.
type Controller struct {
	store       *identitysvc.Store
	open        bool
	subscribers map[int]func(bool)
	nextSub     int
}

// New returns a closed controller bound to store.
func New(store *identitysvc.Store) *Controller {
	return &Controller{
		store:       store,
		subscribers: make(map[int]func(bool)),
	}
}

// Open reports whether the dialog is visible.
func (c *Controller) Open() bool {
	return c.open
}

// RequestOpenChange applies any attempt to show or hide the dialog.
//
// When no name is committed yet, identity.DefaultName is stored first so the dialog can
// never be dismissed without an identity on record; the form may overwrite it afterwards.
// This applies to close requests as well, matching the web client.
func (c *Controller) RequestOpenChange(requested bool) {
	metrics.GateTransitions.WithLabelValues(metrics.RequestedLabel(requested)).Inc()

	if !c.store.State().Known() {
		metrics.DefaultCommits.Inc()
		c.store.SetUserName(identity.DefaultName)
	}
	c.set(requested)
}

// Submit is the form submission path: commit name, then close. The name is stored as
// given, empty included; the default only applies to dismissals.
func (c *Controller) Submit(name string) {
	metrics.GateTransitions.WithLabelValues(metrics.RequestedLabel(false)).Inc()
	c.store.SetUserName(name)
	c.set(false)
}

// Subscribe registers fn for visibility changes and returns its cancel function.
func (c *Controller) Subscribe(fn func(open bool)) func() {
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() { delete(c.subscribers, id) }
}

func (c *Controller) set(open bool) {
	if c.open == open {
		return
	}
	c.open = open
	for _, fn := range c.subscribers {
		fn(open)
	}
}
