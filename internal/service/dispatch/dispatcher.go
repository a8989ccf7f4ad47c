// Package dispatch serialises every identity, gate and session mutation through one loop.
//
// The identity store, gate controller and chat root are not safe for concurrent use. HTTP
// handlers, WebSocket readers and the CLI therefore never touch them directly: they enqueue
// commands, and Run applies them one at a time in arrival order.
package dispatch

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/kairn/backend/internal/service/chat"
	"github.com/zhouzirui/kairn/backend/internal/service/gate"
	"github.com/zhouzirui/kairn/backend/internal/service/identity"
)

var (
	ErrStopped        = errors.New("dispatcher stopped")
	ErrAlreadyRunning = errors.New("dispatcher already running")
	ErrUnknownCommand = errors.New("unknown command")
)

// DefaultQueueSize is used when New receives a non-positive size.
const DefaultQueueSize = 64

// Snapshot is the state observed right after a command was applied.
type Snapshot struct {
	Seq     uint64        `json:"seq"`
	Session *chat.Session `json:"session"`
	Surface *chat.Surface `json:"surface,omitempty"`
	Dialog  chat.Dialog   `json:"dialog"`
}

type result struct {
	snapshot Snapshot
	err      error
}

type request struct {
	ctx   context.Context
	cmd   Command
	reply chan result
}

// Dispatcher owns the command queue.
type Dispatcher struct {
	root  *chatservice.Root
	gate  *gate.Controller
	store *identity.Store
	log   *zap.Logger

	queue     chan request
	done      chan struct{}
	running   atomic.Bool
	seq       uint64
	listeners []func(Snapshot)
}

// New returns a dispatcher; call Run to start processing.
func New(root *chatservice.Root, ctrl *gate.Controller, store *identity.Store, log *zap.Logger, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		root:  root,
		gate:  ctrl,
		store: store,
		log:   log.Named("dispatch"),
		queue: make(chan request, queueSize),
		done:  make(chan struct{}),
	}
}

// OnChange registers fn to receive a snapshot after every mutating command. It must be
// called before Run; fn runs on the loop goroutine and must not block.
func (d *Dispatcher) OnChange(fn func(Snapshot)) {
	d.listeners = append(d.listeners, fn)
}

// Run processes commands until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d.running.Swap(true) {
		return ErrAlreadyRunning
	}
	defer close(d.done)

	d.log.Debug("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("dispatcher stopped")
			return nil
		case req := <-d.queue:
			req.reply <- d.handle(req)
		}
	}
}

// Dispatch enqueues cmd and waits for the resulting snapshot.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Snapshot, error) {
	req := request{ctx: ctx, cmd: cmd, reply: make(chan result, 1)}

	select {
	case d.queue <- req:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-d.done:
		return Snapshot{}, ErrStopped
	}

	select {
	case res := <-req.reply:
		return res.snapshot, res.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-d.done:
		// Run may have answered just before exiting.
		select {
		case res := <-req.reply:
			return res.snapshot, res.err
		default:
			return Snapshot{}, ErrStopped
		}
	}
}

// Snapshot reads the current state through the queue.
func (d *Dispatcher) Snapshot(ctx context.Context) (Snapshot, error) {
	return d.Dispatch(ctx, Query{})
}

func (d *Dispatcher) handle(req request) result {
	if err := req.ctx.Err(); err != nil {
		return result{err: err}
	}

	changed, err := req.cmd.apply(req.ctx, d)
	if err != nil {
		d.log.Warn("command failed", zap.String("command", commandName(req.cmd)), zap.Error(err))
		return result{snapshot: d.snapshot(), err: err}
	}
	if changed {
		d.seq++
	}

	snap := d.snapshot()
	if changed {
		d.log.Debug("command applied",
			zap.String("command", commandName(req.cmd)),
			zap.Uint64("seq", snap.Seq),
			zap.Bool("open", snap.Dialog.Open))
		for _, fn := range d.listeners {
			fn(snap)
		}
	}
	return result{snapshot: snap}
}

func (d *Dispatcher) snapshot() Snapshot {
	snap := Snapshot{Seq: d.seq, Dialog: d.root.Dialog()}
	if view, ok := d.root.Current(); ok {
		session, surface := view.Session, view.Surface
		snap.Session = &session
		snap.Surface = &surface
	}
	return snap
}

func commandName(cmd Command) string {
	switch cmd.(type) {
	case OpenRequested:
		return "open"
	case CloseRequested:
		return "close"
	case NameSubmitted:
		return "submit"
	case ResetRequested:
		return "reset"
	case SessionRequested:
		return "session"
	default:
		return "state"
	}
}
