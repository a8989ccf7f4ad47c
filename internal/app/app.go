// Package app assembles the session bootstrap state container.
//
// One App is built at process start and its components are handed to every consumer
// explicitly.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/config"
	"github.com/zhouzirui/kairn/backend/internal/events"
	"github.com/zhouzirui/kairn/backend/internal/idgen"
	"github.com/zhouzirui/kairn/backend/internal/model/identity"
	chatservice "github.com/zhouzirui/kairn/backend/internal/service/chat"
	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
	"github.com/zhouzirui/kairn/backend/internal/service/gate"
	identitysvc "github.com/zhouzirui/kairn/backend/internal/service/identity"
	"github.com/zhouzirui/kairn/backend/internal/storage"
	"github.com/zhouzirui/kairn/backend/internal/storage/badger"
	"github.com/zhouzirui/kairn/backend/internal/storage/memory"
)

// App owns the wired components.
type App struct {
	Store      *identitysvc.Store
	Gate       *gate.Controller
	Surfaces   *chatservice.Service
	Root       *chatservice.Root
	Dispatcher *dispatch.Dispatcher
	Broker     *events.Broker

	persister storage.Persister
	log       *zap.Logger
}

// OpenPersister opens the persister selected by cfg.
func OpenPersister(cfg config.StoreConfig, log *zap.Logger) (storage.Persister, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverBadger, "":
		p, err := badger.Open(badger.Config{Path: cfg.Path, SyncWrites: cfg.SyncWrites, Logger: log})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// New restores identity state from p and wires store, gate, chat root and dispatcher.
// The returned App owns p.
func New(ctx context.Context, p storage.Persister, chatCfg config.ChatConfig, ids idgen.Generator, log *zap.Logger) *App {
	state := identitysvc.Restore(ctx, p, identity.StoreKey, log)
	if name, ok := state.Name(); ok {
		log.Info("restored identity", zap.String("userName", name))
	}

	store := identitysvc.New(state, identitysvc.PersistOnChange(p, identity.StoreKey, log))
	ctrl := gate.New(store)
	surfaces := chatservice.NewService()
	root := chatservice.NewRoot(ids, surfaces, ctrl, store, chatCfg.Layout)

	broker := events.NewBroker(events.DefaultBuffer)
	d := dispatch.New(root, ctrl, store, log, chatCfg.QueueSize)
	d.OnChange(broker.Publish)

	return &App{
		Store:      store,
		Gate:       ctrl,
		Surfaces:   surfaces,
		Root:       root,
		Dispatcher: d,
		Broker:     broker,
		persister:  p,
		log:        log,
	}
}

// Run mounts the first chat session and processes commands until ctx is cancelled.
// The first mount happens before the dispatcher loop starts, so it precedes every queued
// command.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.Root.Mount(ctx); err != nil {
		a.log.Warn("initial session mount failed", zap.Error(err))
	}
	return a.Dispatcher.Run(ctx)
}

// Close releases the broker and the persister. Call it after Run has returned.
func (a *App) Close() error {
	a.Broker.Close()
	return a.persister.Close()
}
