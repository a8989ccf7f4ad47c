package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/zhouzirui/kairn/backend/internal/idgen"
	"github.com/zhouzirui/kairn/backend/internal/metrics"
	"github.com/zhouzirui/kairn/backend/internal/model/chat"
	"github.com/zhouzirui/kairn/backend/internal/service/gate"
	"github.com/zhouzirui/kairn/backend/internal/service/identity"
)

// Root composes one chat session: a fresh session id, the gated identity dialog and the
// chat surface. Every Mount replaces the previous surface with an empty one.
type Root struct {
	ids      idgen.Generator
	surfaces *Service
	gate     *gate.Controller
	store    *identity.Store
	layout   chat.Layout
	copy     chat.DialogCopy

	current *chat.View
}

// NewRoot wires the composition root.
func NewRoot(ids idgen.Generator, surfaces *Service, gate *gate.Controller, store *identity.Store, layout chat.Layout) *Root {
	return &Root{
		ids:      ids,
		surfaces: surfaces,
		gate:     gate,
		store:    store,
		layout:   layout,
		copy:     chat.DefaultDialogCopy(),
	}
}

// Mount generates a session id and mounts a new chat surface under it, tearing down the
// one mounted before.
func (r *Root) Mount(ctx context.Context) (chat.View, error) {
	if r.current != nil {
		err := r.surfaces.Unmount(ctx, r.current.Session.ID)
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return chat.View{}, fmt.Errorf("unmount %s: %w", r.current.Session.ID, err)
		}
		r.current = nil
	}

	surface := chat.Surface{
		SessionID:       r.ids.Generate(),
		InitialMessages: []chat.Message{},
		Layout:          r.layout,
	}
	session, err := r.surfaces.Mount(ctx, surface)
	if err != nil {
		return chat.View{}, fmt.Errorf("mount chat surface: %w", err)
	}
	metrics.Mounts.Inc()

	r.current = &chat.View{Session: session, Surface: surface}
	return r.view(), nil
}

// Current returns the mounted view, if any, with the dialog state read fresh.
func (r *Root) Current() (chat.View, bool) {
	if r.current == nil {
		return chat.View{}, false
	}
	return r.view(), true
}

// Dialog returns the current dialog state.
func (r *Root) Dialog() chat.Dialog {
	return chat.Dialog{
		Open:     r.gate.Open(),
		UserName: r.store.State().UserName,
		Copy:     r.copy,
	}
}

func (r *Root) view() chat.View {
	v := *r.current
	v.Dialog = r.Dialog()
	return v
}
