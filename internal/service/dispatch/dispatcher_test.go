package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/idgen"
	"github.com/zhouzirui/kairn/backend/internal/model/chat"
	"github.com/zhouzirui/kairn/backend/internal/model/identity"
	chatservice "github.com/zhouzirui/kairn/backend/internal/service/chat"
	"github.com/zhouzirui/kairn/backend/internal/service/gate"
	identitysvc "github.com/zhouzirui/kairn/backend/internal/service/identity"
	"github.com/zhouzirui/kairn/backend/internal/storage/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	d      *Dispatcher
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newDispatcher(store *identitysvc.Store) *Dispatcher {
	ctrl := gate.New(store)
	root := chatservice.NewRoot(idgen.UUID{}, chatservice.NewService(), ctrl, store, chat.DefaultLayoutParams())
	return New(root, ctrl, store, zap.NewNop(), 8)
}

func start(t *testing.T, d *Dispatcher) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{d: d, cancel: cancel}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		_ = d.Run(ctx)
	}()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	h.wg.Wait()
}

func name(t *testing.T, snap Snapshot) string {
	t.Helper()
	require.NotNil(t, snap.Dialog.UserName)
	return *snap.Dialog.UserName
}

func TestScenarioFirstVisit(t *testing.T) {
	ctx := context.Background()
	p := memory.New()
	log := zap.NewNop()
	store := identitysvc.New(identitysvc.Restore(ctx, p, identity.StoreKey, log), identitysvc.PersistOnChange(p, identity.StoreKey, log))
	h := start(t, newDispatcher(store))

	snap, err := h.d.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Dialog.Open)
	assert.Nil(t, snap.Dialog.UserName)

	snap, err = h.d.Dispatch(ctx, OpenRequested{})
	require.NoError(t, err)
	assert.True(t, snap.Dialog.Open)
	assert.Equal(t, identity.DefaultName, name(t, snap))

	snap, err = h.d.Dispatch(ctx, NameSubmitted{Name: "Camille"})
	require.NoError(t, err)
	assert.False(t, snap.Dialog.Open)
	assert.Equal(t, "Camille", name(t, snap))

	h.stop()

	reloaded := identitysvc.New(identitysvc.Restore(ctx, p, identity.StoreKey, log))
	got, ok := reloaded.UserName()
	require.True(t, ok)
	assert.Equal(t, "Camille", got)
}

func TestSessionRequestedMintsFreshIDs(t *testing.T) {
	ctx := context.Background()
	h := start(t, newDispatcher(identitysvc.New(identity.State{})))

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		snap, err := h.d.Dispatch(ctx, SessionRequested{})
		require.NoError(t, err)
		require.NotNil(t, snap.Session)
		require.NotNil(t, snap.Surface)
		assert.False(t, seen[snap.Session.ID])
		seen[snap.Session.ID] = true
		assert.Empty(t, snap.Surface.InitialMessages)
	}
}

func TestConcurrentDispatchIsSerialised(t *testing.T) {
	ctx := context.Background()
	h := start(t, newDispatcher(identitysvc.New(identity.State{})))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.d.Dispatch(ctx, NameSubmitted{Name: fmt.Sprintf("user-%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	snap, err := h.d.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), snap.Seq)
	assert.False(t, snap.Dialog.Open)
}

func TestOnChangeSkipsQueries(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher(identitysvc.New(identity.State{}))

	var seqs []uint64
	d.OnChange(func(s Snapshot) { seqs = append(seqs, s.Seq) })
	h := start(t, d)

	_, err := h.d.Dispatch(ctx, OpenRequested{})
	require.NoError(t, err)
	_, err = h.d.Snapshot(ctx)
	require.NoError(t, err)
	_, err = h.d.Dispatch(ctx, ResetRequested{})
	require.NoError(t, err)

	h.stop()
	assert.Equal(t, []uint64{1, 2}, seqs)
}

func TestDispatchAfterStop(t *testing.T) {
	h := start(t, newDispatcher(identitysvc.New(identity.State{})))
	h.stop()

	_, err := h.d.Dispatch(context.Background(), OpenRequested{})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestDispatchHonoursContext(t *testing.T) {
	d := newDispatcher(identitysvc.New(identity.State{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Dispatch(ctx, OpenRequested{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunTwice(t *testing.T) {
	h := start(t, newDispatcher(identitysvc.New(identity.State{})))
	_, err := h.d.Snapshot(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, h.d.Run(context.Background()), ErrAlreadyRunning)
}

func TestParseCommand(t *testing.T) {
	cases := map[string]Command{
		"open":    OpenRequested{},
		"CLOSE":   CloseRequested{},
		"reset":   ResetRequested{},
		"session": SessionRequested{},
		"state":   Query{},
	}
	for kind, want := range cases {
		got, err := ParseCommand(kind, "")
		require.NoError(t, err, kind)
		assert.Equal(t, want, got, kind)
	}

	got, err := ParseCommand("submit", "Bob")
	require.NoError(t, err)
	assert.Equal(t, NameSubmitted{Name: "Bob"}, got)

	_, err = ParseCommand("dance", "")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
