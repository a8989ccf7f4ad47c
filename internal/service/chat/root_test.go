package chat_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/kairn/backend/internal/idgen"
	"github.com/zhouzirui/kairn/backend/internal/model/identity"
	chatmodel "github.com/zhouzirui/kairn/backend/internal/model/chat"
	chat "github.com/zhouzirui/kairn/backend/internal/service/chat"
	"github.com/zhouzirui/kairn/backend/internal/service/gate"
	identitysvc "github.com/zhouzirui/kairn/backend/internal/service/identity"
)

func newRoot(ids idgen.Generator) (*chat.Root, *chat.Service, *gate.Controller) {
	store := identitysvc.New(identity.State{})
	ctrl := gate.New(store)
	surfaces := chat.NewService()
	return chat.NewRoot(ids, surfaces, ctrl, store, chatmodel.DefaultLayoutParams()), surfaces, ctrl
}

func TestMountProducesDistinctIDs(t *testing.T) {
	root, surfaces, _ := newRoot(idgen.UUID{})
	ctx := context.Background()

	const n = 50
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		view, err := root.Mount(ctx)
		require.NoError(t, err)
		_, dup := seen[view.Session.ID]
		require.False(t, dup, "duplicate session id %s", view.Session.ID)
		seen[view.Session.ID] = struct{}{}
	}

	assert.Equal(t, 1, surfaces.Count(), "previous surfaces must be torn down")
}

func TestMountPassesSurfaceInputs(t *testing.T) {
	root, surfaces, _ := newRoot(idgen.Func(func() string { return "fixed-id" }))
	ctx := context.Background()

	view, err := root.Mount(ctx)
	require.NoError(t, err)

	assert.Equal(t, "fixed-id", view.Session.ID)
	assert.Equal(t, "fixed-id", view.Surface.SessionID)
	assert.NotNil(t, view.Surface.InitialMessages)
	assert.Empty(t, view.Surface.InitialMessages)
	assert.Equal(t, chatmodel.DefaultLayoutParams(), view.Surface.Layout)
	assert.False(t, view.Dialog.Open)
	assert.Nil(t, view.Dialog.UserName)

	transcript, err := surfaces.LoadTranscript(ctx, "fixed-id")
	require.NoError(t, err)
	assert.Empty(t, transcript)
}

func TestRemountWithSameIDReplacesSurface(t *testing.T) {
	root, surfaces, _ := newRoot(idgen.Func(func() string { return "same" }))
	ctx := context.Background()

	_, err := root.Mount(ctx)
	require.NoError(t, err)
	_, err = root.Mount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, surfaces.Count())
}

func TestCurrentReflectsDialogState(t *testing.T) {
	counter := 0
	root, _, ctrl := newRoot(idgen.Func(func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}))

	_, ok := root.Current()
	assert.False(t, ok)

	_, err := root.Mount(context.Background())
	require.NoError(t, err)
	ctrl.RequestOpenChange(true)

	view, ok := root.Current()
	require.True(t, ok)
	assert.Equal(t, "id-1", view.Session.ID)
	assert.True(t, view.Dialog.Open)
	require.NotNil(t, view.Dialog.UserName)
	assert.Equal(t, identity.DefaultName, *view.Dialog.UserName)
}
