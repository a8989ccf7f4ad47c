package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/config"
	"github.com/zhouzirui/kairn/backend/internal/idgen"
	"github.com/zhouzirui/kairn/backend/internal/model/chat"
	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
)

func chatConfig() config.ChatConfig {
	return config.ChatConfig{Layout: chat.DefaultLayoutParams(), QueueSize: 4}
}

func runApp(t *testing.T, a *App) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, a.Run(ctx))
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

func TestRunMountsInitialSessionAndSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	log := zap.NewNop()
	storeCfg := config.StoreConfig{Driver: config.DriverBadger, Path: dir}

	p, err := OpenPersister(storeCfg, log)
	require.NoError(t, err)
	a := New(ctx, p, chatConfig(), idgen.UUID{}, log)
	stop := runApp(t, a)

	_, err = a.Dispatcher.Dispatch(ctx, dispatch.OpenRequested{})
	require.NoError(t, err)
	snap, err := a.Dispatcher.Dispatch(ctx, dispatch.NameSubmitted{Name: "Camille"})
	require.NoError(t, err)
	require.NotNil(t, snap.Session, "initial session should be mounted")
	firstID := snap.Session.ID

	stop()
	require.NoError(t, a.Close())

	p, err = OpenPersister(storeCfg, log)
	require.NoError(t, err)
	restarted := New(ctx, p, chatConfig(), idgen.UUID{}, log)
	stop = runApp(t, restarted)
	defer func() {
		stop()
		require.NoError(t, restarted.Close())
	}()

	snap, err = restarted.Dispatcher.Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.Dialog.UserName)
	assert.Equal(t, "Camille", *snap.Dialog.UserName)
	assert.False(t, snap.Dialog.Open)
	require.NotNil(t, snap.Session)
	assert.NotEqual(t, firstID, snap.Session.ID)

	name, ok := restarted.Store.UserName()
	require.True(t, ok)
	assert.Equal(t, "Camille", name)
}

func TestOpenPersisterRejectsUnknownDriver(t *testing.T) {
	_, err := OpenPersister(config.StoreConfig{Driver: "etcd"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMemoryDriverStartsAbsent(t *testing.T) {
	p, err := OpenPersister(config.StoreConfig{Driver: config.DriverMemory}, zap.NewNop())
	require.NoError(t, err)

	a := New(context.Background(), p, chatConfig(), idgen.UUID{}, zap.NewNop())
	_, ok := a.Store.UserName()
	assert.False(t, ok)
	assert.False(t, a.Gate.Open())
	require.NoError(t, a.Close())
}
