package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/kairn/backend/internal/storage"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	p := New()
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, "k", []byte(`{"userName":"Carol"}`)))

	got, err := p.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"userName":"Carol"}`, string(got))
}

func TestLoadMissingKey(t *testing.T) {
	_, err := New().Load(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveCopiesValue(t *testing.T) {
	p := New()
	ctx := context.Background()
	value := []byte("abc")

	require.NoError(t, p.Save(ctx, "k", value))
	value[0] = 'z'

	got, err := p.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestDeleteAndClose(t *testing.T) {
	p := New()
	ctx := context.Background()
	require.NoError(t, p.Save(ctx, "k", []byte("v")))
	require.NoError(t, p.Delete(ctx, "k"))

	_, err := p.Load(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Save(ctx, "k", []byte("v")), storage.ErrClosed)
	_, err = p.Load(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrClosed)
}
