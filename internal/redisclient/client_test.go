package redisclient

import (
	"context"
	"os"
	"testing"

	"storefront-client/internal/persist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ persist.Storage = (*Client)(nil)

func TestSaveLoadRemove(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("Integration test - requires redis (set REDIS_ADDR)")
	}

	c, err := NewClient(addr, os.Getenv("REDIS_PASSWORD"), 15)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	key := "persist:test"
	defer c.Remove(ctx, key)

	_, err = c.Load(ctx, key)
	assert.ErrorIs(t, err, persist.ErrNotFound)

	require.NoError(t, c.Save(ctx, key, []byte(`{"auth":{"user":null}}`)))
	got, err := c.Load(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"auth":{"user":null}}`, string(got))

	require.NoError(t, c.Remove(ctx, key))
	_, err = c.Load(ctx, key)
	assert.ErrorIs(t, err, persist.ErrNotFound)
}
