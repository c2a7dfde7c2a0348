package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Empty(t, reg.Keys())

	reg.Register("sync-orders", noop)
	reg.Register("cleanup", noop)
	reg.Register("report", noop)
	assert.Equal(t, []string{"cleanup", "report", "sync-orders"}, reg.Keys())

	_, ok := reg.Lookup("missing")
	assert.False(t, ok)

	called := false
	reg.Register("cleanup", func(context.Context) error {
		called = true
		return nil
	})
	fn, ok := reg.Lookup("cleanup")
	require.True(t, ok)
	require.NoError(t, fn(context.Background()))
	assert.True(t, called)
	assert.Len(t, reg.Keys(), 3)
}
