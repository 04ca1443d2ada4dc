package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetBuildsOnce(t *testing.T) {
	r := NewRegistry(time.Hour, nil)
	builds := 0
	factory := func(context.Context, string) (*Controller, error) {
		builds++
		return NewController(nil, sessionFor(ownerID), Options{}, nil), nil
	}

	a, err := r.Get(context.Background(), "s1", factory)
	require.NoError(t, err)
	b, err := r.Get(context.Background(), "s1", factory)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, r.Len())

	_, err = r.Get(context.Background(), "s2", func(context.Context, string) (*Controller, error) {
		return nil, errors.New("no token")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, r.Len())

	r.Drop("s1")
	_, ok := r.Peek("s1")
	assert.False(t, ok)
}

func TestRegistry_SweepDropsIdle(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry(time.Minute, nil)
	r.now = clock.Now

	newCtrl := func(context.Context, string) (*Controller, error) {
		return NewController(nil, sessionFor(ownerID), Options{Now: clock.Now}, nil), nil
	}
	_, err := r.Get(context.Background(), "old", newCtrl)
	require.NoError(t, err)

	clock.Advance(50 * time.Second)
	fresh, err := r.Get(context.Background(), "fresh", newCtrl)
	require.NoError(t, err)

	clock.Advance(20 * time.Second)
	fresh.View()

	assert.Equal(t, 1, r.Sweep())
	_, ok := r.Peek("old")
	assert.False(t, ok)
	_, ok = r.Peek("fresh")
	assert.True(t, ok)
}
