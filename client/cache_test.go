package client

import (
	"sync"
	"testing"

	"github.com/layer-3/walletauth/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSessionCacheMerge(t *testing.T) {
	cache := NewSessionCache()
	assert.Equal(t, *core.DefaultSession(), cache.Snapshot())

	cache.Merge(Update{TempNonce: ptr("N1"), TempAddress: ptr("A")})
	state := cache.Merge(Update{Authenticated: ptr(true)})

	assert.Equal(t, core.Session{TempNonce: "N1", TempAddress: "A", Authenticated: true}, state)
	assert.Equal(t, state, cache.Snapshot())
}

func TestSessionCacheReplaceAndReset(t *testing.T) {
	cache := NewSessionCache()
	cache.Merge(Update{TempNonce: ptr("N1")})

	cache.Replace(core.Session{Address: "A", Authenticated: true, ID: "secret-id"})
	snap := cache.Snapshot()
	assert.Equal(t, "A", snap.Address)
	assert.Empty(t, snap.TempNonce)
	assert.Empty(t, snap.ID)

	cache.Reset()
	assert.Equal(t, *core.DefaultSession(), cache.Snapshot())
}

func TestSessionCacheSubscribe(t *testing.T) {
	cache := NewSessionCache()

	var got []core.Session
	cancel := cache.Subscribe(func(s core.Session) {
		// Reading the cache from a callback must not deadlock
		_ = cache.Snapshot()
		got = append(got, s)
	})

	cache.Merge(Update{Address: ptr("A")})
	cache.Reset()
	cancel()
	cancel()
	cache.Merge(Update{Address: ptr("B")})

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Address)
	assert.Equal(t, *core.DefaultSession(), got[1])
}

func TestSessionCacheConcurrentUse(t *testing.T) {
	cache := NewSessionCache()
	cancel := cache.Subscribe(func(core.Session) {})
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Merge(Update{Authenticated: ptr(j%2 == 0)})
				_ = cache.Snapshot()
			}
		}()
	}
	wg.Wait()
}
