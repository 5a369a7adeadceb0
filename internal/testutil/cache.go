package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"fintrack/internal/cache"
)

// SetupTestCache starts an in-process Redis and returns a Store backed by it.
// The server and client are cleaned up when the test ends.
func SetupTestCache(t *testing.T) cache.Store {
	t.Helper()
	store, _ := SetupTestCacheWithServer(t)
	return store
}

// SetupTestCacheWithServer also exposes the miniredis handle so tests can
// inspect keys or force failures by stopping the server.
func SetupTestCacheWithServer(t *testing.T) (cache.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisStore(client), mr
}
