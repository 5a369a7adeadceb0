package cache

import (
	"context"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestKey(t *testing.T) {
	t.Run("param_order_does_not_matter", func(t *testing.T) {
		a := url.Values{}
		a.Set("category", "food")
		a.Set("page", "1")

		b := url.Values{}
		b.Set("page", "1")
		b.Set("category", "food")

		if Key(a, "tx", "user", "u1") != Key(b, "tx", "user", "u1") {
			t.Error("expected identical keys regardless of insertion order")
		}
	})

	t.Run("different_params_produce_different_keys", func(t *testing.T) {
		a := url.Values{"page": {"1"}}
		b := url.Values{"page": {"2"}}
		if Key(a, "tx", "all") == Key(b, "tx", "all") {
			t.Error("expected distinct keys for distinct params")
		}
	})

	t.Run("params_cannot_collide_across_names", func(t *testing.T) {
		// "a=b&c" as one value vs. two separate parameters.
		a := url.Values{"a": {"b&c=d"}}
		b := url.Values{"a": {"b"}, "c": {"d"}}
		if Key(a, "tx") == Key(b, "tx") {
			t.Error("expected escaping to keep parameter sets distinct")
		}
	})

	t.Run("key_lives_under_its_prefix", func(t *testing.T) {
		params := url.Values{"page": {"1"}}
		key := Key(params, "tx", "user", "u1")
		prefix := Prefix("tx", "user", "u1")
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			t.Errorf("expected key %q to start with prefix %q", key, prefix)
		}
	})
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("get_returns_miss_for_absent_key", func(t *testing.T) {
		store, _ := setupStore(t)

		_, found, err := store.Get(ctx, "fintrack:absent")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found {
			t.Error("expected a miss")
		}
	})

	t.Run("set_then_get_round_trips", func(t *testing.T) {
		store, _ := setupStore(t)

		if err := store.Set(ctx, "fintrack:k", []byte(`{"a":1}`), time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		value, found, err := store.Get(ctx, "fintrack:k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !found || string(value) != `{"a":1}` {
			t.Errorf("expected cached value, got found=%v value=%q", found, value)
		}
	})

	t.Run("entries_expire_after_ttl", func(t *testing.T) {
		store, mr := setupStore(t)

		if err := store.Set(ctx, "fintrack:k", []byte("v"), time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mr.FastForward(2 * time.Minute)

		_, found, err := store.Get(ctx, "fintrack:k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found {
			t.Error("expected entry to have expired")
		}
	})

	t.Run("delete_by_prefix_removes_only_matches", func(t *testing.T) {
		store, _ := setupStore(t)

		keys := []string{
			Key(url.Values{"page": {"1"}}, "tx", "user", "u1"),
			Key(url.Values{"page": {"2"}}, "tx", "user", "u1"),
			Key(url.Values{"page": {"1"}}, "tx", "user", "u2"),
			Key(url.Values{"page": {"1"}}, "analytics", "overview"),
		}
		for _, k := range keys {
			if err := store.Set(ctx, k, []byte("v"), time.Minute); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if err := store.DeleteByPrefix(ctx, Prefix("tx", "user", "u1")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i, k := range keys {
			_, found, err := store.Get(ctx, k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			wantFound := i >= 2
			if found != wantFound {
				t.Errorf("key %q: expected found=%v, got %v", k, wantFound, found)
			}
		}
	})

	t.Run("delete_by_prefix_with_no_matches_is_a_no_op", func(t *testing.T) {
		store, _ := setupStore(t)
		if err := store.DeleteByPrefix(ctx, Prefix("tx", "user", "missing")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("delete_by_prefix_handles_more_keys_than_one_batch", func(t *testing.T) {
		store, mr := setupStore(t)

		for i := 0; i < deleteBatchSize+50; i++ {
			params := url.Values{"i": {strconv.Itoa(i)}}
			if err := store.Set(ctx, Key(params, "tx", "all"), []byte("v"), time.Minute); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if err := store.DeleteByPrefix(ctx, Prefix("tx", "all")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := len(mr.Keys()); got != 0 {
			t.Errorf("expected all keys deleted, %d remain", got)
		}
	})
}
