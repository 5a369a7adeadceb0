package services

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/logger"
	"fintrack/internal/pagination"
	"fintrack/internal/query"
)

// fetchCached runs a read with cache-aside semantics. The cache is
// best-effort: get/set failures are logged and the read proceeds against the
// store, which stays the source of truth. A nil store disables caching.
func fetchCached[T any](ctx context.Context, store cache.Store, key string, ttl time.Duration, load func() (*T, error)) (*T, error) {
	if store != nil {
		raw, found, err := store.Get(ctx, key)
		switch {
		case err != nil:
			logger.Get().Warnw("cache get failed", "key", key, "error", err)
		case found:
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
			logger.Get().Warnw("dropping undecodable cache entry", "key", key)
		}
	}

	result, err := load()
	if err != nil {
		return nil, err
	}

	if store != nil {
		raw, err := json.Marshal(result)
		if err == nil {
			err = store.Set(ctx, key, raw, ttl)
		}
		if err != nil {
			logger.Get().Warnw("cache set failed", "key", key, "error", err)
		}
	}
	return result, nil
}

// invalidatePrefixes deletes everything under the given cache prefixes.
// Issued only after the store write is durably acknowledged; a failure here
// is logged and bounded by entry TTLs, never surfaced to the caller.
func invalidatePrefixes(ctx context.Context, store cache.Store, prefixes ...string) {
	if store == nil {
		return
	}
	for _, prefix := range prefixes {
		if err := store.DeleteByPrefix(ctx, prefix); err != nil {
			logger.Get().Warnw("cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
}

// transactionParamsValues canonicalizes transaction-list parameters for cache
// keying. Only supplied parameters are included, so an absent filter and an
// empty one produce the same key.
func transactionParamsValues(p query.TransactionParams, page pagination.PageRequest) url.Values {
	v := url.Values{}
	setNonEmpty(v, "category", p.Category)
	setNonEmpty(v, "fromDate", p.FromDate)
	setNonEmpty(v, "toDate", p.ToDate)
	setNonEmpty(v, "transactionType", p.TransactionType)
	setNonEmpty(v, "transactionSearch", p.Search)
	setNonEmpty(v, "sortBy", p.SortBy)
	setNonEmpty(v, "sortOrder", p.SortOrder)
	setPage(v, page)
	return v
}

// overviewParamsValues canonicalizes overview parameters for cache keying.
func overviewParamsValues(p query.OverviewParams, page pagination.PageRequest) url.Values {
	v := url.Values{}
	setNonEmpty(v, "search", p.Search)
	setNonEmpty(v, "role", p.Role)
	setNonEmpty(v, "sortBy", p.SortBy)
	setNonEmpty(v, "sortOrder", p.SortOrder)
	setPage(v, page)
	return v
}

func setNonEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setPage(v url.Values, page pagination.PageRequest) {
	page.Defaults()
	v.Set("page", strconv.Itoa(page.Page))
	v.Set("limit", strconv.Itoa(page.Limit))
}
