// Package colcache caches fully drained remote collection listings keyed by
// collection identity, trading bounded staleness for upstream API quota.
package colcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc drains every page of one remote listing and returns the raw
// records. The fetcher never interprets the records; wrapping them into
// typed objects is the caller's job.
type FetchFunc func(ctx context.Context) ([]json.RawMessage, error)

const defaultRefreshTimeout = 2 * time.Minute

// Fetcher serves collection reads under a Policy. Concurrent synchronous
// fetches for one key are collapsed, and at most one background refresh per
// key is in flight at a time.
type Fetcher struct {
	store          Store
	logger         *slog.Logger
	refreshTimeout time.Duration

	group singleflight.Group

	mu         sync.Mutex
	refreshing map[string]struct{}
}

func NewFetcher(store Store, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		store:          store,
		logger:         logger,
		refreshTimeout: defaultRefreshTimeout,
		refreshing:     make(map[string]struct{}),
	}
}

// Get returns the records for key under the given policy.
//
// A cached entry within the staleness budget is returned without a remote
// call. A stale entry with BackgroundRefresh set is returned immediately
// while a detached refresh replaces it for future callers. Otherwise the
// call blocks on a fresh fetch; concurrent blocking callers for the same key
// share one remote call.
func (f *Fetcher) Get(ctx context.Context, key string, policy Policy, fetch FetchFunc) ([]json.RawMessage, error) {
	if policy.MaxAge >= 0 {
		entry, ok, err := f.store.Load(key)
		if err != nil {
			// A broken cache read degrades to a miss.
			f.logger.Warn("cache load failed", "key", key, "error", err)
		} else if ok {
			if time.Since(entry.FetchedAt) <= policy.MaxAge {
				return entry.Records, nil
			}
			if policy.BackgroundRefresh {
				f.scheduleRefresh(key, fetch)
				return entry.Records, nil
			}
		}
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		started := time.Now()
		records, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		f.save(key, &Entry{FetchedAt: started, Records: records})
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]json.RawMessage), nil
}

// scheduleRefresh starts one detached refresh for key unless one is already
// in flight. The refresh runs on its own context: cancelling the request
// that triggered it must not cancel work other callers may benefit from.
func (f *Fetcher) scheduleRefresh(key string, fetch FetchFunc) {
	f.mu.Lock()
	if _, inFlight := f.refreshing[key]; inFlight {
		f.mu.Unlock()
		return
	}
	f.refreshing[key] = struct{}{}
	f.mu.Unlock()

	go func() {
		defer func() {
			f.mu.Lock()
			delete(f.refreshing, key)
			f.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), f.refreshTimeout)
		defer cancel()

		started := time.Now()
		records, err := fetch(ctx)
		if err != nil {
			// The caller already got a stale copy; the failure only delays
			// freshness for future callers.
			f.logger.Warn("background refresh failed", "key", key, "error", err)
			return
		}
		f.save(key, &Entry{FetchedAt: started, Records: records})
	}()
}

func (f *Fetcher) save(key string, entry *Entry) {
	if err := f.store.Save(key, entry); err != nil {
		f.logger.Warn("cache save failed", "key", key, "error", err)
	}
}

// Collection fetches a typed collection through f, marshalling records for
// storage and unmarshalling cached records back into T.
func Collection[T any](ctx context.Context, f *Fetcher, key string, policy Policy, fetch func(ctx context.Context) ([]T, error)) ([]T, error) {
	raw, err := f.Get(ctx, key, policy, func(ctx context.Context) ([]json.RawMessage, error) {
		items, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]json.RawMessage, len(items))
		for i, item := range items {
			data, err := json.Marshal(item)
			if err != nil {
				return nil, fmt.Errorf("encoding record for cache: %w", err)
			}
			records[i] = data
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]T, len(raw))
	for i, record := range raw {
		if err := json.Unmarshal(record, &items[i]); err != nil {
			return nil, fmt.Errorf("decoding cached record: %w", err)
		}
	}
	return items, nil
}
