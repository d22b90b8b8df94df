// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package iapctlcache provides a staleness-checked cache of whole tables over a
// tablestore.Store.
//
// An entry is fresh while its age is less than the freshness window. A missing
// entry, a stale entry, and a missing backing store are all misses; only store
// read failures are errors.
package iapctlcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bufdev/iapctl/internal/pkg/tablestore"
)

// DefaultFreshness is the default freshness window.
const DefaultFreshness = 72 * time.Hour

// KeyInfo describes a cached key.
type KeyInfo struct {
	// Key is the logical table name.
	Key string `json:"key"`
	// StoredAt is the time the table was stored.
	StoredAt time.Time `json:"stored_at"`
	// Size is the payload size in bytes.
	Size int `json:"size"`
	// Fresh is true if the entry is younger than the freshness window.
	Fresh bool `json:"fresh"`
}

// Cache is a staleness-checked table cache.
type Cache interface {
	// Get returns the payload for the key if it is present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores the payload for the key with the current time, replacing any
	// existing payload.
	Put(ctx context.Context, key string, payload []byte) error
	// Keys lists the cached keys, sorted by key.
	Keys(ctx context.Context) ([]KeyInfo, error)
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// CacheOption is a functional option for configuring the Cache.
type CacheOption func(*cache)

// CacheWithFreshness sets the freshness window.
//
// The default is DefaultFreshness.
func CacheWithFreshness(freshness time.Duration) CacheOption {
	return func(c *cache) {
		c.freshness = freshness
	}
}

// CacheWithClock sets the function used to get the current time.
//
// The default is time.Now.
func CacheWithClock(now func() time.Time) CacheOption {
	return func(c *cache) {
		c.now = now
	}
}

// NewCache creates a new Cache over the given store.
func NewCache(store tablestore.Store, options ...CacheOption) Cache {
	c := &cache{
		store:     store,
		freshness: DefaultFreshness,
		now:       time.Now,
		keyLocks:  make(map[string]*sync.Mutex),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// GetTable returns the table stored for the key if it is present and fresh.
//
// A payload that cannot be decoded into T is a miss.
func GetTable[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var table T
	payload, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return table, false, err
	}
	if err := json.Unmarshal(payload, &table); err != nil {
		var zero T
		return zero, false, nil
	}
	return table, true, nil
}

// PutTable stores the table for the key.
func PutTable[T any](ctx context.Context, c Cache, key string, table T) error {
	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	return c.Put(ctx, key, payload)
}

// *** PRIVATE ***

type cache struct {
	store     tablestore.Store
	freshness time.Duration
	now       func() time.Time

	lock     sync.Mutex
	keyLocks map[string]*sync.Mutex
}

func (c *cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, tablestore.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !c.isFresh(entry.StoredAt) {
		return nil, false, nil
	}
	return entry.Payload, true, nil
}

func (c *cache) Put(ctx context.Context, key string, payload []byte) error {
	keyLock := c.getKeyLock(key)
	keyLock.Lock()
	defer keyLock.Unlock()
	return c.store.Put(ctx, &tablestore.Entry{
		Key:      key,
		Payload:  payload,
		StoredAt: c.now(),
	})
}

func (c *cache) Keys(ctx context.Context) ([]KeyInfo, error) {
	entryInfos, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	keyInfos := make([]KeyInfo, 0, len(entryInfos))
	for _, entryInfo := range entryInfos {
		keyInfos = append(keyInfos, KeyInfo{
			Key:      entryInfo.Key,
			StoredAt: entryInfo.StoredAt,
			Size:     entryInfo.Size,
			Fresh:    c.isFresh(entryInfo.StoredAt),
		})
	}
	return keyInfos, nil
}

func (c *cache) Delete(ctx context.Context, key string) error {
	keyLock := c.getKeyLock(key)
	keyLock.Lock()
	defer keyLock.Unlock()
	return c.store.Delete(ctx, key)
}

// isFresh returns true if an entry stored at storedAt is younger than the freshness window.
func (c *cache) isFresh(storedAt time.Time) bool {
	return c.now().Sub(storedAt) < c.freshness
}

func (c *cache) getKeyLock(key string) *sync.Mutex {
	c.lock.Lock()
	defer c.lock.Unlock()
	keyLock, ok := c.keyLocks[key]
	if !ok {
		keyLock = &sync.Mutex{}
		c.keyLocks[key] = keyLock
	}
	return keyLock
}
