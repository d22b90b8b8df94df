// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tablestore provides a key-value store of whole-table snapshots.
//
// Each key is a logical table name (e.g. a game's display name or
// "currency_rates") and each value is an opaque serialized snapshot of that
// table with the time it was stored. Values are always replaced wholesale.
//
// Two backends are provided: a local SQLite file and a PostgreSQL database.
// Both keep all entries in a single table:
//
//	iapctl_cache(key, payload, stored_at)
package tablestore

import (
	"context"
	"errors"
	"time"
)

// tableName is the name of the single table holding all entries.
const tableName = "iapctl_cache"

// ErrNotFound is returned by Get when there is no entry for a key.
var ErrNotFound = errors.New("entry not found")

// Entry is a stored table snapshot.
type Entry struct {
	// Key is the logical table name.
	Key string
	// Payload is the serialized table.
	Payload []byte
	// StoredAt is the time the snapshot was stored.
	StoredAt time.Time
}

// EntryInfo describes a stored entry without its payload.
type EntryInfo struct {
	// Key is the logical table name.
	Key string
	// StoredAt is the time the snapshot was stored.
	StoredAt time.Time
	// Size is the payload size in bytes.
	Size int
}

// Store is a key-value store of table snapshots.
type Store interface {
	// Get returns the entry for the key, or ErrNotFound.
	Get(ctx context.Context, key string) (*Entry, error)
	// Put stores the entry, replacing any existing entry for the key.
	Put(ctx context.Context, entry *Entry) error
	// Delete removes the entry for the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns information about all entries, sorted by key.
	List(ctx context.Context) ([]EntryInfo, error)
	// Close releases the resources held by the store.
	Close() error
}
