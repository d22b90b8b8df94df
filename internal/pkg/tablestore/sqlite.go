// Copyright 2026 Peter Edge
//
// All rights reserved.

package tablestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// NewSQLiteStore returns a new Store backed by the SQLite file at filePath.
//
// The file and its parent directory are created on the first Put. Until then,
// reads behave as if the store were empty.
func NewSQLiteStore(filePath string) Store {
	return &sqliteStore{
		filePath: filePath,
	}
}

// *** PRIVATE ***

type sqliteStore struct {
	filePath string

	lock sync.Mutex
	db   *sql.DB
}

func (s *sqliteStore) Get(ctx context.Context, key string) (*Entry, error) {
	db, err := s.getDB(ctx, false)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, ErrNotFound
	}
	row := db.QueryRowContext(
		ctx,
		`SELECT payload, stored_at FROM `+tableName+` WHERE key = ?`,
		key,
	)
	var payload []byte
	var storedAt string
	if err := row.Scan(&payload, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	storedAtTime, err := time.Parse(time.RFC3339Nano, storedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing stored_at of %q: %w", key, err)
	}
	return &Entry{
		Key:      key,
		Payload:  payload,
		StoredAt: storedAtTime,
	}, nil
}

func (s *sqliteStore) Put(ctx context.Context, entry *Entry) (retErr error) {
	if entry.Key == "" {
		return errors.New("entry key is required")
	}
	db, err := s.getDB(ctx, true)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			retErr = errors.Join(retErr, tx.Rollback())
		}
	}()
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO `+tableName+` (key, payload, stored_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at`,
		entry.Key,
		entry.Payload,
		entry.StoredAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("writing %q: %w", entry.Key, err)
	}
	return tx.Commit()
}

func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	db, err := s.getDB(ctx, false)
	if err != nil {
		return err
	}
	if db == nil {
		return nil
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM `+tableName+` WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) List(ctx context.Context) (_ []EntryInfo, retErr error) {
	db, err := s.getDB(ctx, false)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, nil
	}
	rows, err := db.QueryContext(
		ctx,
		`SELECT key, stored_at, length(payload) FROM `+tableName+` ORDER BY key`,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, rows.Close())
	}()
	var entryInfos []EntryInfo
	for rows.Next() {
		var entryInfo EntryInfo
		var storedAt string
		if err := rows.Scan(&entryInfo.Key, &storedAt, &entryInfo.Size); err != nil {
			return nil, err
		}
		entryInfo.StoredAt, err = time.Parse(time.RFC3339Nano, storedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing stored_at of %q: %w", entryInfo.Key, err)
		}
		entryInfos = append(entryInfos, entryInfo)
	}
	return entryInfos, rows.Err()
}

func (s *sqliteStore) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// getDB returns the open database, opening it if needed.
//
// If create is false and the file does not exist, getDB returns nil.
func (s *sqliteStore) getDB(ctx context.Context, create bool) (*sql.DB, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.db != nil {
		return s.db, nil
	}
	if _, err := os.Stat(s.filePath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if !create {
			return nil, nil
		}
		if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", s.filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.filePath, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(
		ctx,
		`CREATE TABLE IF NOT EXISTS `+tableName+` (
			key TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			stored_at TEXT NOT NULL
		)`,
	); err != nil {
		return nil, errors.Join(fmt.Errorf("creating table in %s: %w", s.filePath, err), db.Close())
	}
	s.db = db
	return db, nil
}
