// Copyright 2026 Peter Edge
//
// All rights reserved.

package tablestore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig is the connection configuration of a PostgreSQL store.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	// SSLMode is the libpq sslmode. Defaults to "prefer".
	SSLMode string
	// MaxConns is the maximum pool size. Zero uses the pgxpool default.
	MaxConns int
}

// BuildConnString builds a PostgreSQL connection URL from the config.
//
// The user and password are percent-encoded as URL userinfo.
func BuildConnString(config PostgresConfig) string {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	connURL := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(config.User, config.Password),
		Host:     net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Path:     "/" + config.Database,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return connURL.String()
}

// NewPostgresStore connects to PostgreSQL and returns a new Store.
//
// The entry table is created if it does not exist.
func NewPostgresStore(ctx context.Context, config PostgresConfig) (Store, error) {
	poolConfig, err := pgxpool.ParseConfig(BuildConnString(config))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = int32(config.MaxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(
		ctx,
		`CREATE TABLE IF NOT EXISTS `+tableName+` (
			key TEXT PRIMARY KEY,
			payload BYTEA NOT NULL,
			stored_at TIMESTAMPTZ NOT NULL
		)`,
	); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &postgresStore{
		pool: pool,
	}, nil
}

// *** PRIVATE ***

type postgresStore struct {
	pool *pgxpool.Pool
}

func (s *postgresStore) Get(ctx context.Context, key string) (*Entry, error) {
	entry := &Entry{
		Key: key,
	}
	if err := s.pool.QueryRow(
		ctx,
		`SELECT payload, stored_at FROM `+tableName+` WHERE key = $1`,
		key,
	).Scan(&entry.Payload, &entry.StoredAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	return entry, nil
}

func (s *postgresStore) Put(ctx context.Context, entry *Entry) error {
	if entry.Key == "" {
		return errors.New("entry key is required")
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO `+tableName+` (key, payload, stored_at) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, stored_at = EXCLUDED.stored_at`,
			entry.Key,
			entry.Payload,
			entry.StoredAt.UTC(),
		); err != nil {
			return fmt.Errorf("writing %q: %w", entry.Key, err)
		}
		return nil
	})
}

func (s *postgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM `+tableName+` WHERE key = $1`, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

func (s *postgresStore) List(ctx context.Context) ([]EntryInfo, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT key, stored_at, octet_length(payload) FROM `+tableName+` ORDER BY key`,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (EntryInfo, error) {
		var entryInfo EntryInfo
		var storedAt time.Time
		if err := row.Scan(&entryInfo.Key, &storedAt, &entryInfo.Size); err != nil {
			return EntryInfo{}, err
		}
		entryInfo.StoredAt = storedAt
		return entryInfo, nil
	})
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
