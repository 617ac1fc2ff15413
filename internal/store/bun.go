// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	// SQL drivers for the supported backends.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// kvEntry maps the kv_entries table. Every bucket shares the table.
type kvEntry struct {
	bun.BaseModel `bun:"table:kv_entries"`
	Bucket        string    `bun:"bucket,pk,type:varchar(191)"`
	Key           string    `bun:"entry_key,pk,type:varchar(191)"`
	Payload       string    `bun:"payload,type:text,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// BunStore is the SQL-backed Store used for sqlite, postgres and mysql.
type BunStore struct {
	bun    *bun.DB
	dbType string
}

var _ Store = (*BunStore)(nil)

// BunDB returns the underlying *bun.DB for advanced callers.
func (s *BunStore) BunDB() *bun.DB { return s.bun }

// NewStoreFromDSN opens a sql.DB for the given DSN, creates the kv_entries
// table if needed, and returns a Store backed by a long-lived *bun.DB.
func NewStoreFromDSN(dbType, dsn string) (*BunStore, error) {
	driverName, err := driverFor(dbType)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	const (
		defaultMaxOpenConns    = 25
		defaultMaxIdleConns    = 25
		defaultConnMaxLifetime = 5 * time.Minute
	)
	maxOpen := envInt("PROTOMAP_DB_MAX_OPEN_CONNS", defaultMaxOpenConns)
	maxIdle := envInt("PROTOMAP_DB_MAX_IDLE_CONNS", defaultMaxIdleConns)
	connMax := defaultConnMaxLifetime
	if n := envInt("PROTOMAP_DB_CONN_MAX_LIFETIME_SECONDS", -1); n >= 0 {
		connMax = time.Duration(n) * time.Second
	}
	// Every connection to ":memory:" gets its own database, so keep exactly one.
	if dbType == "sqlite" && dsn == ":memory:" {
		maxOpen = 1
		maxIdle = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(connMax)
	dbLogf("opened %s driver in %s (conn max open=%d, idle=%d, maxLifetime=%s)", driverName, time.Since(start), maxOpen, maxIdle, connMax)

	s := &BunStore{bun: createBunDB(sqlDB, dbType), dbType: dbType}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.ensureTable(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to prepare kv_entries table: %w", err)
	}
	return s, nil
}

func driverFor(dbType string) (string, error) {
	switch dbType {
	case "sqlite":
		return "sqlite", nil
	case "postgres":
		// The pgx stdlib registers driver name "pgx".
		return "pgx", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported database type: '%s'", dbType)
	}
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and dbType.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func (s *BunStore) ensureTable(ctx context.Context) error {
	_, err := s.bun.NewCreateTable().Model((*kvEntry)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *BunStore) Ping(ctx context.Context) error {
	return s.bun.PingContext(ctx)
}

func (s *BunStore) ListKeys(ctx context.Context, bucket string) ([]string, error) {
	var keys []string
	err := s.bun.NewSelect().
		Model((*kvEntry)(nil)).
		Column("entry_key").
		Where("bucket = ?", bucket).
		Order("entry_key").
		Scan(ctx, &keys)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (s *BunStore) GetValue(ctx context.Context, bucket, key string) (Value, error) {
	var e kvEntry
	err := s.bun.NewSelect().
		Model(&e).
		Where("bucket = ?", bucket).
		Where("entry_key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e.Payload, nil
}

func (s *BunStore) PutValue(ctx context.Context, bucket string, value map[string]any, key string) (string, error) {
	if value == nil {
		value = map[string]any{}
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	now := time.Now().UTC()
	e := &kvEntry{Bucket: bucket, Key: key, Payload: string(payload), CreatedAt: now, UpdatedAt: now}

	if key == "" {
		e.Key = uuid.NewString()
		if _, err := s.bun.NewInsert().Model(e).Exec(ctx); err != nil {
			return "", MapDBError(err)
		}
		return e.Key, nil
	}

	q := s.bun.NewInsert().Model(e)
	switch s.dbType {
	case "mysql":
		q = q.On("DUPLICATE KEY UPDATE").
			Set("payload = VALUES(payload)").
			Set("updated_at = VALUES(updated_at)")
	default:
		q = q.On("CONFLICT (bucket, entry_key) DO UPDATE").
			Set("payload = EXCLUDED.payload").
			Set("updated_at = EXCLUDED.updated_at")
	}
	if _, err := q.Exec(ctx); err != nil {
		return "", MapDBError(err)
	}
	return key, nil
}

func (s *BunStore) DeleteValue(ctx context.Context, bucket, key string) (bool, error) {
	res, err := s.bun.NewDelete().
		Model((*kvEntry)(nil)).
		Where("bucket = ?", bucket).
		Where("entry_key = ?", key).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BunStore) Close() error {
	return s.bun.Close()
}
