// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a bucket holds no value under the requested key.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when attempting to insert a key that already exists.
var ErrDuplicate = errors.New("duplicate record")

// MapDBError inspects low-level driver errors and maps unique constraint
// violations to ErrDuplicate. MySQL (1062) and Postgres (23505) are matched
// on their typed errors, SQLite on its message.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	le := strings.ToLower(err.Error())
	if strings.Contains(le, "unique constraint") || strings.Contains(le, "duplicate") {
		return ErrDuplicate
	}
	return err
}

var errStoreClosed = errors.New("store is closed")
