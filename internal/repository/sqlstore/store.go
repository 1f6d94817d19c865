// Package sqlstore implements the repository contracts on database/sql for
// both SQLite and PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"modernc.org/sqlite"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/internal/db"
	"github.com/garnizeh/frota/pkg/repository"
)

// Store implements repository.Store using the internal DB wrapper.
type Store struct {
	db     *db.DB
	q      db.Querier
	inTx   bool
	logger *zap.Logger
}

// Ensure Store implements the public interfaces.
var _ repository.Store = (*Store)(nil)
var _ repository.AccountRepo = (*Store)(nil)
var _ repository.AdminRepo = (*Store)(nil)
var _ repository.CompanyRepo = (*Store)(nil)
var _ repository.OperatorRepo = (*Store)(nil)
var _ repository.DriverRepo = (*Store)(nil)
var _ repository.VehicleRepo = (*Store)(nil)

func New(conn *db.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: conn, q: conn, logger: logger}
}

// InTx runs fn against a Store bound to one transaction. Nested calls reuse
// the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithTx(ctx, func(tx *db.Tx) error {
		return fn(&Store{db: s.db, q: tx, inTx: true, logger: s.logger})
	})
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

func newID() string {
	return uuid.NewString()
}

type scanner interface {
	Scan(dest ...any) error
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// optionalRef maps an update's reference pointer to a column value: nil keeps
// the column, "" clears it.
func optionalRef(s *string) (value sql.NullString, set bool) {
	if s == nil {
		return sql.NullString{}, false
	}
	if *s == "" {
		return sql.NullString{}, true
	}
	return sql.NullString{String: *s, Valid: true}, true
}

func millis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().UnixMilli(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.UnixMilli(n.Int64).UTC()
	return &t
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func checkAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(what + " not found")
	}
	return nil
}

// classify turns driver-specific constraint failures into apperr kinds.
// Anything else is returned as is.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			field := strings.TrimSuffix(strings.TrimPrefix(pgErr.ConstraintName, pgErr.TableName+"_"), "_key")
			return conflict(field, err)
		case "23503":
			return &apperr.Error{Kind: apperr.KindBadRequest, Message: "referenced record does not exist", Err: err}
		case "23514":
			return &apperr.Error{Kind: apperr.KindBadRequest, Message: "value not allowed", Err: err}
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		msg := liteErr.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed:"):
			return conflict(sqliteColumn(msg), err)
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return &apperr.Error{Kind: apperr.KindBadRequest, Message: "referenced record does not exist", Err: err}
		case strings.Contains(msg, "CHECK constraint failed"):
			return &apperr.Error{Kind: apperr.KindBadRequest, Message: "value not allowed", Err: err}
		}
	}
	return err
}

func conflict(column string, err error) error {
	field := camel(column)
	return &apperr.Error{Kind: apperr.KindConflict, Message: field + " already in use", Field: field, Err: err}
}

// sqliteColumn extracts "email" from "... UNIQUE constraint failed: accounts.email (2067)".
func sqliteColumn(msg string) string {
	_, rest, _ := strings.Cut(msg, "UNIQUE constraint failed:")
	rest = strings.TrimSpace(rest)
	if i := strings.IndexAny(rest, ", ("); i >= 0 {
		rest = rest[:i]
	}
	if _, col, ok := strings.Cut(rest, "."); ok {
		return col
	}
	return rest
}

func camel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
