package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-store/internal/logger"
	"github.com/MKhiriev/go-vault-store/models"
)

type sqliteBackend struct {
	*DB
	logger *logger.Logger
}

// NewSQLiteBackend returns a Backend over the kv_entries table of db. The
// schema must already be migrated.
func NewSQLiteBackend(db *DB, log *logger.Logger) Backend {
	return &sqliteBackend{
		DB:     db,
		logger: log.WithComponent("store.sqlite"),
	}
}

func (s *sqliteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := buildGetEntryQuery(key)
	if err != nil {
		return "", false, s.fail("get", key, ErrBuildingSQLQuery, err)
	}

	var value string
	err = s.DB.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.fail("get", key, ErrScanningRow, err)
	}
	return value, true, nil
}

func (s *sqliteBackend) Put(ctx context.Context, key, value string) error {
	query, args, err := buildUpsertEntryQuery(key, value)
	if err != nil {
		return s.fail("put", key, ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		return s.fail("put", key, ErrExecutingStatement, err)
	}
	return nil
}

func (s *sqliteBackend) Delete(ctx context.Context, key string) error {
	query, args, err := buildDeleteEntryQuery(key)
	if err != nil {
		return s.fail("delete", key, ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		return s.fail("delete", key, ErrExecutingStatement, err)
	}
	return nil
}

func (s *sqliteBackend) DeleteAll(ctx context.Context) error {
	query, args, err := buildDeleteAllEntriesQuery()
	if err != nil {
		return s.fail("delete_all", "", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		return s.fail("delete_all", "", ErrExecutingStatement, err)
	}
	return nil
}

func (s *sqliteBackend) DeleteWithPrefix(ctx context.Context, prefix string) (int, error) {
	query, args, err := buildDeleteEntriesWithPrefixQuery(prefix)
	if err != nil {
		return 0, s.fail("delete_prefix", prefix, ErrBuildingSQLQuery, err)
	}

	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.fail("delete_prefix", prefix, ErrExecutingStatement, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail("delete_prefix", prefix, ErrExecutingStatement, err)
	}
	return int(n), nil
}

func (s *sqliteBackend) Keys(ctx context.Context) ([]string, error) {
	query, args, err := buildSelectKeysQuery()
	if err != nil {
		return nil, s.fail("keys", "", ErrBuildingSQLQuery, err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail("keys", "", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, s.fail("keys", "", ErrScanningRows, err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, s.fail("keys", "", ErrScanningRows, err)
	}
	return keys, nil
}

func (s *sqliteBackend) Close() error {
	return s.DB.Close()
}

func (s *sqliteBackend) fail(op, key string, kind, err error) error {
	s.logger.Err(err).
		Str("func", "sqliteBackend."+op).
		Str("key", key).
		Msg(kind.Error())
	return &models.BackendError{Op: op, Key: key, Err: fmt.Errorf("%w: %w", kind, err)}
}
