// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	entriesTable   = "kv_entries"
	colEntryKey    = "entry_key"
	colEntryValue  = "entry_value"
	colUpdatedAt   = "updated_at"
	upsertConflict = "ON CONFLICT(" + colEntryKey + ") DO UPDATE SET " +
		colEntryValue + " = excluded." + colEntryValue + ", " +
		colUpdatedAt + " = excluded." + colUpdatedAt
)

// psql is the statement builder for SQLite's "?" placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildGetEntryQuery(key string) (string, []any, error) {
	return psql.
		Select(colEntryValue).
		From(entriesTable).
		Where(sq.Eq{colEntryKey: key}).
		ToSql()
}

func buildUpsertEntryQuery(key, value string) (string, []any, error) {
	return psql.
		Insert(entriesTable).
		Columns(colEntryKey, colEntryValue, colUpdatedAt).
		Values(key, value, sq.Expr("CURRENT_TIMESTAMP")).
		Suffix(upsertConflict).
		ToSql()
}

func buildDeleteEntryQuery(key string) (string, []any, error) {
	return psql.
		Delete(entriesTable).
		Where(sq.Eq{colEntryKey: key}).
		ToSql()
}

func buildDeleteAllEntriesQuery() (string, []any, error) {
	return psql.Delete(entriesTable).ToSql()
}

// buildDeleteEntriesWithPrefixQuery matches with instr because LIKE is
// case-insensitive for ASCII in SQLite and treats % and _ as wildcards.
func buildDeleteEntriesWithPrefixQuery(prefix string) (string, []any, error) {
	return psql.
		Delete(entriesTable).
		Where(sq.Expr("instr("+colEntryKey+", ?) = 1", prefix)).
		ToSql()
}

func buildSelectKeysQuery() (string, []any, error) {
	return psql.
		Select(colEntryKey).
		From(entriesTable).
		OrderBy(colEntryKey).
		ToSql()
}
