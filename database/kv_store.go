package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// KVStore keeps settings records in the storage_items table.
type KVStore struct {
	db *sql.DB
}

func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the stored values for keys. Keys without a row are omitted.
func (s *KVStore) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	query := "SELECT key, value FROM storage_items WHERE key IN (" + placeholders(len(keys)) + ")"
	rows, err := s.db.QueryContext(ctx, query, args(keys)...)
	if err != nil {
		return nil, fmt.Errorf("querying storage items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning storage item row: %w", err)
		}
		out[key] = []byte(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating storage item rows: %w", err)
	}
	return out, nil
}

// Set upserts every record in one transaction.
func (s *KVStore) Set(ctx context.Context, records map[string][]byte) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning storage transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO storage_items (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing storage upsert: %w", err)
	}
	defer stmt.Close()

	for key, value := range records {
		if _, err := stmt.ExecContext(ctx, key, string(value)); err != nil {
			return fmt.Errorf("saving storage item '%s': %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing storage items: %w", err)
	}
	return nil
}

// Remove deletes keys. Missing keys are not an error.
func (s *KVStore) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	query := "DELETE FROM storage_items WHERE key IN (" + placeholders(len(keys)) + ")"
	if _, err := s.db.ExecContext(ctx, query, args(keys)...); err != nil {
		return fmt.Errorf("removing storage items: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func args(keys []string) []interface{} {
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}
