package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/didi/gendry/builder"
	_ "github.com/mattn/go-sqlite3"
)

// MaxValueBytes bounds a single persisted value. The store as a whole is
// expected to stay within a few megabytes, so oversized writes are rejected
// up front instead of silently accepted.
const MaxValueBytes = 4 << 20

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	const ddl = `
CREATE TABLE IF NOT EXISTS kv_store (
  key TEXT NOT NULL PRIMARY KEY,
  value TEXT NOT NULL,
  mtime INTEGER NOT NULL
);`
	if _, err := db.Exec(ddl); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	where := map[string]interface{}{
		"key in": keys,
	}
	sqlStr, args, err := builder.BuildSelect("kv_store", where, []string{"key", "value"})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Set(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	now := time.Now().Unix()
	records := make([]map[string]interface{}, 0, len(values))
	for key, value := range values {
		if len(value) > MaxValueBytes {
			return fmt.Errorf("value for key %s exceeds %d bytes", key, MaxValueBytes)
		}
		records = append(records, map[string]interface{}{
			"key":   key,
			"value": value,
			"mtime": now,
		})
	}
	sqlStr, args, err := builder.BuildInsert("kv_store", records)
	if err != nil {
		return err
	}
	sqlStr = strings.Replace(sqlStr, "INSERT INTO", "INSERT OR REPLACE INTO", 1)
	_, err = s.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	where := map[string]interface{}{
		"key": key,
	}
	sqlStr, args, err := builder.BuildDelete("kv_store", where)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
