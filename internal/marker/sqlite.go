package marker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore 将标记保存在 SQLite 表中，基于 modernc.org/sqlite（纯 Go 实现）。
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite 打开数据库并执行建表迁移。
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS markers (
        name TEXT UNIQUE,
        created_at TIMESTAMP
    );`)
	if err != nil {
		return fmt.Errorf("exec migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Exists(ctx context.Context, day int) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM markers WHERE name = ?`, Name(day)).Scan(&n); err != nil {
		return false, fmt.Errorf("query marker %s: %w", Name(day), err)
	}
	return n > 0, nil
}

// Mark 写入标记；重复写入保持首次时间。
func (s *SQLiteStore) Mark(ctx context.Context, day int) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO markers(name, created_at) VALUES(?, ?)
        ON CONFLICT(name) DO NOTHING`, Name(day), time.Now())
	if err != nil {
		return fmt.Errorf("insert marker %s: %w", Name(day), err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
