// 包 marker 提供"当天已通知"标记的存取，按赛程第 N 天区分。
// 标记只会被创建，不会被删除；并发运行由外部调度保证互斥。
package marker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ironman-notifier/internal/config"
)

// Store 为标记存储。
type Store interface {
	Exists(ctx context.Context, day int) (bool, error)
	Mark(ctx context.Context, day int) error
	Close() error
}

// Name 返回第 day 天的标记名，例如 done_3.txt。
func Name(day int) string { return fmt.Sprintf("done_%d.txt", day) }

// FileStore 以目录下的文件是否存在作为标记，内容无意义。
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) path(day int) string { return filepath.Join(s.dir, Name(day)) }

func (s *FileStore) Exists(_ context.Context, day int) (bool, error) {
	_, err := os.Stat(s.path(day))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat marker %s: %w", s.path(day), err)
}

func (s *FileStore) Mark(_ context.Context, day int) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create marker dir %s: %w", s.dir, err)
	}
	if err := os.WriteFile(s.path(day), []byte("done"), 0o644); err != nil {
		return fmt.Errorf("write marker %s: %w", s.path(day), err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Open 按 MARKER 配置打开对应后端。
func Open(c config.Marker) (Store, error) {
	switch c.Backend {
	case config.MarkerSQLite:
		s, err := OpenSQLite(c.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.MarkerFile, "":
		return NewFileStore(c.Dir), nil
	default:
		return nil, fmt.Errorf("unsupported marker backend: %s", c.Backend)
	}
}
