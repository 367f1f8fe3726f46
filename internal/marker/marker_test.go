package marker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ironman-notifier/internal/config"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	ok, err := s.Exists(ctx, 3)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Mark(ctx, 3))
	require.NoError(t, s.Mark(ctx, 3))

	ok, err = s.Exists(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Exists(ctx, 4)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "markers")
	s := NewFileStore(dir)
	defer s.Close()
	exercise(t, s)

	b, err := os.ReadFile(filepath.Join(dir, "done_3.txt"))
	require.NoError(t, err)
	require.Equal(t, "done", string(b))
}

func TestFileStore_ExistingFileAnyContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Name(7)), nil, 0o644))
	ok, err := NewFileStore(dir).Exists(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "markers.db"))
	require.NoError(t, err)
	defer s.Close()
	exercise(t, s)
}

func TestName(t *testing.T) {
	require.Equal(t, "done_12.txt", Name(12))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(config.Marker{Backend: config.MarkerFile, Dir: dir})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, s)

	s, err = Open(config.Marker{Backend: config.MarkerSQLite, DSN: filepath.Join(dir, "m.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.Marker{Backend: "redis"})
	require.Error(t, err)
}
