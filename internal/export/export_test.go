package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ironman-notifier/internal/model"
)

var sample = []model.PostStatus{
	{Username: "Alice (alice)", PostCount: 3, Title: "Go 入門", URL: "https://ithelp.example/users/1"},
	{Username: "Bob (bob)", PostCount: 1, Title: "Rust", URL: "https://ithelp.example/users/2"},
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sample)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "| username | post_count | title | url |", strings.ToLower(lines[0]))
	require.True(t, strings.HasPrefix(lines[1], "| --"))
	require.Contains(t, lines[2], "| Alice (alice) | 3 | Go 入門 | https://ithelp.example/users/1 |")
	require.Contains(t, lines[3], "| Bob (bob) | 1 | Rust |")
}

func TestMarkdown_EscapesPipe(t *testing.T) {
	out := Markdown([]model.PostStatus{{Username: "a|b", PostCount: 0}})
	require.Contains(t, out, `a\|b`)
}

func TestToFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	st := Stats{Day: 3, Total: 2, PostedToday: 1, UpdatedAt: time.Date(2025, 9, 17, 8, 0, 0, 0, time.UTC)}
	require.NoError(t, ToFile(path, FormatJSON, sample, st))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Snapshot
	require.NoError(t, json.Unmarshal(b, &got))
	if diff := cmp.Diff(Snapshot{Stats: st, Members: sample}, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestToFile_OverwritesMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_post_status.md")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the table"), 0o644))
	require.NoError(t, ToFile(path, FormatMarkdown, sample[:1], Stats{}))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(b), "stale")
	require.Contains(t, string(b), "Alice (alice)")
}

func TestWrite_UnknownFormat(t *testing.T) {
	require.Error(t, Write(&strings.Builder{}, "csv", sample, Stats{}))
}
