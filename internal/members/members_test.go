package members

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_JSONAndJSON5(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "users.json")
	body := `{
  // 後端組
  "xiaoming": {"department": "Backend", "grade": "Senior", "realname": "王小明"},
  "amy": {"department": "Frontend", "grade": "Junior", "realname": "林艾美",},
}`
	require.NoError(t, os.WriteFile(f, []byte(body), 0o644))

	d, err := Load(f)
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())
	e, ok := d.Lookup("xiaoming")
	require.True(t, ok)
	require.Equal(t, Entry{Department: "Backend", Grade: "Senior", RealName: "王小明"}, e)
	require.Equal(t, "林艾美", d.RealName("amy"))
	require.Equal(t, "ghost", d.RealName("ghost"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(t, err, "read members")

	f := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(f, []byte(`{"x": [`), 0o644))
	_, err = Load(f)
	require.ErrorContains(t, err, "unmarshal members")
}

func TestDirectory_NilSafe(t *testing.T) {
	var d *Directory
	_, ok := d.Lookup("a")
	require.False(t, ok)
	require.Equal(t, 0, d.Len())
	require.Equal(t, "a", d.RealName("a"))
}
