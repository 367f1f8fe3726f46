package logx

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureStdout 在 fn 执行期间截获 os.Stdout。
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()
	fn()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	_ = r.Close()
	return buf.String()
}

func TestLogx_PrettyZH_Info(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	out := captureStdout(func() {
		Init(Options{Level: "debug", Format: "pretty", Locale: "zh-CN", Color: "never"})
		Infof("hello %s", "world")
	})
	require.Contains(t, out, "[信息]")
	require.Contains(t, out, "hello world")
}

func TestLogx_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "warn", Locale: "zh-CN", Color: "never"})
	l.Info("should not print")
	l.Warn("warn on")
	out := buf.String()
	require.NotContains(t, out, "should not print")
	require.Contains(t, out, "[警告]")
}

func TestLogx_Locales(t *testing.T) {
	for locale, label := range map[string]string{
		"en":    "[INFO]",
		"zh-TW": "[資訊]",
		"zh-CN": "[信息]",
	} {
		var buf bytes.Buffer
		New(&buf, Options{Level: "info", Locale: locale, Color: "never"}).Info("ok")
		require.Contains(t, buf.String(), label, "locale=%s", locale)
	}
}

func TestLogx_Silent(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{Level: "off", Color: "never"}).Error("boom")
	require.Empty(t, buf.String())
}

func TestLogx_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Locale: "en", Color: "never"}).With("run", 1).WithGroup("member")
	l.Info("fetched", "nick", "xiaoming")
	line := strings.TrimSpace(buf.String())
	require.Contains(t, line, "run=1")
	require.Contains(t, line, "member.nick=xiaoming")
}

func TestLogx_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{Format: "json"}).Info("hi", "k", "v")
	require.Contains(t, buf.String(), `"msg":"hi"`)
	require.Contains(t, buf.String(), `"k":"v"`)
}
