// 包 logx 是对标准库 slog 的薄封装：
// - 支持级别/格式/语言/颜色配置
// - pretty 输出带本地化等级标签（zh-CN / zh-TW / en）
// - 通过 Debugf/Infof/Warnf/Errorf 暴露，业务层不直接依赖 slog
package logx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Options 为日志器构造参数，对应 settings.yaml 中的 LOG_* 字段。
type Options struct {
	Level  string
	Format string // text|json|pretty
	Locale string // zh-CN|zh-TW|en
	Color  string // auto|always|never
}

// Init 初始化全局日志器，输出到 stdout。
func Init(opts Options) {
	slog.SetDefault(New(os.Stdout, opts))
}

// New 创建写入 w 的日志器（测试中可传入 bytes.Buffer）。
func New(w io.Writer, opts Options) *slog.Logger {
	lv := parseLevel(opts.Level)
	hopts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	case "text":
		h = slog.NewTextHandler(w, hopts)
	default:
		h = NewPrettyHandler(w, lv, opts.Locale, opts.Color)
	}
	return slog.New(h)
}

// silent 高于任何实际等级，用于关闭输出。
const silent slog.Level = 100

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none", "silent", "off":
		return silent
	default:
		return slog.LevelInfo
	}
}

func Debugf(format string, v ...any) { slog.Debug(fmt.Sprintf(format, v...)) }
func Infof(format string, v ...any)  { slog.Info(fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...any)  { slog.Warn(fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...any) { slog.Error(fmt.Sprintf(format, v...)) }

// PrettyHandler 面向人读的单行输出：时间 等级 消息 k=v...
type PrettyHandler struct {
	w      io.Writer
	level  slog.Level
	labels map[slog.Level]string
	color  bool
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string // WithGroup 累积的键前缀
}

func NewPrettyHandler(w io.Writer, lv slog.Level, locale, colorMode string) *PrettyHandler {
	if w == nil {
		w = os.Stdout
	}
	return &PrettyHandler{
		w:      w,
		level:  lv,
		labels: labelsFor(locale),
		color:  shouldColor(w, colorMode),
		mu:     &sync.Mutex{},
	}
}

func (h *PrettyHandler) Enabled(_ context.Context, l slog.Level) bool {
	return h.level < silent && l >= h.level
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.WriteString(ts.Format("2006-01-02 15:04:05"))
	buf.WriteByte(' ')
	lvl, ok := h.labels[r.Level]
	if !ok {
		lvl = fmt.Sprintf("[L%d]", r.Level)
	}
	if h.color {
		lvl = colorize(lvl, r.Level)
	}
	buf.WriteString(lvl)
	buf.WriteByte(' ')
	buf.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	buf.WriteString(a.Value.Resolve().String())
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	cp.attrs = append(cp.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		cp.attrs = append(cp.attrs, a)
	}
	return &cp
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	cp.prefix = h.prefix + name + "."
	return &cp
}

func labelsFor(locale string) map[slog.Level]string {
	switch l := strings.ToLower(strings.TrimSpace(locale)); {
	case l == "zh-tw" || l == "zh-hant":
		return map[slog.Level]string{
			slog.LevelDebug: "[除錯]",
			slog.LevelInfo:  "[資訊]",
			slog.LevelWarn:  "[警告]",
			slog.LevelError: "[錯誤]",
		}
	case strings.HasPrefix(l, "zh") || l == "":
		return map[slog.Level]string{
			slog.LevelDebug: "[调试]",
			slog.LevelInfo:  "[信息]",
			slog.LevelWarn:  "[警告]",
			slog.LevelError: "[错误]",
		}
	default:
		return map[slog.Level]string{
			slog.LevelDebug: "[DEBUG]",
			slog.LevelInfo:  "[INFO]",
			slog.LevelWarn:  "[WARN]",
			slog.LevelError: "[ERROR]",
		}
	}
}

// shouldColor 遵循 LOG_COLOR 与 NO_COLOR；auto 时仅在终端上启用。
func shouldColor(w io.Writer, mode string) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "auto", "":
		if f, ok := w.(*os.File); ok {
			if fi, err := f.Stat(); err == nil {
				return fi.Mode()&os.ModeCharDevice != 0
			}
		}
	}
	return false
}

func colorize(s string, l slog.Level) string {
	code := "0"
	switch l {
	case slog.LevelDebug:
		code = "90"
	case slog.LevelInfo:
		code = "36"
	case slog.LevelWarn:
		code = "33"
	case slog.LevelError:
		code = "31"
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}
