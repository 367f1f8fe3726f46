// 包 export 负责快照模式导出：将全部成员的发文状态写为 markdown 表格或 JSON。
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"ironman-notifier/internal/model"
)

const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Stats 为快照附带的统计信息（仅 JSON 格式输出）。
type Stats struct {
	Day         int       `json:"day"`
	Total       int       `json:"members_total"`
	PostedToday int       `json:"posted_today"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot 为 JSON 格式的完整导出内容。
type Snapshot struct {
	Stats   Stats              `json:"stats"`
	Members []model.PostStatus `json:"members"`
}

// Markdown 渲染 username/post_count/title/url 四列的 markdown 表格，行序与输入一致。
func Markdown(statuses []model.PostStatus) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"username", "post_count", "title", "url"})
	for _, s := range statuses {
		tw.AppendRow(table.Row{s.Username, s.PostCount, s.Title, s.URL})
	}
	return tw.RenderMarkdown() + "\n"
}

// Write 按 format 将快照写入 w。
func Write(w io.Writer, format string, statuses []model.PostStatus, st Stats) error {
	switch format {
	case FormatMarkdown, "":
		if _, err := io.WriteString(w, Markdown(statuses)); err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}
		return nil
	case FormatJSON:
		if statuses == nil {
			statuses = []model.PostStatus{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(Snapshot{Stats: st, Members: statuses}); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported snapshot format: %s", format)
	}
}

// ToFile 覆盖写入 path；path 为 "-" 时写到标准输出。
func ToFile(path, format string, statuses []model.PostStatus, st Stats) error {
	if path == "-" {
		return Write(os.Stdout, format, statuses, st)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := Write(f, format, statuses, st); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
