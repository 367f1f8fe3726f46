// 包 members 提供暱稱 → 真实姓名/部门/年级的只读对照表（users.json）。
package members

import (
	"fmt"
	"os"

	"github.com/titanous/json5"
)

// Entry 为对照表中的一条成员信息。
type Entry struct {
	Department string `json:"department"`
	Grade      string `json:"grade"`
	RealName   string `json:"realname"`
}

// Directory 以暱稱为键；加载后不再修改，可并发读取。
type Directory struct {
	entries map[string]Entry
}

// New 由内存数据构造对照表（测试与空表使用）。
func New(entries map[string]Entry) *Directory {
	cp := make(map[string]Entry, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	return &Directory{entries: cp}
}

// Load 读取并解析对照表文件，兼容 JSON5（注释、尾逗号）。
func Load(path string) (*Directory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read members %s: %w", path, err)
	}
	var m map[string]Entry
	if err := json5.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal members %s: %w", path, err)
	}
	return &Directory{entries: m}, nil
}

func (d *Directory) Lookup(nickname string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	e, ok := d.entries[nickname]
	return e, ok
}

// RealName 返回真实姓名，未登记时回退为暱稱。
func (d *Directory) RealName(nickname string) string {
	if e, ok := d.Lookup(nickname); ok && e.RealName != "" {
		return e.RealName
	}
	return nickname
}

func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
