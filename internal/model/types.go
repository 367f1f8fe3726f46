// 包 model 定义抓取与通知共用的数据模型（发文状态/赛程）。
package model

import (
	"regexp"
	"strings"
	"time"
)

// PostStatus 为单个成员个人页解析后的发文状态，创建后不再修改。
type PostStatus struct {
	Username  string `json:"username"` // 原始 "名称 (暱稱)" 形式
	PostCount int    `json:"post_count"`
	Title     string `json:"title"`
	URL       string `json:"url"`
}

// 固定两段式：NAME (NICKNAME)
var displayNameRe = regexp.MustCompile(`([\p{L}\p{N}_.\-]+)\s*\(([\p{L}\p{N}_.\-]+)\)`)

// Nickname 从显示名称中提取括号内的暱稱；格式不符时回退为整段显示名称。
func (p PostStatus) Nickname() string {
	if m := displayNameRe.FindStringSubmatch(p.Username); len(m) == 3 {
		return m[2]
	}
	return strings.TrimSpace(p.Username)
}

// Campaign 为一届铁人赛的固定赛程：起止日期与目标篇数。
// Start/End 为 Location 时区下的零点。
type Campaign struct {
	Start    time.Time
	End      time.Time
	Target   int
	Location *time.Location
}

// Today 返回 now 在赛程时区下的日期（零点）。
func (c Campaign) Today(now time.Time) time.Time {
	return DateOf(now.In(c.loc()))
}

// Day 返回 today 相对起始日的天数（第 N 天）。
func (c Campaign) Day(today time.Time) int {
	return DaysBetween(c.Start, today)
}

// DaysLeft 返回 today 距离结束日的天数。
func (c Campaign) DaysLeft(today time.Time) int {
	return DaysBetween(today, c.End)
}

// UntilCutoff 返回距离当日 23:59:59 截止的剩余时间，已过截止则为 0。
func (c Campaign) UntilCutoff(now time.Time) time.Duration {
	local := now.In(c.loc())
	y, m, d := local.Date()
	cutoff := time.Date(y, m, d, 23, 59, 59, 0, c.loc())
	if rem := cutoff.Sub(local); rem > 0 {
		return rem
	}
	return 0
}

func (c Campaign) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// DateOf 截断到所在时区的零点。
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween 按日历日计算 to - from 的天数，不受夏令时与时区偏移影响。
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
