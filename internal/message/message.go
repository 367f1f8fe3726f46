// 包 message 负责生成发送到聊天频道的文字（Discord 风格 Markdown）。
package message

import (
	"fmt"
	"time"

	"ironman-notifier/internal/members"
	"ironman-notifier/internal/model"
)

// MemberLine 生成单个成员的提醒行；对照表中没有的暱稱只显示暱稱与标题。
func MemberLine(p model.PostStatus, dir *members.Directory) string {
	nick := p.Nickname()
	e, ok := dir.Lookup(nick)
	if !ok {
		return fmt.Sprintf("- **%s** %s", nick, p.Title)
	}
	return fmt.Sprintf("- **%s(%s Team, %s)**: [%s](%s)", dir.RealName(nick), e.Department, e.Grade, p.Title, p.URL)
}

// Reminder 生成提醒标题：第几天、未发文人数与距截止的剩余时间。
func Reminder(day, notPosted int, remain time.Duration, adminID string) string {
	return fmt.Sprintf("# 第%d天\n## %s今天還沒有發文的成員有**%d**位: 距離截止時間還有 %s",
		day, mention(adminID), notPosted, Clock(remain))
}

// Done 生成全员已发文的庆祝消息。
func Done(day, target, daysLeft int, adminID string) string {
	m := mention(adminID)
	if m != "" {
		m += " "
	}
	return fmt.Sprintf("# 第%d天\n%s今天所有成員都有發文了！目標是%d篇！(還剩下%d天)", day, m, target, daysLeft)
}

// Clock 以 "HH 小時 MM 分 SS 秒" 表示时长（不足一秒舍去）。
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d / time.Second)
	return fmt.Sprintf("%02d 小時 %02d 分 %02d 秒", s/3600, s%3600/60, s%60)
}

func mention(adminID string) string {
	if adminID == "" {
		return ""
	}
	return "<@" + adminID + ">"
}
