// 包 attendance 根据累计篇数推断成员当天是否已发文。
//
// 假设成员从开赛起每天恰好发一篇：开赛日 + 篇数 == 今天，即视为已跟上进度。
// 比较为严格相等：篇数超前（同一天多发）的成员同样不满足条件。
package attendance

import (
	"time"

	"ironman-notifier/internal/model"
)

// HasPostedToday 判断 start + postCount 天是否正好落在 today（按日历日比较）。
func HasPostedToday(postCount int, start, today time.Time) bool {
	return model.DaysBetween(start, today) == postCount
}

// Partition 按输入顺序拆分为未发文与已发文两组；includeAll 时全部归入未发文（诊断用）。
func Partition(statuses []model.PostStatus, start, today time.Time, includeAll bool) (notPosted, posted []model.PostStatus) {
	for _, s := range statuses {
		if includeAll || !HasPostedToday(s.PostCount, start, today) {
			notPosted = append(notPosted, s)
			continue
		}
		posted = append(posted, s)
	}
	return notPosted, posted
}
