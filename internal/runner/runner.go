// 包 runner 负责单次运行的主流程编排：
// - 抓取名单并并发抓取全部个人页（任一失败即整体失败）
// - 判定当天未发文成员，发送提醒或全员完成公告
// - 全员完成时以当天标记防止重复公告
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ironman-notifier/internal/attendance"
	"ironman-notifier/internal/config"
	"ironman-notifier/internal/logx"
	"ironman-notifier/internal/marker"
	"ironman-notifier/internal/members"
	"ironman-notifier/internal/message"
	"ironman-notifier/internal/model"
	"ironman-notifier/internal/notify"
)

// State 为运行状态；Run 返回结束时（或出错时）所处的状态。
type State string

const (
	StateFetchingRoster   State = "FETCHING_ROSTER"
	StateFetchingProfiles State = "FETCHING_PROFILES"
	StateEvaluating       State = "EVALUATING"
	StateReminding        State = "REMINDING"
	StateCheckingMarker   State = "CHECKING_MARKER"
	StateAlreadyNotified  State = "ALREADY_NOTIFIED"
	StateAnnouncingDone   State = "ANNOUNCING_DONE"
)

// ErrEmptyRoster 在 EMPTY_ROSTER=error 且名单为空时返回。
var ErrEmptyRoster = errors.New("roster has no member links")

// ErrNotDelivered 表示消息没有送达任何目标。
var ErrNotDelivered = errors.New("no message was delivered")

// Scraper 抓取名单与个人页。
type Scraper interface {
	FetchRoster(ctx context.Context) ([]string, error)
	FetchProfile(ctx context.Context, url string) (model.PostStatus, error)
}

// Notifier 依序发送消息。
type Notifier interface {
	Notify(ctx context.Context, msgs []string) (notify.Result, error)
}

type Options struct {
	Campaign    model.Campaign
	AdminID     string
	Concurrency int    // 0 表示不限制
	EmptyRoster string // done|error
	IncludeAll  bool   // 诊断：所有成员都列入提醒
	Now         func() time.Time
}

// Runner 单次运行执行器，持有抓取器/对照表/通知器/标记存储。
type Runner struct {
	scraper  Scraper
	dir      *members.Directory
	notifier Notifier
	markers  marker.Store
	opts     Options
}

func New(s Scraper, dir *members.Directory, n Notifier, m marker.Store, opts Options) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.EmptyRoster == "" {
		opts.EmptyRoster = config.EmptyRosterDone
	}
	return &Runner{scraper: s, dir: dir, notifier: n, markers: m, opts: opts}
}

// Collect 抓取名单与全部个人页，结果与名单顺序一致。
// 任一个人页失败会取消其余请求并返回该错误。
func (r *Runner) Collect(ctx context.Context) ([]model.PostStatus, State, error) {
	urls, err := r.scraper.FetchRoster(ctx)
	if err != nil {
		return nil, StateFetchingRoster, err
	}
	logx.Infof("名单解析到 %d 位成员", len(urls))

	out := make([]model.PostStatus, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	if r.opts.Concurrency > 0 {
		g.SetLimit(r.opts.Concurrency)
	}
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			st, err := r.scraper.FetchProfile(gctx, u)
			if err != nil {
				return err
			}
			logx.Debugf("[%s] 累计 %d 篇：%s", st.Nickname(), st.PostCount, st.Title)
			out[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, StateFetchingProfiles, err
	}
	return out, StateFetchingProfiles, nil
}

// Run 执行一次完整流程。
func (r *Runner) Run(ctx context.Context) (State, error) {
	statuses, st, err := r.Collect(ctx)
	if err != nil {
		return st, err
	}

	if len(statuses) == 0 {
		if r.opts.EmptyRoster == config.EmptyRosterError {
			return StateEvaluating, ErrEmptyRoster
		}
		logx.Warnf("名单为空，与全员已发文无法区分，按全员完成处理（EMPTY_ROSTER=%s）", r.opts.EmptyRoster)
	}

	c := r.opts.Campaign
	now := r.opts.Now()
	today := c.Today(now)
	day := c.Day(today)
	notPosted, posted := attendance.Partition(statuses, c.Start, today, r.opts.IncludeAll)
	logx.Infof("第 %d 天：已发文 %d 位，未发文 %d 位", day, len(posted), len(notPosted))

	if len(notPosted) > 0 {
		msgs := make([]string, 0, len(notPosted)+1)
		msgs = append(msgs, message.Reminder(day, len(notPosted), c.UntilCutoff(now), r.opts.AdminID))
		for _, p := range notPosted {
			msgs = append(msgs, message.MemberLine(p, r.dir))
		}
		if err := r.send(ctx, msgs); err != nil {
			return StateReminding, err
		}
		return StateReminding, nil
	}

	done, err := r.markers.Exists(ctx, day)
	if err != nil {
		return StateCheckingMarker, err
	}
	if done {
		logx.Infof("第 %d 天已发送过全员完成公告，跳过", day)
		return StateAlreadyNotified, nil
	}
	msg := message.Done(day, c.Target, c.DaysLeft(today), r.opts.AdminID)
	if err := r.send(ctx, []string{msg}); err != nil {
		return StateAnnouncingDone, err
	}
	if err := r.markers.Mark(ctx, day); err != nil {
		return StateAnnouncingDone, err
	}
	logx.Infof("已发送全员完成公告并写入标记 %s", marker.Name(day))
	return StateAnnouncingDone, nil
}

// send 发送消息；部分失败只记录，全部失败返回 ErrNotDelivered。
func (r *Runner) send(ctx context.Context, msgs []string) error {
	res, err := r.notifier.Notify(ctx, msgs)
	if err == nil {
		logx.Infof("已发送 %d 条消息", len(msgs))
		return nil
	}
	if res.Delivered == 0 {
		return fmt.Errorf("%w: %w", ErrNotDelivered, err)
	}
	logx.Warnf("部分消息发送失败：成功=%d 失败=%d", res.Delivered, res.Failed)
	return nil
}
