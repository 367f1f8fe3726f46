// 命令行入口：
// - 解析 flags 与 settings.yaml/rules.yaml/users.json
// - 初始化日志、HTTP 客户端、通知目标与标记存储
// - notify（默认）发送提醒/公告；snapshot 导出全员状态；roster 打印名单后退出
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ironman-notifier/internal/attendance"
	"ironman-notifier/internal/config"
	"ironman-notifier/internal/export"
	"ironman-notifier/internal/fetch"
	"ironman-notifier/internal/logx"
	"ironman-notifier/internal/marker"
	"ironman-notifier/internal/members"
	"ironman-notifier/internal/model"
	"ironman-notifier/internal/notify"
	"ironman-notifier/internal/roster"
	"ironman-notifier/internal/rules"
	"ironman-notifier/internal/runner"
)

var (
	configPath  string
	rulesPath   string
	membersPath string

	includeAll     bool
	snapshotOut    string
	snapshotFormat string
)

var rootCmd = &cobra.Command{
	Use:           "ironman-notifier",
	Short:         "iThome 鐵人賽團隊每日發文提醒",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runNotify,
}

var notifyCmd = &cobra.Command{
	Use:   "notify [--all]",
	Short: "檢查今日發文並發送提醒或全員完成公告",
	RunE:  runNotify,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [--out path] [--format markdown|json]",
	Short: "抓取全部成員並輸出發文狀態表",
	RunE:  runSnapshot,
}

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "列出名單頁解析到的成員連結後退出",
	RunE:  runRoster,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "settings.yaml", "path to settings.yaml")
	pf.StringVar(&rulesPath, "rules", "rules.yaml", "path to rules.yaml (optional)")
	pf.StringVar(&membersPath, "members", "", "path to users.json (overrides MEMBERS)")

	rootCmd.Flags().BoolVar(&includeAll, "all", false, "list every member in the reminder (diagnostic)")
	notifyCmd.Flags().BoolVar(&includeAll, "all", false, "list every member in the reminder (diagnostic)")
	snapshotCmd.Flags().StringVar(&snapshotOut, "out", "", "output path, '-' for stdout (default SNAPSHOT.path)")
	snapshotCmd.Flags().StringVar(&snapshotFormat, "format", "", "markdown|json (default SNAPSHOT.format)")

	rootCmd.AddCommand(notifyCmd, snapshotCmd, rosterCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// app 为各子命令共用的已初始化依赖。
type app struct {
	cfg      *config.Config
	campaign model.Campaign
	scraper  *roster.Scraper
	dir      *members.Directory
}

func setup() (*app, error) {
	// 1) 加载配置：settings.yaml + 环境变量
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if membersPath != "" {
		cfg.Members = membersPath
	}
	campaign, err := cfg.CampaignModel()
	if err != nil {
		return nil, err
	}
	// 2) 初始化日志：级别/格式/语言/颜色
	logx.Init(logx.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Locale: cfg.LogLocale, Color: cfg.LogColor})

	// 3) 选择器预设：rules.yaml 可选，缺失时使用内置预设
	rl := rules.Builtin()
	if rulesPath != "" {
		r, err := rules.Load(rulesPath)
		switch {
		case err == nil:
			rl = r
		case errors.Is(err, fs.ErrNotExist):
			logx.Debugf("未找到 %s，使用内置选择器预设", rulesPath)
		default:
			return nil, err
		}
	}
	preset, ok := rl.GetPreset(cfg.Campaign.Edition)
	if !ok {
		return nil, fmt.Errorf("no selector preset for edition %q", cfg.Campaign.Edition)
	}

	// 4) HTTP 客户端与抓取器
	cl := fetch.New(fetch.Options{
		ProxyHTTP:  cfg.HTTP.ProxyHTTP,
		ProxyHTTPS: cfg.HTTP.ProxyTLS,
		Timeout:    cfg.HTTP.Timeout,
		UserAgent:  cfg.HTTP.UserAgent,
		Referer:    cfg.HTTP.Referer,
	})
	sc, err := roster.New(cl, preset, cfg.TeamID)
	if err != nil {
		return nil, err
	}

	// 5) 成员对照表
	dir, err := members.Load(cfg.Members)
	if err != nil {
		return nil, err
	}
	logx.Debugf("成员对照表共 %d 条", dir.Len())
	return &app{cfg: cfg, campaign: campaign, scraper: sc, dir: dir}, nil
}

func (a *app) runner(n runner.Notifier, m marker.Store) *runner.Runner {
	return runner.New(a.scraper, a.dir, n, m, runner.Options{
		Campaign:    a.campaign,
		AdminID:     a.cfg.Notify.AdminID,
		Concurrency: a.cfg.Concurrency,
		EmptyRoster: a.cfg.EmptyRoster,
		IncludeAll:  includeAll,
	})
}

func runNotify(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	if err := a.cfg.RequireDestination(); err != nil {
		return err
	}
	dests, err := notify.FromConfig(a.cfg.Notify, a.cfg.HTTP.Timeout)
	if err != nil {
		return err
	}
	store, err := marker.Open(a.cfg.Marker)
	if err != nil {
		return err
	}
	defer store.Close()

	r := a.runner(notify.New(dests...), store)
	logx.Infof("开始检查：团队=%s 目标数=%d", a.cfg.TeamID, len(dests))
	t0 := time.Now()
	st, err := r.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s: %w", st, err)
	}
	logx.Infof("完成：状态=%s 耗时=%s", st, time.Since(t0).Round(time.Millisecond))
	return nil
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	statuses, st, err := a.runner(nil, nil).Collect(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s: %w", st, err)
	}

	c := a.campaign
	now := time.Now()
	today := c.Today(now)
	_, posted := attendance.Partition(statuses, c.Start, today, false)
	stats := export.Stats{Day: c.Day(today), Total: len(statuses), PostedToday: len(posted), UpdatedAt: now}

	out, format := a.cfg.Snapshot.Path, a.cfg.Snapshot.Format
	if snapshotOut != "" {
		out = snapshotOut
	}
	if snapshotFormat != "" {
		format = snapshotFormat
	}
	if err := export.ToFile(out, format, statuses, stats); err != nil {
		return err
	}
	logx.Infof("已导出 %d 位成员到 %s", len(statuses), out)
	return nil
}

func runRoster(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	urls, err := a.scraper.FetchRoster(cmd.Context())
	if err != nil {
		return err
	}
	logx.Infof("%s 解析到 %d 位成员", a.scraper.RosterURL(), len(urls))
	for _, u := range urls {
		fmt.Fprintln(cmd.OutOrStdout(), u)
	}
	if len(urls) == 0 {
		logx.Warnf("名单为空，请检查 TEAM_ID 与 rules.yaml 中的 member_link 选择器。")
	}
	return nil
}
