// 包 config 负责加载与校验应用配置（settings.yaml + 环境变量覆盖），
// 对外提供结构体 Config 及默认值/合法性校验。
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"ironman-notifier/internal/model"
)

// 空名单处理策略
const (
	EmptyRosterDone  = "done"
	EmptyRosterError = "error"
)

// 标记存储后端
const (
	MarkerFile   = "file"
	MarkerSQLite = "sqlite"
)

type Config struct {
	TeamID      string   `yaml:"TEAM_ID"`
	Campaign    Campaign `yaml:"CAMPAIGN"`
	Members     string   `yaml:"MEMBERS"`
	Notify      Notify   `yaml:"NOTIFY"`
	Marker      Marker   `yaml:"MARKER"`
	Snapshot    Snapshot `yaml:"SNAPSHOT"`
	HTTP        HTTP     `yaml:"HTTP"`
	Concurrency int      `yaml:"CONCURRENCY"` // 0 表示不限制
	EmptyRoster string   `yaml:"EMPTY_ROSTER"`
	LogLevel    string   `yaml:"LOG_LEVEL"`
	LogFormat   string   `yaml:"LOG_FORMAT"` // text|json|pretty
	LogLocale   string   `yaml:"LOG_LOCALE"` // zh-CN|zh-TW|en
	LogColor    string   `yaml:"LOG_COLOR"`  // auto|always|never
}

type Campaign struct {
	Start    string `yaml:"start"` // 2006-01-02
	End      string `yaml:"end"`
	Target   int    `yaml:"target"`
	Edition  string `yaml:"edition"` // 缺省取开赛年份
	Timezone string `yaml:"timezone"`
}

type Notify struct {
	AdminID  string   `yaml:"admin_id"`
	Discord  Discord  `yaml:"discord"`
	Telegram Telegram `yaml:"telegram"`
}

type Discord struct {
	Webhooks []Webhook `yaml:"webhooks"`
	Username string    `yaml:"username"`
	BaseURL  string    `yaml:"base_url"`
}

type Webhook struct {
	ID    string `yaml:"id"`
	Token string `yaml:"token"`
}

type Telegram struct {
	Token     string   `yaml:"token"`
	ChatIDs   []string `yaml:"chat_ids"`
	ParseMode string   `yaml:"parse_mode"`
	Endpoint  string   `yaml:"endpoint"` // 形如 https://api.telegram.org/bot%s/%s
}

type Marker struct {
	Backend string `yaml:"backend"` // file|sqlite
	Dir     string `yaml:"dir"`
	DSN     string `yaml:"dsn"`
}

type Snapshot struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // markdown|json
}

type HTTP struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	Referer   string        `yaml:"referer"`
	ProxyHTTP string        `yaml:"proxy_http"`
	ProxyTLS  string        `yaml:"proxy_https"`
}

// Defaults 返回缺省配置，由 Validate 通过 mergo 合并到未填写的字段上。
func Defaults() Config {
	return Config{
		Campaign: Campaign{Timezone: "Asia/Taipei"},
		Members:  "users.json",
		Notify: Notify{
			Discord:  Discord{Username: "鐵人賽Bot", BaseURL: "https://discord.com"},
			Telegram: Telegram{Endpoint: "https://api.telegram.org/bot%s/%s"},
		},
		Marker:      Marker{Backend: MarkerFile, Dir: ".", DSN: "./markers.db"},
		Snapshot:    Snapshot{Path: "user_post_status.md", Format: "markdown"},
		HTTP:        HTTP{Timeout: 25 * time.Second, Referer: "https://ithelp.ithome.com.tw/notifications", UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36"},
		EmptyRoster: EmptyRosterDone,
		LogFormat:   "pretty",
		LogLocale:   "zh-TW",
		LogColor:    "auto",
	}
}

// Load 读取 YAML，应用环境变量覆盖后校验并填充默认值。
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// ApplyEnv 用环境变量覆盖密钥与标识类字段，便于在 cron 环境中注入。
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("IRONMAN_TEAM_ID"); v != "" {
		c.TeamID = v
	}
	if v := getenv("DISCORD_ADMIN_ID"); v != "" {
		c.Notify.AdminID = v
	}
	id, token := getenv("DISCORD_WEBHOOK_ID"), getenv("DISCORD_WEBHOOK_TOKEN")
	if id != "" && token != "" {
		wh := Webhook{ID: id, Token: token}
		if len(c.Notify.Discord.Webhooks) == 0 {
			c.Notify.Discord.Webhooks = []Webhook{wh}
		} else {
			c.Notify.Discord.Webhooks[0] = wh
		}
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Notify.Telegram.Token = v
	}
	if v := getenv("TELEGRAM_CHAT_IDS"); v != "" {
		var ids []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				ids = append(ids, s)
			}
		}
		c.Notify.Telegram.ChatIDs = ids
	}
}

func (c *Config) Validate() error {
	if err := mergo.Merge(c, Defaults()); err != nil {
		return fmt.Errorf("merge defaults: %w", err)
	}
	var errs []error
	if strings.TrimSpace(c.TeamID) == "" {
		errs = append(errs, errors.New("TEAM_ID is required"))
	}
	if c.Members == "" {
		errs = append(errs, errors.New("MEMBERS is required"))
	}
	for i, wh := range c.Notify.Discord.Webhooks {
		if wh.ID == "" || wh.Token == "" {
			errs = append(errs, fmt.Errorf("NOTIFY.discord.webhooks[%d]: id and token are required", i))
		}
	}
	tg := c.Notify.Telegram
	if (tg.Token == "") != (len(tg.ChatIDs) == 0) {
		errs = append(errs, errors.New("NOTIFY.telegram: token and chat_ids must be set together"))
	}
	for _, id := range tg.ChatIDs {
		if !strings.HasPrefix(id, "@") {
			if _, err := strconv.ParseInt(id, 10, 64); err != nil {
				errs = append(errs, fmt.Errorf("NOTIFY.telegram.chat_ids: invalid chat id %q", id))
			}
		}
	}
	if _, err := c.CampaignModel(); err != nil {
		errs = append(errs, err)
	}
	if c.Concurrency < 0 {
		errs = append(errs, errors.New("CONCURRENCY must be >= 0"))
	}
	switch c.EmptyRoster {
	case EmptyRosterDone, EmptyRosterError:
	default:
		errs = append(errs, fmt.Errorf("unsupported EMPTY_ROSTER: %s", c.EmptyRoster))
	}
	switch c.Marker.Backend {
	case MarkerFile, MarkerSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported MARKER.backend: %s", c.Marker.Backend))
	}
	switch c.Snapshot.Format {
	case "markdown", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported SNAPSHOT.format: %s", c.Snapshot.Format))
	}
	if c.Campaign.Edition == "" {
		if t, err := time.Parse(time.DateOnly, c.Campaign.Start); err == nil {
			c.Campaign.Edition = strconv.Itoa(t.Year())
		}
	}
	return errors.Join(errs...)
}

// RequireDestination 校验至少配置了一个通知目标；仅 notify 模式需要。
func (c *Config) RequireDestination() error {
	if len(c.Notify.Discord.Webhooks) == 0 && c.Notify.Telegram.Token == "" {
		return errors.New("NOTIFY: at least one discord webhook or telegram chat is required")
	}
	return nil
}

// CampaignModel 将 CAMPAIGN 段解析为 model.Campaign。
func (c *Config) CampaignModel() (model.Campaign, error) {
	loc, err := time.LoadLocation(c.Campaign.Timezone)
	if err != nil {
		return model.Campaign{}, fmt.Errorf("CAMPAIGN.timezone %q: %w", c.Campaign.Timezone, err)
	}
	start, err := time.ParseInLocation(time.DateOnly, c.Campaign.Start, loc)
	if err != nil {
		return model.Campaign{}, fmt.Errorf("CAMPAIGN.start %q: %w", c.Campaign.Start, err)
	}
	end, err := time.ParseInLocation(time.DateOnly, c.Campaign.End, loc)
	if err != nil {
		return model.Campaign{}, fmt.Errorf("CAMPAIGN.end %q: %w", c.Campaign.End, err)
	}
	if end.Before(start) {
		return model.Campaign{}, errors.New("CAMPAIGN.start must not be after CAMPAIGN.end")
	}
	if c.Campaign.Target < 0 {
		return model.Campaign{}, errors.New("CAMPAIGN.target must be >= 0")
	}
	return model.Campaign{Start: start, End: end, Target: c.Campaign.Target, Location: loc}, nil
}
