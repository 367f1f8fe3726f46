// 包 rules 提供各届铁人赛页面的解析规则：
// 内置预设以届别（如 2024/2025）为键，可由 rules.yaml 覆盖或扩展。
package rules

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules 表示全部规则集合：键为届别，值为具体规则。
type Rules struct {
	Presets map[string]Preset `yaml:",inline"`
}

// Preset 为单届页面的选择器与文本模式。
// TeamURL 中的 %s 会被替换为团队 ID。
type Preset struct {
	TeamURL        string `yaml:"team_url"`
	MemberLink     string `yaml:"member_link"`
	Username       string `yaml:"username"`
	PostCount      string `yaml:"post_count"`
	PostCountRegex string `yaml:"post_count_regex"`
	TitleDelimiter string `yaml:"title_delimiter"`
}

const (
	memberLink = "body > section > div > div > div > div.col-md-10 > a"
	postCount  = "body > div.container.index-top > div > div > div.board.leftside.profile-main > div.ir-profile-content > div.ir-profile-series > div.qa-list__info.qa-list__info--ironman.subscription-group > span:nth-child(2)"
	username   = "body > div.container.index-top > div > div > div:nth-child(1) > div.profile-header.clearfix > div.profile-header__content > div.profile-header__name"
)

// Builtin 返回内置预设；2024 届以累计篇数计，2025 届以参赛天数计。
func Builtin() *Rules {
	return &Rules{Presets: map[string]Preset{
		"2024": {
			TeamURL:        "https://ithelp.ithome.com.tw/2024ironman/signup/team/%s",
			MemberLink:     memberLink,
			Username:       username,
			PostCount:      postCount,
			PostCountRegex: `共\s*(\d+)\s*篇文章\s*｜`,
			TitleDelimiter: " ::",
		},
		"2025": {
			TeamURL:        "https://ithelp.ithome.com.tw/2025ironman/signup/team/%s",
			MemberLink:     memberLink,
			Username:       username,
			PostCount:      postCount,
			PostCountRegex: `參賽天數\s*(\d+)\s*天`,
			TitleDelimiter: " ::",
		},
	}}
}

// Load 读取 rules.yaml 并叠加到内置预设之上（同名字段非空时覆盖）。
func Load(path string) (*Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	var user map[string]Preset
	if err := yaml.Unmarshal(b, &user); err != nil {
		return nil, fmt.Errorf("unmarshal rules %s: %w", path, err)
	}
	r := Builtin()
	for name, p := range user {
		r.Presets[name] = overlay(r.Presets[name], p)
	}
	return r, nil
}

func overlay(base, over Preset) Preset {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}
	return Preset{
		TeamURL:        pick(base.TeamURL, over.TeamURL),
		MemberLink:     pick(base.MemberLink, over.MemberLink),
		Username:       pick(base.Username, over.Username),
		PostCount:      pick(base.PostCount, over.PostCount),
		PostCountRegex: pick(base.PostCountRegex, over.PostCountRegex),
		TitleDelimiter: pick(base.TitleDelimiter, over.TitleDelimiter),
	}
}

// GetPreset 按名称获取预设（不区分大小写），不存在时回退到 "default"。
func (r *Rules) GetPreset(name string) (Preset, bool) {
	if r == nil || len(r.Presets) == 0 {
		return Preset{}, false
	}
	if p, ok := r.Presets[name]; ok {
		return p, true
	}
	lower := strings.ToLower(name)
	for k, v := range r.Presets {
		if strings.ToLower(k) == lower {
			return v, true
		}
	}
	if p, ok := r.Presets["default"]; ok {
		return p, true
	}
	return Preset{}, false
}

// Compile 校验预设并编译篇数正则，正则须恰有一个捕获组。
func (p Preset) Compile() (*regexp.Regexp, error) {
	if p.TeamURL == "" || p.MemberLink == "" || p.Username == "" || p.PostCount == "" {
		return nil, fmt.Errorf("preset is incomplete: %+v", p)
	}
	re, err := regexp.Compile(p.PostCountRegex)
	if err != nil {
		return nil, fmt.Errorf("compile post_count_regex: %w", err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("post_count_regex must have exactly one group: %q", p.PostCountRegex)
	}
	return re, nil
}

// RosterURL 拼出团队名单页地址。
func (p Preset) RosterURL(teamID string) string {
	return fmt.Sprintf(p.TeamURL, teamID)
}
