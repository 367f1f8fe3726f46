// 包 roster 负责抓取铁人赛页面：
// - FetchRoster：解析团队页得到成员个人页链接
// - FetchProfile：解析个人页得到发文状态（显示名称/篇数/最新标题）
package roster

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ironman-notifier/internal/fetch"
	"ironman-notifier/internal/model"
	"ironman-notifier/internal/rules"
)

// 单页读取上限
const maxPage = 4 << 20

// Scraper 持有 HTTP 客户端与当届解析规则，可并发使用。
type Scraper struct {
	cl        *fetch.Client
	preset    rules.Preset
	countRe   *regexp.Regexp
	rosterURL string
}

// New 校验预设并生成名单页地址。
func New(cl *fetch.Client, preset rules.Preset, teamID string) (*Scraper, error) {
	re, err := preset.Compile()
	if err != nil {
		return nil, err
	}
	return &Scraper{cl: cl, preset: preset, countRe: re, rosterURL: preset.RosterURL(teamID)}, nil
}

func (s *Scraper) RosterURL() string { return s.rosterURL }

// FetchRoster 返回名单页中全部成员链接（文档顺序，已绝对化）。
func (s *Scraper) FetchRoster(ctx context.Context) ([]string, error) {
	doc, err := s.load(ctx, s.rosterURL)
	if err != nil {
		if se := statusOf(err); se != nil {
			return nil, &RosterFetchError{URL: s.rosterURL, StatusCode: se.StatusCode, Body: se.Body, err: err}
		}
		return nil, fmt.Errorf("fetch roster %s: %w", s.rosterURL, err)
	}
	var out []string
	doc.Find(s.preset.MemberLink).Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && strings.TrimSpace(href) != "" {
			out = append(out, abs(s.rosterURL, href))
		}
	})
	return out, nil
}

// FetchProfile 抓取并解析单个成员个人页。
func (s *Scraper) FetchProfile(ctx context.Context, profileURL string) (model.PostStatus, error) {
	doc, err := s.load(ctx, profileURL)
	if err != nil {
		if se := statusOf(err); se != nil {
			return model.PostStatus{}, &ProfileFetchError{URL: profileURL, StatusCode: se.StatusCode, Body: se.Body, err: err}
		}
		return model.PostStatus{}, fmt.Errorf("fetch profile %s: %w", profileURL, err)
	}
	return s.parseProfile(doc, profileURL)
}

func (s *Scraper) parseProfile(doc *goquery.Document, profileURL string) (model.PostStatus, error) {
	name := doc.Find(s.preset.Username).First()
	if name.Length() == 0 {
		return model.PostStatus{}, &ParseError{URL: profileURL, Field: "username", Reason: "selector not found"}
	}
	username := strings.TrimSpace(strings.ReplaceAll(name.Text(), "\n", ""))
	if username == "" {
		return model.PostStatus{}, &ParseError{URL: profileURL, Field: "username", Reason: "empty text"}
	}

	countEl := doc.Find(s.preset.PostCount).First()
	if countEl.Length() == 0 {
		return model.PostStatus{}, &ParseError{URL: profileURL, Field: "post_count", Reason: "selector not found"}
	}
	m := s.countRe.FindStringSubmatch(countEl.Text())
	if m == nil {
		return model.PostStatus{}, &ParseError{URL: profileURL, Field: "post_count", Reason: fmt.Sprintf("pattern %q not matched", s.countRe)}
	}
	count, err := strconv.Atoi(m[1])
	if err != nil {
		return model.PostStatus{}, &ParseError{URL: profileURL, Field: "post_count", Reason: err.Error()}
	}

	titleEl := doc.Find("title").First()
	if titleEl.Length() == 0 {
		return model.PostStatus{}, &ParseError{URL: profileURL, Field: "title", Reason: "missing <title>"}
	}
	title := titleEl.Text()
	if d := s.preset.TitleDelimiter; d != "" {
		title, _, _ = strings.Cut(title, d)
	}

	return model.PostStatus{
		Username:  username,
		PostCount: count,
		Title:     strings.TrimSpace(title),
		URL:       profileURL,
	}, nil
}

func (s *Scraper) load(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := s.cl.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPage))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", pageURL, err)
	}
	return doc, nil
}

// abs 将相对链接转换为绝对 URL。
func abs(base, ref string) string {
	ref = strings.TrimSpace(ref)
	bu, err := url.Parse(base)
	if err != nil {
		return ref
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return bu.ResolveReference(ru).String()
}
