// 包 notify 负责把消息依序发送到一个或多个聊天目标（Discord Webhook / Telegram Bot）。
// 单个目标失败只记录并继续，不中断后续目标与后续消息，也不重试。
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ironman-notifier/internal/config"
	"ironman-notifier/internal/logx"
)

// Destination 为单个发送目标。
type Destination interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// NotificationError 表示某个目标拒绝或未能接收消息。
type NotificationError struct {
	Destination string
	StatusCode  int
	Body        string
	Err         error
}

func (e *NotificationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("notify %s: status %d: %s", e.Destination, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("notify %s: %v", e.Destination, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// redactedError 为去除密钥后的错误文本，Unwrap 只暴露底层原因。
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// redact 将错误信息中的 secret 替换为 ***；*url.Error 带有含 token 的完整请求地址。
func redact(err error, secret string) error {
	if err == nil || secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	var cause error
	var ue *url.Error
	if errors.As(err, &ue) {
		cause = ue.Err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), secret, "***"), err: cause}
}

// Result 统计一次 Notify 的投递次数（消息数 × 目标数）。
type Result struct {
	Delivered int
	Failed    int
}

type Notifier struct {
	dests []Destination
}

func New(dests ...Destination) *Notifier {
	return &Notifier{dests: dests}
}

// Notify 按顺序逐条、逐目标发送；返回的 error 为全部失败的合并。
func (n *Notifier) Notify(ctx context.Context, msgs []string) (Result, error) {
	var (
		res  Result
		errs []error
	)
	for i, msg := range msgs {
		for _, d := range n.dests {
			if err := ctx.Err(); err != nil {
				return res, errors.Join(append(errs, err)...)
			}
			if err := d.Send(ctx, msg); err != nil {
				res.Failed++
				errs = append(errs, err)
				logx.Warnf("发送失败：目标=%s 消息=%d/%d 错误=%v", d.Name(), i+1, len(msgs), err)
				continue
			}
			res.Delivered++
		}
	}
	return res, errors.Join(errs...)
}

// FromConfig 根据 NOTIFY 配置构造全部目标；Telegram 每个 chat id 为一个目标。
func FromConfig(c config.Notify, timeout time.Duration) ([]Destination, error) {
	var out []Destination
	for _, wh := range c.Discord.Webhooks {
		out = append(out, NewDiscord(c.Discord.BaseURL, wh.ID, wh.Token, c.Discord.Username, timeout))
	}
	if c.Telegram.Token != "" {
		out = append(out, NewTelegram(c.Telegram.Token, c.Telegram.Endpoint, c.Telegram.ParseMode, c.Telegram.ChatIDs, timeout)...)
	}
	if len(out) == 0 {
		return nil, errors.New("no notification destination configured")
	}
	return out, nil
}
