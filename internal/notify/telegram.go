package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramBot 在首次发送时才初始化（getMe 校验 token），多个 chat 共享同一实例。
// 初始化失败只影响 Telegram 目标本身。
type telegramBot struct {
	token    string
	endpoint string
	client   *http.Client

	once sync.Once
	bot  *tgbotapi.BotAPI
	err  error
}

func (b *telegramBot) get() (*tgbotapi.BotAPI, error) {
	b.once.Do(func() {
		bot, err := tgbotapi.NewBotAPIWithClient(b.token, b.endpoint, b.client)
		if err != nil {
			b.err = fmt.Errorf("telegram bot: %w", redact(err, b.token))
			return
		}
		b.bot = bot
	})
	return b.bot, b.err
}

// Telegram 向单个 chat（数字 ID 或 @频道）发送消息。
type Telegram struct {
	bot       *telegramBot
	chat      string
	parseMode string
}

// NewTelegram 为每个 chat 返回一个目标；Bot 延迟到首次发送时初始化。
func NewTelegram(token, endpoint, parseMode string, chatIDs []string, timeout time.Duration) []Destination {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot := &telegramBot{token: token, endpoint: endpoint, client: &http.Client{Timeout: timeout}}
	out := make([]Destination, 0, len(chatIDs))
	for _, id := range chatIDs {
		out = append(out, &Telegram{bot: bot, chat: strings.TrimSpace(id), parseMode: parseMode})
	}
	return out
}

func (t *Telegram) Name() string { return "telegram:" + t.chat }

func (t *Telegram) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return &NotificationError{Destination: t.Name(), Err: err}
	}
	bot, err := t.bot.get()
	if err != nil {
		return &NotificationError{Destination: t.Name(), Err: err}
	}
	var msg tgbotapi.MessageConfig
	if strings.HasPrefix(t.chat, "@") {
		msg = tgbotapi.NewMessageToChannel(t.chat, text)
	} else {
		id, err := strconv.ParseInt(t.chat, 10, 64)
		if err != nil {
			return &NotificationError{Destination: t.Name(), Err: fmt.Errorf("invalid chat id: %w", err)}
		}
		msg = tgbotapi.NewMessage(id, text)
	}
	msg.ParseMode = t.parseMode
	if _, err := bot.Send(msg); err != nil {
		ne := &NotificationError{Destination: t.Name(), Err: redact(err, t.bot.token)}
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			ne.StatusCode = apiErr.Code
			ne.Body = apiErr.Message
		}
		return ne
	}
	return nil
}
