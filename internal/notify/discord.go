package notify

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Discord 通过 Webhook 发送消息。
type Discord struct {
	client   *resty.Client
	id       string
	token    string
	path     string
	username string
}

type discordPayload struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

func NewDiscord(baseURL, id, token, username string, timeout time.Duration) *Discord {
	if baseURL == "" {
		baseURL = "https://discord.com"
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Discord{
		client:   c,
		id:       id,
		token:    token,
		path:     "/api/webhooks/" + id + "/" + token,
		username: username,
	}
}

func (d *Discord) Name() string { return "discord:" + d.id }

func (d *Discord) Send(ctx context.Context, text string) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(discordPayload{Content: text, Username: d.username}).
		Post(d.path)
	if err != nil {
		return &NotificationError{Destination: d.Name(), Err: redact(err, d.token)}
	}
	if !resp.IsSuccess() {
		return &NotificationError{Destination: d.Name(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
