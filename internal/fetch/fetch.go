// 包 fetch 封装抓取用 HTTP 客户端（代理/超时/固定请求头），不做重试。
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// 错误响应体保留的上限
const maxErrorBody = 4 << 10

// StatusError 表示非 2xx 响应，携带状态码与（截断的）响应体。
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: http status %s", e.URL, e.Status)
}

// Client 为带固定请求头的 HTTP 客户端。
type Client struct {
	http    *http.Client
	headers http.Header
}

// Options 为客户端构造参数。
type Options struct {
	ProxyHTTP  string
	ProxyHTTPS string
	Timeout    time.Duration
	UserAgent  string
	Referer    string
}

// New 创建客户端，支持 http/https 代理与基础超时配置。
func New(opts Options) *Client {
	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			if req.URL.Scheme == "https" && opts.ProxyHTTPS != "" {
				return url.Parse(opts.ProxyHTTPS)
			}
			if req.URL.Scheme == "http" && opts.ProxyHTTP != "" {
				return url.Parse(opts.ProxyHTTP)
			}
			return http.ProxyFromEnvironment(req)
		},
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	h := http.Header{}
	if opts.UserAgent != "" {
		h.Set("User-Agent", opts.UserAgent)
	}
	if opts.Referer != "" {
		h.Set("Referer", opts.Referer)
	}
	return &Client{
		http:    &http.Client{Transport: transport, Timeout: opts.Timeout},
		headers: h,
	}
}

// Get 发起一次 GET；2xx 返回响应（调用方负责关闭 Body），否则返回 *StatusError。
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}
	return resp, nil
}
