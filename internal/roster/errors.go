package roster

import (
	"errors"
	"fmt"

	"ironman-notifier/internal/fetch"
)

// RosterFetchError 表示团队名单页返回非 2xx。
type RosterFetchError struct {
	URL        string
	StatusCode int
	Body       string
	err        error
}

func (e *RosterFetchError) Error() string {
	return fmt.Sprintf("fetch roster %s: status %d", e.URL, e.StatusCode)
}

func (e *RosterFetchError) Unwrap() error { return e.err }

// ProfileFetchError 表示成员个人页返回非 2xx。
type ProfileFetchError struct {
	URL        string
	StatusCode int
	Body       string
	err        error
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("fetch profile %s: status %d", e.URL, e.StatusCode)
}

func (e *ProfileFetchError) Unwrap() error { return e.err }

// ParseError 表示页面缺少预期的元素或文本模式。
type ParseError struct {
	URL    string
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s: %s", e.URL, e.Field, e.Reason)
}

// IsParseError 判断 err 链中是否含 *ParseError。
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// statusOf 提取 *fetch.StatusError，非状态码错误返回 nil。
func statusOf(err error) *fetch.StatusError {
	var se *fetch.StatusError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
