package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 20 * time.Second
	parseMode      = "HTML"
)

// ErrRejected is returned when the Bot API answers but refuses the message.
var ErrRejected = errors.New("telegram rejected message")

// Client delivers messages through the Telegram Bot API.
type Client struct {
	http  *resty.Client
	token string
}

// Option customizes a Client.
type Option func(*resty.Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) Option {
	return func(c *resty.Client) {
		c.SetBaseURL(strings.TrimRight(u, "/"))
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

// New creates a Bot API client. Deliveries are not retried; the dispatcher moves on to the next recipient.
func New(token string, opts ...Option) *Client {
	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(defaultTimeout).
		SetHeader("User-Agent", "weather-bulletin/1.0")
	for _, opt := range opts {
		opt(client)
	}
	return &Client{http: client, token: token}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (c *Client) SendText(ctx context.Context, chatID, body string) error {
	return c.call(ctx, "sendMessage", map[string]string{
		"chat_id":    chatID,
		"text":       body,
		"parse_mode": parseMode,
	})
}

func (c *Client) SendPhoto(ctx context.Context, chatID, photoURL, caption string) error {
	return c.call(ctx, "sendPhoto", map[string]string{
		"chat_id":    chatID,
		"photo":      photoURL,
		"caption":    caption,
		"parse_mode": parseMode,
	})
}

func (c *Client) call(ctx context.Context, method string, form map[string]string) error {
	var out apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		SetError(&out).
		Post("/bot" + c.token + "/" + method)
	if err != nil {
		// Transport errors embed the request URL, which contains the token.
		return fmt.Errorf("telegram %s: %s", method, c.redact(err.Error()))
	}
	if resp.IsError() || !out.OK {
		return fmt.Errorf("%w: %s %d %s", ErrRejected, method, resp.StatusCode(), out.Description)
	}
	return nil
}

func (c *Client) redact(s string) string {
	if c.token == "" {
		return s
	}
	return strings.ReplaceAll(s, c.token, "<redacted>")
}
