// Package telegram is a minimal Bot API client: sendMessage delivery with
// Markdown-to-Telegram-HTML rendering, and getUpdates long polling.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/leonid-shevtsov/telegold"
	"github.com/yuin/goldmark"
)

const defaultBaseURL = "https://api.telegram.org"

// pollTimeout is the getUpdates long-poll window in seconds.
const pollTimeout = 30

// Update is one incoming Bot API update.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an incoming Telegram message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      *Chat  `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
}

// User is the sender of a message.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"` // "private", "group", "supergroup", "channel"
}

// markdownConverter renders model-produced Markdown as Telegram HTML.
var markdownConverter = goldmark.New(goldmark.WithRenderer(telegold.NewRenderer()))

// renderHTML converts Markdown to Telegram-compatible HTML. On conversion
// failure the original text is returned unchanged.
func renderHTML(text string) string {
	var buf bytes.Buffer
	if err := markdownConverter.Convert([]byte(text), &buf); err != nil {
		return text
	}
	return buf.String()
}

// Client talks to the Telegram Bot API for one bot token.
type Client struct {
	Token      string
	BaseURL    string
	client     *http.Client
	pollClient *http.Client // longer timeout than the long-poll window
}

// NewClient constructs a Bot API client.
func NewClient(token string) *Client {
	return &Client{
		Token:      token,
		BaseURL:    defaultBaseURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		pollClient: &http.Client{Timeout: (pollTimeout + 5) * time.Second},
	}
}

// SendMessage delivers text to a chat. Markdown is rendered to Telegram
// HTML first; if the API rejects the HTML payload the message is re-sent
// as plain text.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := c.send(ctx, chatID, renderHTML(text), "HTML"); err != nil {
		return c.send(ctx, chatID, text, "")
	}
	return nil
}

func (c *Client) send(ctx context.Context, chatID int64, text, parseMode string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, c.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram sendMessage failed: %s", result.Description)
	}

	return nil
}

// GetUpdates fetches updates via long polling. The offset acknowledges all
// updates below it.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	url := fmt.Sprintf("%s/bot%s/getUpdates?timeout=%d&allowed_updates=[\"message\"]", c.BaseURL, c.Token, pollTimeout)
	if offset > 0 {
		url += fmt.Sprintf("&offset=%d", offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.pollClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get updates: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK     bool     `json:"ok"`
		Result []Update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram getUpdates returned not OK")
	}

	return result.Result, nil
}
