package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/warit/linedrive/internal/config"
)

// Client talks to the chat platform's messaging API.
type Client struct {
	httpClient   *http.Client
	accessToken  string
	apiEndpoint  string
	dataEndpoint string
}

// NewClient builds a messaging gateway client from configuration.
func NewClient(cfg config.LineConfig) *Client {
	return &Client{
		httpClient:   &http.Client{},
		accessToken:  cfg.ChannelAccessToken,
		apiEndpoint:  cfg.APIEndpoint,
		dataEndpoint: cfg.DataEndpoint,
	}
}

// DownloadContent fetches an attachment's bytes and declared content type by
// message ID.
func (c *Client) DownloadContent(ctx context.Context, messageID string) ([]byte, string, error) {
	url := fmt.Sprintf("%s/v2/bot/message/%s/content", c.dataEndpoint, messageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build content request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download content %s: %w", messageID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download content %s: unexpected status %d", messageID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read content %s: %w", messageID, err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

// PushText sends one or more text messages to a user.
func (c *Client) PushText(ctx context.Context, userID string, texts ...string) error {
	payload := pushRequest{To: userID}
	for _, t := range texts {
		payload.Messages = append(payload.Messages, textMessage{Type: "text", Text: t})
	}
	return c.post(ctx, "/v2/bot/message/push", payload)
}

// ReplyText answers a specific reply token with a text message.
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	payload := replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: "text", Text: text}},
	}
	return c.post(ctx, "/v2/bot/message/reply", payload)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiEndpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build message request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send message: unexpected status %d", resp.StatusCode)
	}
	return nil
}
