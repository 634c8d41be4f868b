// Package evolution talks to the Evolution API WhatsApp gateway: sending
// text messages out and decoding inbound webhook events.
package evolution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultSendTimeout = 15 * time.Second

// Client sends messages through one Evolution API instance.
type Client struct {
	baseURL  string
	apiKey   string
	instance string
	http     *http.Client
}

// NewClient builds a gateway client. A zero timeout selects the default.
func NewClient(baseURL, apiKey, instance string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		instance: instance,
		http:     &http.Client{Timeout: timeout},
	}
}

type sendTextRequest struct {
	Number      string `json:"number"`
	Text        string `json:"text"`
	Delay       int    `json:"delay"`
	LinkPreview bool   `json:"linkPreview"`
}

// SendText delivers one text message to a phone number. The fixed delay keeps
// outbound messages looking typed rather than machine-gunned.
func (c *Client) SendText(ctx context.Context, phone, text string) error {
	payload, err := json.Marshal(sendTextRequest{
		Number:      phone,
		Text:        text,
		Delay:       1200,
		LinkPreview: false,
	})
	if err != nil {
		return fmt.Errorf("evolution: encode: %w", err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, c.instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("evolution: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("evolution: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("evolution: send: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
