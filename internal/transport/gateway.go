package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GatewayNotifier delivers outbound messages to the chat gateway over HTTP.
// The gateway owns the actual chat-platform session; this client only speaks
// the abstract send contract.
type GatewayNotifier struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewGatewayNotifier(baseURL, token string) *GatewayNotifier {
	return &GatewayNotifier{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type outboundMessage struct {
	ChatID  int64    `json:"chat_id"`
	Kind    string   `json:"kind"`
	Text    string   `json:"text,omitempty"`
	PhotoID string   `json:"photo_id,omitempty"`
	Caption string   `json:"caption,omitempty"`
	Buttons []Button `json:"buttons,omitempty"`
}

func (n *GatewayNotifier) SendText(ctx context.Context, chatID int64, text string, buttons ...Button) error {
	return n.post(ctx, outboundMessage{ChatID: chatID, Kind: "text", Text: text, Buttons: buttons})
}

func (n *GatewayNotifier) SendPhoto(ctx context.Context, chatID int64, photoID, caption string, buttons ...Button) error {
	return n.post(ctx, outboundMessage{ChatID: chatID, Kind: "photo", PhotoID: photoID, Caption: caption, Buttons: buttons})
}

func (n *GatewayNotifier) RequestLocation(ctx context.Context, chatID int64, text string, buttons ...Button) error {
	return n.post(ctx, outboundMessage{ChatID: chatID, Kind: "request_location", Text: text, Buttons: buttons})
}

func (n *GatewayNotifier) RequestContact(ctx context.Context, chatID int64, text string, buttons ...Button) error {
	return n.post(ctx, outboundMessage{ChatID: chatID, Kind: "request_contact", Text: text, Buttons: buttons})
}

func (n *GatewayNotifier) post(ctx context.Context, msg outboundMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode outbound message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway send: unexpected status %d", resp.StatusCode)
	}
	return nil
}
