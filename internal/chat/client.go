// Package chat forwards visitor messages to the remote assistant service and
// keeps per-session chat state (session ids, transcripts) in redis.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smartserveai/widget-gateway/pkg/logging"
)

const defaultTimeout = 30 * time.Second

// ClientConfig identifies the gateway against the assistant service.
type ClientConfig struct {
	ChatAPIBase string
	APIKey      string
	VenueID     string
}

// Client calls the assistant service.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	logger     *logging.Logger
}

// Response is the assistant service reply envelope. Older deployments return
// the text under different keys, hence the fallback fields.
type Response struct {
	SchemaVersion int     `json:"schema_version,omitempty"`
	Reply         string  `json:"reply,omitempty"`
	Answer        string  `json:"answer,omitempty"`
	Message       string  `json:"message,omitempty"`
	Text          string  `json:"text,omitempty"`
	Action        *Action `json:"action,omitempty"`
}

// AssistantText resolves the reply text across the known envelope variants.
func (r *Response) AssistantText() string {
	for _, s := range []string{r.Reply, r.Answer, r.Message, r.Text} {
		if s != "" {
			return s
		}
	}
	return ""
}

// NewClient creates an assistant service client.
func NewClient(cfg ClientConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.ChatAPIBase = strings.TrimRight(cfg.ChatAPIBase, "/")
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Send forwards one visitor message and returns the parsed reply.
func (c *Client) Send(ctx context.Context, sessionID, message string) (*Response, error) {
	payload := map[string]string{
		"message":    message,
		"session_id": sessionID,
		"venue_id":   c.cfg.VenueID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("chat: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ChatAPIBase+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("chat: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("x-venue-id", c.cfg.VenueID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat: send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("chat: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("assistant service rejected message",
			"status", resp.StatusCode,
			"venue_id", c.cfg.VenueID,
		)
		return nil, errors.New(errorMessage(respBody, resp.StatusCode))
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		// Some deployments answer with bare text; treat it as the reply.
		out = Response{Reply: strings.TrimSpace(string(respBody))}
	}
	return &out, nil
}

type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func errorMessage(body []byte, status int) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Detail != "":
			return eb.Detail
		case eb.Message != "":
			return eb.Message
		case eb.Error != "":
			return eb.Error
		}
	}
	return fmt.Sprintf("chat send failed (%d)", status)
}
