// Package line talks to the LINE Messaging and Login platform APIs.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	pushEndpoint    = "https://api.line.me/v2/bot/message/push"
	profileEndpoint = "https://api.line.me/v2/profile"
)

// ErrCredentialsMissing is returned when the channel access token is not
// configured. Callers map this to an operational (5xx) failure: it is a
// deployment problem, not a bad request.
var ErrCredentialsMissing = errors.New("line: channel credentials not configured")

// PushError reports a non-success response from the push API.
type PushError struct {
	StatusCode int
	Body       string
}

func (e *PushError) Error() string {
	return fmt.Sprintf("line push failed with status %d: %s", e.StatusCode, e.Body)
}

// Client sends push messages through the LINE Messaging API.
type Client struct {
	channelToken string
	logger       *slog.Logger
	client       *http.Client

	// pushURL is overridable for tests; production uses the platform API.
	pushURL string
}

// NewClient creates a messaging client. An empty channelToken is allowed;
// send attempts will fail with ErrCredentialsMissing.
func NewClient(channelToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		channelToken: channelToken,
		logger:       logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		pushURL: pushEndpoint,
	}
}

// PushText sends a plain text message to a LINE user.
func (c *Client) PushText(ctx context.Context, userID, text string) error {
	return c.push(ctx, userID, []map[string]any{
		{"type": "text", "text": text},
	})
}

// PushCard sends a flex "card" message with a title, body text, and a
// single link button.
func (c *Client) PushCard(ctx context.Context, userID string, card Card) error {
	return c.push(ctx, userID, []map[string]any{
		{
			"type":    "flex",
			"altText": card.Title,
			"contents": map[string]any{
				"type": "bubble",
				"body": map[string]any{
					"type":   "box",
					"layout": "vertical",
					"contents": []map[string]any{
						{"type": "text", "text": card.Title, "weight": "bold", "size": "lg", "wrap": true},
						{"type": "text", "text": card.Text, "size": "sm", "color": "#666666", "wrap": true, "margin": "md"},
					},
				},
				"footer": map[string]any{
					"type":   "box",
					"layout": "vertical",
					"contents": []map[string]any{
						{
							"type":   "button",
							"style":  "primary",
							"action": map[string]any{"type": "uri", "label": card.ButtonLabel, "uri": card.ButtonURI},
						},
					},
				},
			},
		},
	})
}

// Card describes a flex bubble with one action button.
type Card struct {
	Title       string
	Text        string
	ButtonLabel string
	ButtonURI   string
}

// push delivers messages to a user, retrying transient failures with
// backoff. 4xx responses are not retried.
func (c *Client) push(ctx context.Context, userID string, messages []map[string]any) error {
	if c.channelToken == "" {
		return ErrCredentialsMissing
	}

	body, err := json.Marshal(map[string]any{
		"to":       userID,
		"messages": messages,
	})
	if err != nil {
		return fmt.Errorf("line: failed to marshal push payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt*attempt) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pushURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("line: failed to create push request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.channelToken)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("line push failed", "user_id", userID, "attempt", attempt+1, "error", err)
			continue
		}

		var respBody bytes.Buffer
		_, _ = respBody.ReadFrom(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.logger.Info("line push delivered", "user_id", userID, "status", resp.StatusCode)
			return nil
		}

		lastErr = &PushError{StatusCode: resp.StatusCode, Body: respBody.String()}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Bad token or malformed payload will not heal on retry
			break
		}
		c.logger.Warn("line push non-success status", "user_id", userID, "status", resp.StatusCode, "attempt", attempt+1)
	}

	c.logger.Error("line push failed after retries", "user_id", userID, "error", lastErr)
	return lastErr
}
