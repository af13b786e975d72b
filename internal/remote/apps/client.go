// Package apps talks to the Apps-Script-style web endpoint that fronts the
// remote card store.
package apps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cardtrack/internal/notify"
	"cardtrack/internal/remote"
)

// Client posts {action, payload} bodies to a single endpoint URL and decodes
// the tagged response envelope.
type Client struct {
	endpoint   string
	httpClient *http.Client
	busy       *remote.BusyFlag
	notifier   notify.Notifier
}

var _ remote.Invoker = (*Client)(nil)

// DefaultTimeout bounds a remote call when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// New creates a gateway client for the given endpoint. busy may be nil; a
// non-positive timeout falls back to DefaultTimeout.
func New(endpoint string, timeout time.Duration, busy *remote.BusyFlag, notifier notify.Notifier) *Client {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		busy:     busy,
		notifier: notifier,
	}
}

// Invoke performs one remote call. The busy indicator is set for the
// duration of the call, including failures. Transport and protocol failures
// surface a generic message; a non-success status surfaces the store's
// message verbatim. Either way the user has been notified and the caller
// gets nil.
func (c *Client) Invoke(ctx context.Context, action string, payload any) json.RawMessage {
	c.busy.Set(true)
	defer c.busy.Set(false)

	data, err := c.call(ctx, action, payload)
	if err != nil {
		var bizErr *remote.BusinessError
		if errors.As(err, &bizErr) {
			slog.WarnContext(ctx, "Remote store rejected action", "action", action, "status", bizErr.Status, "message", bizErr.Message)
			c.notifier.Notify(ctx, "Error", bizErr.Error(), notify.SeverityError)
		} else {
			slog.ErrorContext(ctx, "Remote call failed", "action", action, "error", err)
			c.notifier.Notify(ctx, "Error", "The remote store could not be reached", notify.SeverityError)
		}
		return nil
	}
	return data
}

func (c *Client) call(ctx context.Context, action string, payload any) (json.RawMessage, error) {
	if payload == nil {
		payload = struct{}{}
	}
	body, err := json.Marshal(remote.Request{Action: action, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	// Deliberately no Content-Type header: the body stays a "simple
	// request" for the hosted-script endpoint, skipping CORS preflight.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("remote store responded %d: %s", resp.StatusCode, string(b))
	}

	var envelope remote.Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if envelope.Status != remote.StatusSuccess {
		return nil, &remote.BusinessError{Status: envelope.Status, Message: envelope.Message}
	}
	if envelope.Data == nil {
		// Mutations may succeed with no data; give callers something
		// non-nil to distinguish success from failure.
		return json.RawMessage(`{}`), nil
	}
	return envelope.Data, nil
}
