package gateway

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

	"github.com/soyeahso/clawdock/internal/version"
)

// ErrEmptyMessage is returned by Send for a blank message.
var ErrEmptyMessage = errors.New("message is empty")

// ErrUnreachable wraps transport failures talking to the gateway.
var ErrUnreachable = errors.New("cannot reach the gateway; check that it is running")

const maxBody = 4 << 20

// StatusError is a non-2xx gateway response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

var statusMessages = map[int]string{
	http.StatusBadRequest:          "bad request",
	http.StatusUnauthorized:        "authentication failed, check the gateway token",
	http.StatusForbidden:           "access denied",
	http.StatusNotFound:            "endpoint not found, check the gateway version",
	http.StatusTooManyRequests:     "too many requests, try again later",
	http.StatusInternalServerError: "gateway internal error",
	http.StatusBadGateway:          "bad gateway",
	http.StatusServiceUnavailable:  "gateway temporarily unavailable",
}

// statusMessage prefers the server's own error text.
func statusMessage(code int, serverMsg string) string {
	if serverMsg != "" {
		return serverMsg
	}
	if msg, ok := statusMessages[code]; ok {
		return fmt.Sprintf("%s (%d)", msg, code)
	}
	return fmt.Sprintf("request failed (%d)", code)
}

// Client talks to the gateway's HTTP endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the gateway at baseURL. token, when set,
// is sent as a bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// BaseURL returns the gateway address.
func (c *Client) BaseURL() string { return c.baseURL }

// Send posts message to the webhook endpoint and returns the agent's reply.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/webhook", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("reading reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return "", &StatusError{Code: resp.StatusCode, Message: statusMessage(resp.StatusCode, e.Error)}
	}

	return extractReply(data), nil
}

// extractReply picks the first of reply, response or content; anything else
// is returned verbatim.
func extractReply(data []byte) string {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return string(data)
	}
	for _, key := range []string{"reply", "response", "content"} {
		if v, ok := m[key]; ok && v != nil {
			if s, ok := v.(string); ok {
				return s
			}
			b, _ := json.Marshal(v)
			return string(b)
		}
	}
	return strings.TrimSpace(string(data))
}

// Health checks the gateway's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: statusMessage(resp.StatusCode, "")}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}
