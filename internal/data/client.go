package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 << 20

// Client is an HTTP client for the collaborating platform API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a new API client. The timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "api_client"),
	}
}

// SetToken sets the bearer token, empty to sign out
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// doJSON sends in as JSON (if not nil) and decodes the response into out (if not nil)
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	op := method + " " + path
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}
	c.logger.Debug("api call", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))

	if apiErr := parseAPIError(op, resp.StatusCode, respBody); apiErr != nil {
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// errorEnvelope covers the error shapes the API uses:
// {"error": "text"}, {"error": true, "message": "text"} and
// {"error": {"message": "text"}}
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// parseAPIError returns the API error carried by a response, nil if the
// response is a success. Any error indicator counts, whatever the status.
func parseAPIError(op string, status int, body []byte) *domain.APIError {
	var env errorEnvelope
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		_ = json.Unmarshal(trimmed, &env)
	}

	if msg, ok := errorIndicator(env); ok {
		if msg == "" {
			msg = fallbackMessage(status)
		}
		return &domain.APIError{Op: op, StatusCode: status, Message: msg}
	}
	if status < 200 || status > 299 {
		msg := env.Message
		if msg == "" {
			msg = fallbackMessage(status)
		}
		return &domain.APIError{Op: op, StatusCode: status, Message: msg}
	}
	return nil
}

func errorIndicator(env errorEnvelope) (string, bool) {
	raw := bytes.TrimSpace(env.Error)
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "false" {
		return "", false
	}

	var text string
	if json.Unmarshal(raw, &text) == nil {
		if text == "" {
			return "", false
		}
		return text, true
	}

	var flag bool
	if json.Unmarshal(raw, &flag) == nil {
		return env.Message, flag
	}

	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		if obj.Message != "" {
			return obj.Message, true
		}
		return env.Message, true
	}
	return env.Message, true
}

func fallbackMessage(status int) string {
	if text := http.StatusText(status); text != "" && status >= 300 {
		return fmt.Sprintf("request failed: %s", strings.ToLower(text))
	}
	return "request failed"
}
