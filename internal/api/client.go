package api

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

// TokenSource supplies the current bearer token, or "" when no session
// exists. The session store implements this.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to a TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client issues requests against the backend REST API. Each call is a
// single request with no retry or caching; the token source is
// consulted per call so a login or logout takes effect immediately.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
}

// New creates a client for the given base URL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
	}
}

// do issues one request. Body is JSON-encoded when non-nil; on 2xx the
// response is decoded into out (when non-nil), otherwise a *Error is
// returned with the status and any server-supplied message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// errorMessage extracts a message from a non-2xx body, which is either
// a plain string or an object with a message/error field.
func errorMessage(data []byte) string {
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Error != "" {
			return obj.Error
		}
	}
	return strings.TrimSpace(string(data))
}
