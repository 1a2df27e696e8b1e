package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// apiClient is the JSON transport shared by the typed clients. Every call
// carries a fresh request id so server logs can be matched to a test run.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Response keeps the raw body so callers can decode either the success
// payload or the error envelope.
type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// ErrorBody mirrors the envelope written by the server on failures and on
// rejected ticket validations.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Reason  string            `json:"reason"`
	Details map[string]string `json:"details"`
}

func (r *Response) Error() (*ErrorBody, error) {
	var body ErrorBody
	if err := r.DecodeJSON(&body); err != nil {
		return nil, fmt.Errorf("failed to decode error body (status %d): %w", r.StatusCode, err)
	}
	return &body, nil
}

// Reason returns the domain reason of a failed call, or "" when the body has none.
func (r *Response) Reason() string {
	body, err := r.Error()
	if err != nil {
		return ""
	}
	return body.Reason
}

func (c *apiClient) get(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, headers)
}

func (c *apiClient) postJSON(ctx context.Context, path string, body any, headers map[string]string) (*Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, raw, headers)
}

func (c *apiClient) do(ctx context.Context, method, path string, raw []byte, headers map[string]string) (*Response, error) {
	var reqBody io.Reader
	if raw != nil {
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s %s: %w", method, path, err)
	}
	if raw != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s %s: %w", method, path, err)
	}
	return &Response{Response: resp, Body: respBody}, nil
}

// waitReady polls /ready until the server reports its
// dependencies reachable or maxWait elapses.
func (c *apiClient) waitReady(ctx context.Context, maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		resp, err := c.get(ctx, "/ready", nil)
		if err == nil && resp.StatusCode == http.StatusOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("service not ready within %v", maxWait)
		case <-ticker.C:
		}
	}
}
