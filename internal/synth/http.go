package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/types"
)

// HTTPClient wraps http.Client for the analysis API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client with a request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Do(req)
}

// decode reads and closes the response body, failing on unexpected status.
func decode(resp *http.Response, v any, want ...int) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	ok := false
	for _, code := range want {
		if resp.StatusCode == code {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	if v == nil {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	return decode(resp, nil, http.StatusOK)
}

// Analyze posts a session to the synchronous endpoint.
func (c *HTTPClient) Analyze(ctx context.Context, req types.SessionRequest) (*types.AnalysisResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/analyze", req)
	if err != nil {
		return nil, err
	}
	var out types.AnalysisResponse
	if err := decode(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit queues a session. A 200 response marks a duplicate, 202 a new session.
func (c *HTTPClient) Submit(ctx context.Context, req types.SessionRequest) (*types.SubmitResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/sessions", req)
	if err != nil {
		return nil, err
	}
	var out types.SubmitResponse
	if err := decode(resp, &out, http.StatusAccepted, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Session fetches the status of a submitted session.
func (c *HTTPClient) Session(ctx context.Context, id string) (*types.SessionStatus, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var out types.SessionStatus
	if err := decode(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Await polls a submitted session until it leaves the queue.
func (c *HTTPClient) Await(ctx context.Context, id string, every time.Duration) (*types.SessionStatus, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		st, err := c.Session(ctx, id)
		if err != nil {
			return nil, err
		}
		if model.Status(st.Status).Done() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
