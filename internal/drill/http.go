package drill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/shopfloor/internal/domain/progression"
	"github.com/okian/shopfloor/internal/domain/types"
	"github.com/okian/shopfloor/pkg/logger"
)

// HTTPClient talks to the training API on behalf of one employee.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	token   string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Health checks /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer closeBody(resp)
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Login signs in and keeps the bearer token for later calls.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (types.LoginResult, error) {
	var res types.LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", body, &res); err != nil {
		return res, err
	}
	c.token = res.Token
	return res, nil
}

// Logout ends the session.
func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil)
	c.token = ""
	return err
}

// Training returns the current training view.
func (c *HTTPClient) Training(ctx context.Context) (progression.View, error) {
	var v progression.View
	err := c.do(ctx, http.MethodGet, "/training", nil, &v)
	return v, err
}

// Start begins a scenario.
func (c *HTTPClient) Start(ctx context.Context, scenarioID string) (progression.View, error) {
	var v progression.View
	err := c.do(ctx, http.MethodPost, "/training/start", map[string]string{"scenario_id": scenarioID}, &v)
	return v, err
}

// Respond submits an answer to the current step.
func (c *HTTPClient) Respond(ctx context.Context, text string) (progression.Outcome, error) {
	var out progression.Outcome
	err := c.do(ctx, http.MethodPost, "/training/respond", map[string]string{"text": text}, &out)
	return out, err
}

// Advance moves past the feedback of the current step.
func (c *HTTPClient) Advance(ctx context.Context) (progression.View, error) {
	var v progression.View
	err := c.do(ctx, http.MethodPost, "/training/advance", nil, &v)
	return v, err
}

// Reset restarts the active scenario.
func (c *HTTPClient) Reset(ctx context.Context) (progression.View, error) {
	var v progression.View
	err := c.do(ctx, http.MethodPost, "/training/reset", nil, &v)
	return v, err
}

// Complete finalizes the attempt.
func (c *HTTPClient) Complete(ctx context.Context) (progression.Completion, error) {
	var done progression.Completion
	err := c.do(ctx, http.MethodPost, "/training/complete", nil, &done)
	return done, err
}

// Progress returns the employee's progress report.
func (c *HTTPClient) Progress(ctx context.Context) (types.ProgressReport, error) {
	var rep types.ProgressReport
	err := c.do(ctx, http.MethodGet, "/progress", nil, &rep)
	return rep, err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer closeBody(resp)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
	}
}
