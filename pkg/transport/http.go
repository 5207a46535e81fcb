package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/goliatone/go-pluginform/pkg/model"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "go-pluginform"
	maxErrorBody     = 1 << 20
)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient injects the underlying client. The client is copied so the
// timeout default does not leak into the caller's value.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			clone := *client
			c.client = &clone
		}
	}
}

// WithToken sends `Authorization: Bearer <token>` on every request.
func WithToken(token string) Option {
	return func(c *HTTPClient) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout bounds each request. Zero disables the client-side timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		c.timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *HTTPClient) {
		if trimmed := strings.TrimSpace(agent); trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// WithLogger routes request logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// HTTPClient implements Transport over the plugin REST API.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	token     string
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

var _ Transport = (*HTTPClient)(nil)

// NewHTTPClient builds a client rooted at baseURL (for example
// "https://sentry.example.com/api/0").
func NewHTTPClient(baseURL string, options ...Option) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("transport: base url is required")
	}
	c := &HTTPClient{
		baseURL:   base,
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		logger:    slog.Default().With("component", "transport.http"),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	if c.timeout > 0 && c.client.Timeout == 0 {
		c.client.Timeout = c.timeout
	}
	return c, nil
}

// Fetch loads the plugin config.
func (c *HTTPClient) Fetch(ctx context.Context, endpoint Endpoint) ([]model.ConfigField, error) {
	if err := endpoint.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

// Save PUTs values and returns the normalised config.
func (c *HTTPClient) Save(ctx context.Context, endpoint Endpoint, values model.Values) ([]model.ConfigField, error) {
	if err := endpoint.Validate(); err != nil {
		return nil, err
	}
	if values == nil {
		values = model.Values{}
	}
	body, err := sonic.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("transport: encode values: %w", err)
	}
	return c.do(ctx, http.MethodPut, endpoint, body)
}

// Close releases idle connections held by the underlying client.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method string, endpoint Endpoint, body []byte) ([]model.ConfigField, error) {
	target := c.baseURL + endpoint.Path()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: %s %s: %w", method, endpoint.Path(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Debug("plugin config request",
		"method", method,
		"path", endpoint.Path(),
		"status", resp.StatusCode,
		"elapsed", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeStatusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: read response: %w", err)
	}
	var payload ConfigResponse
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("transport: decode response: %w", err)
	}
	if payload.Config == nil {
		return nil, errors.New("transport: response has no config")
	}
	return payload.Config, nil
}

func decodeStatusError(resp *http.Response) error {
	statusErr := &StatusError{Code: resp.StatusCode, Status: resp.Status}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return statusErr
	}
	var body errorBody
	if err := sonic.Unmarshal(data, &body); err != nil {
		// Non-JSON error pages carry no field errors.
		return statusErr
	}
	statusErr.FieldErrors = flattenErrorMessages(body.Errors)
	return statusErr
}
