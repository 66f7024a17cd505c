package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ClientConfig configures the Klaviyo REST client
type ClientConfig struct {
	APIKey   string
	BaseURL  string
	Revision string
	Timeout  time.Duration
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("klaviyo %d: %s", e.StatusCode, e.Body)
}

// Client is a thin JSON:API client for the Klaviyo REST API
type Client struct {
	httpClient *http.Client
	config     ClientConfig
	log        *zap.Logger
}

// NewClient creates a new Klaviyo client. Every request is bounded by
// config.Timeout.
func NewClient(config ClientConfig, log *zap.Logger) *Client {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		log:        log,
	}
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.config.APIKey != ""
}

// Do sends a request and decodes the response into out. A 204 or an empty
// body leaves out untouched and returns found=false.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) (bool, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to marshal klaviyo request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return false, fmt.Errorf("failed to build klaviyo request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Revision", c.config.Revision)
	req.Header.Set("Authorization", "Klaviyo-API-Key "+c.config.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("klaviyo %s %s failed: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warn("Failed to close klaviyo response body", zap.Error(err))
		}
	}()

	c.log.Debug("Klaviyo request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode == http.StatusNoContent {
		return false, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read klaviyo response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if len(bytes.TrimSpace(data)) == 0 || out == nil {
		return false, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode klaviyo response: %w", err)
	}

	return true, nil
}
