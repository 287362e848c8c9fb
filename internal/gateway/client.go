// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the completion gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the gateway client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches gateway errors by type, so wrapped errors still compare equal
// to the sentinels below.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeQuotaExceeded
	ErrTypeBadRequest
	ErrTypeUnavailable
	ErrTypeTimeout
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	// ErrQuotaExceeded maps the gateway's 429 response. It is the one
	// failure the UI distinguishes from everything else.
	ErrQuotaExceeded = &ClientError{Type: ErrTypeQuotaExceeded, Message: "API usage quota exceeded"}

	ErrBadRequest  = &ClientError{Type: ErrTypeBadRequest, Message: "gateway rejected the request"}
	ErrUnavailable = &ClientError{Type: ErrTypeUnavailable, Message: "gateway is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Prompt string `json:"prompt"`
}

// chatResponse is the success body of POST /api/chat.
type chatResponse struct {
	Response string `json:"response"`
}

// errorResponse is the failure body of POST /api/chat.
type errorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the gateway client.
type ClientConfig struct {
	// BaseURL is the gateway base URL (default: http://127.0.0.1:8422)
	BaseURL string

	// Timeout for requests (default: 60s; completions are slow)
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:8422",
		Timeout: 60 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// maxResponseBytes bounds how much of a gateway response is read.
const maxResponseBytes = 1 << 20

// Client talks to the completion gateway. It is safe for concurrent use,
// though the session manager only ever has one request in flight.
//
// Example:
//
//	client := gateway.NewClient()
//	text, err := client.Complete(ctx, "upbeat jazz like Vince Guaraldi")
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new gateway client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new gateway client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8422"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete sends a prompt to the gateway and returns the recommendation
// text. HTTP 429 maps to ErrQuotaExceeded; every other failure maps to a
// typed error the caller may treat generically.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{Prompt: prompt})
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnavailable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", &ClientError{Type: ErrTypeUnavailable, Message: "gateway is not reachable", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read response", Cause: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var result chatResponse
		if err := json.Unmarshal(data, &result); err != nil {
			return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
		}
		// A 200 with a missing or empty response field is still a failure.
		if result.Response == "" {
			return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "gateway returned an empty response"}
		}
		return result.Response, nil

	case http.StatusTooManyRequests:
		return "", ErrQuotaExceeded

	case http.StatusBadRequest:
		return "", &ClientError{Type: ErrTypeBadRequest, Message: apiErrorMessage(data, "gateway rejected the request")}

	default:
		return "", &ClientError{
			Type:    ErrTypeUnknown,
			Message: apiErrorMessage(data, "chat request failed: "+resp.Status),
		}
	}
}

// Healthy reports whether the gateway answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	return resp.StatusCode == http.StatusOK
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// HELPERS
// =============================================================================

// apiErrorMessage extracts the gateway's error string, falling back when the
// body isn't the expected shape.
func apiErrorMessage(data []byte, fallback string) string {
	var apiErr errorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return fallback
}

// IsQuotaExceeded checks if an error is a quota exhaustion error.
func IsQuotaExceeded(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeQuotaExceeded
	}
	return errors.Is(err, ErrQuotaExceeded)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}
