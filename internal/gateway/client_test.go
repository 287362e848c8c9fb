// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	return client, srv
}

func TestComplete_Success(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dreamy shoegaze", req.Prompt)

		json.NewEncoder(w).Encode(chatResponse{Response: "1. Slowdive - Souvlaki"})
	})
	defer srv.Close()

	text, err := client.Complete(context.Background(), "dreamy shoegaze")
	require.NoError(t, err)
	assert.Equal(t, "1. Slowdive - Souvlaki", text)
}

func TestComplete_EmptySuccessBody(t *testing.T) {
	for name, body := range map[string]string{
		"missing field": `{}`,
		"empty field":   `{"response": ""}`,
	} {
		t.Run(name, func(t *testing.T) {
			client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			defer srv.Close()

			text, err := client.Complete(context.Background(), "anything")
			require.Error(t, err)
			assert.Equal(t, "", text)

			var clientErr *ClientError
			require.True(t, errors.As(err, &clientErr))
			assert.Equal(t, ErrTypeInvalidResponse, clientErr.Type)
			assert.False(t, IsQuotaExceeded(err))
		})
	}
}

func TestComplete_QuotaExceeded(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(errorResponse{Error: "quota"})
	})
	defer srv.Close()

	_, err := client.Complete(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
	assert.True(t, IsQuotaExceeded(err))
}

func TestComplete_BadRequest(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: "No prompt provided"})
	})
	defer srv.Close()

	_, err := client.Complete(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadRequest))
	assert.False(t, IsQuotaExceeded(err))
	assert.Contains(t, err.Error(), "No prompt provided")
}

func TestComplete_ServerError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errorResponse{Error: "Internal server error"})
	})
	defer srv.Close()

	_, err := client.Complete(context.Background(), "anything")
	require.Error(t, err)
	assert.False(t, IsQuotaExceeded(err))
}

func TestComplete_Unreachable(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := client.Complete(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestComplete_MalformedBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})
	defer srv.Close()

	_, err := client.Complete(context.Background(), "anything")
	require.Error(t, err)

	var clientErr *ClientError
	require.True(t, errors.As(err, &clientErr))
	assert.Equal(t, ErrTypeInvalidResponse, clientErr.Type)
}

func TestHealthy(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	assert.True(t, client.Healthy(context.Background()))

	srv.Close()
	assert.False(t, client.Healthy(context.Background()))
}

func TestConfigDefaults(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{})
	cfg := client.GetConfig()
	assert.Equal(t, DefaultConfig().BaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultConfig().Timeout, cfg.Timeout)
}
