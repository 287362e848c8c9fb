// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChat_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", got)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != DefaultModel {
			t.Errorf("model = %q, want %q", req.Model, DefaultModel)
		}
		if len(req.Messages) != 2 {
			t.Errorf("got %d messages, want system + user", len(req.Messages))
		}

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"1. Elliott Smith"}}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key").WithBaseURL(srv.URL)
	resp, err := client.Chat(context.Background(), []ChatMessage{
		NewSystemMessage("You are a helpful chatbot."),
		NewUserMessage("RIYL Nick Drake"),
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if got := resp.GetContent(); got != "1. Elliott Smith" {
		t.Errorf("GetContent = %q", got)
	}
}

func TestChat_NotConfigured(t *testing.T) {
	client := NewClient("")
	_, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("x")})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Chat without key = %v, want ErrNotConfigured", err)
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuthFailed},
		{"forbidden", http.StatusForbidden, ErrAuthFailed},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"model missing", http.StatusNotFound, ErrModelNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope","code":"x"}}`))
			}))
			defer srv.Close()

			client := NewClient("k").WithBaseURL(srv.URL)
			_, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("x")})
			if !errors.Is(err, tt.want) {
				t.Errorf("Chat = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestChat_ServerErrorIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	client := NewClient("k").WithBaseURL(srv.URL)
	_, err := client.Chat(context.Background(), []ChatMessage{NewUserMessage("x")})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Chat = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError || apiErr.Message != "boom" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if IsRateLimited(err) {
		t.Error("5xx must not classify as rate limited")
	}
}
