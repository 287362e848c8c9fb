// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"plain", "jazz like Mingus", "jazz like Mingus"},
		{"trimmed", "  jazz like Mingus  ", "jazz like Mingus"},
		{"empty", "", DefaultTitle},
		{"whitespace only", "   \t\n", DefaultTitle},
		{"exactly 48", strings.Repeat("a", 48), strings.Repeat("a", 48)},
		{"over 48", strings.Repeat("a", 60), strings.Repeat("a", 48) + "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.prompt)
			if got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestDeriveTitleLongIsExactly49Runes(t *testing.T) {
	got := DeriveTitle(strings.Repeat("x", 60))
	runes := []rune(got)
	if len(runes) != TitleMaxRunes+1 {
		t.Fatalf("truncated title has %d runes, want %d", len(runes), TitleMaxRunes+1)
	}
	if runes[len(runes)-1] != '…' {
		t.Errorf("truncated title ends in %q, want single ellipsis", runes[len(runes)-1])
	}
}

func TestDeriveTitleMultibyte(t *testing.T) {
	// 60 multi-byte runes must truncate on rune boundaries.
	prompt := strings.Repeat("音", 60)
	got := DeriveTitle(prompt)
	if want := strings.Repeat("音", 48) + "…"; got != want {
		t.Errorf("DeriveTitle multibyte = %q, want %q", got, want)
	}
}

func TestConversationTitleFromFirstUserMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("songs like Boards of Canada")
	conv.AddAssistantMessage()
	conv.AddUserMessage("something else entirely")

	if conv.Title != "songs like Boards of Canada" {
		t.Errorf("Title = %q, want first prompt", conv.Title)
	}
	if conv.Query != "songs like Boards of Canada" {
		t.Errorf("Query = %q, want verbatim first prompt", conv.Query)
	}
}

func TestPendingPlaceholder(t *testing.T) {
	conv := NewConversation()
	if conv.PendingPlaceholder() != nil {
		t.Fatal("empty conversation should have no placeholder")
	}

	conv.AddUserMessage("hi")
	ph := conv.AddAssistantMessage()
	got := conv.PendingPlaceholder()
	if got == nil || got.ID != ph.ID {
		t.Fatalf("PendingPlaceholder = %v, want the appended placeholder", got)
	}

	ph.Content = "resolved"
	if conv.PendingPlaceholder() != nil {
		t.Error("resolved message should no longer count as placeholder")
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" {
			t.Fatal("NewID returned empty string")
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestTimestampIDFallback(t *testing.T) {
	a := TimestampID()
	b := TimestampID()
	if a == "" || b == "" {
		t.Fatal("TimestampID returned empty string")
	}
	if a == b {
		t.Errorf("consecutive fallback ids collide: %q", a)
	}
}

func TestClone(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("original")

	clone := conv.Clone()
	clone.Messages[0].Content = "mutated"
	clone.Title = "other"

	if conv.Messages[0].Content != "original" {
		t.Error("mutating clone message changed the original")
	}
	if conv.Title == "other" {
		t.Error("mutating clone title changed the original")
	}
}
