// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for riyl-tui.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jeranaias/riyl-tui/internal/model"
)

// =============================================================================
// CONVERSATION CODEC
// =============================================================================

// EncodeConversations serializes the conversation list as a JSON array.
// The on-disk order is the in-memory order (most recent first).
func EncodeConversations(convs []*model.Conversation) ([]byte, error) {
	if convs == nil {
		convs = []*model.Conversation{}
	}
	data, err := json.MarshalIndent(convs, "", "  ")
	if err != nil {
		return nil, &StoreError{Message: "encode conversations", Cause: err}
	}
	return data, nil
}

// DecodeConversations parses a JSON conversation array. Any malformed input
// returns an error; callers treat that as an empty history rather than
// failing startup.
func DecodeConversations(data []byte) ([]*model.Conversation, error) {
	var convs []*model.Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		return nil, &StoreError{Message: "decode conversations", Cause: err}
	}
	for _, c := range convs {
		if c == nil || c.ID == "" {
			return nil, &StoreError{Message: "decode conversations", Cause: fmt.Errorf("conversation missing id")}
		}
	}
	return convs, nil
}

// SaveConversations encodes and writes the conversation list under
// ConversationsKey.
func SaveConversations(store BlobStore, convs []*model.Conversation) error {
	data, err := EncodeConversations(convs)
	if err != nil {
		return err
	}
	return store.Put(ConversationsKey, data)
}

// LoadConversations reads and decodes the conversation list. A missing key
// yields an empty list and no error; a corrupt blob yields the decode error
// so the caller can log it before starting fresh.
func LoadConversations(store BlobStore) ([]*model.Conversation, error) {
	data, err := store.Get(ConversationsKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []*model.Conversation{}, nil
		}
		return nil, err
	}
	return DecodeConversations(data)
}
