// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the riyl-tui application.
package util

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeFold prepares a string for case-insensitive matching: NFC
// normalization first so composed and decomposed forms compare equal, then
// lowercasing. Both sides of a substring match must go through this.
func NormalizeFold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// ContainsFold reports whether substr occurs in s under NormalizeFold.
// An empty substr matches everything.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(NormalizeFold(s), NormalizeFold(substr))
}
