// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the completion gateway.
//
// The gateway exposes a single chat endpoint:
//
//	POST /api/chat  {"prompt": "..."}  ->  200 {"response": "..."}
//
// Failures carry an {"error": "..."} body. The client maps status codes to
// typed errors; 429 becomes ErrQuotaExceeded, which is the only failure the
// rest of the application treats specially.
package gateway
