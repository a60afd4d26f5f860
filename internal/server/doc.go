// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes the reasoning pipeline over a local HTTP API.
//
// Endpoints:
//   - POST /api/chat    run a full reasoning turn and return the parsed reply
//   - GET  /api/health  report server status and per-provider availability
//   - GET  /api/test    connectivity probe for clients
//
// All error responses share a single JSON envelope with an Arabic message,
// optional detail list, timestamp, and request path. The server binds to
// localhost only.
package server
