// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apiclient is the HTTP client for a running tafakkur server.
//
// Front ends use it to send chat turns to a remote serve instance instead
// of calling the providers directly. Server errors surface as Arabic
// messages taken from the server's error envelope; transport failures map
// to a generic connectivity message.
package apiclient
