// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server serves the browser terminal.
//
// The page is embedded in the binary. It opens a WebSocket, forwards the
// keys the terminal reacts to (Enter, ArrowUp, ArrowDown, Tab) together with
// the current input value, and applies the operations sent back. Every
// connection gets its own terminal session; all sessions share one store.
//
// # Endpoints
//
//   - GET /          - terminal page
//   - GET /static/*  - page assets
//   - GET /ws        - terminal WebSocket
//   - GET /health    - health check
//
// # Protocol
//
//	client: {"type":"key","key":"Enter","value":"open yt"}
//	server: {"type":"hello","session":"<uuid>","prompt":"$ "}
//	server: {"type":"update","ops":[{"op":"append","html":"..."}],"input":""}
//
// # Usage
//
//	srv := server.New(server.Options{Listen: ":8080", Records: records})
//	go srv.Start()
//	...
//	srv.Shutdown(ctx)
package server
