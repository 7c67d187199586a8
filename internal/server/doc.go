// Package server implements the MCP (Model Context Protocol) server for the
// barcode highlight engine.
//
// This package provides a JSON-RPC 2.0 server that exposes coordinate
// mapping, highlight building, hit testing and overlay rendering as MCP
// tools, together with a live session fed by a detector.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Geometry:
//   - transform_point: Map frame points to display points
//   - bounding_box: Axis-aligned box of a point set
//
// Highlights:
//   - highlights_build: Detector output to display-space highlights
//   - highlights_hit_test: Resolve a tap against highlights
//   - highlights_render: Draw highlights over a frame image
//
// Session:
//   - session_publish_frame: Build and publish one frame
//   - session_set_viewport: Set the display layout and tap tolerance
//   - session_tap: Hit-test against the latest published frame
//   - session_snapshot: Read the latest published frame
//
// Settings omitted from a call (resize mode, platform, fuzzy distance) fall
// back to the server's config.Config.
//
// # Frame Caching
//
// Frame images passed to highlights_render are decoded once and cached by
// path for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(cfg, pipeline, logger)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal(err)
//	}
package server
