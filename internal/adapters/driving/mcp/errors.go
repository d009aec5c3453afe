// Package mcp provides an MCP (Model Context Protocol) server adapter for Minute.
// It enables AI assistants like Claude to query processed meetings, analyses
// and pipeline status.
package mcp

import "errors"

// ErrMissingMeetingService is returned when the meeting service is not provided.
var ErrMissingMeetingService = errors.New("mcp: meeting service is required")
