// Package mcp provides an MCP (Model Context Protocol) server adapter for sercha-rag.
// It lets AI assistants search indexed documents and read their chunks.
package mcp

import "errors"

var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("mcp: search service is required")

	// ErrMissingIndexService is returned by chunk handlers when no index service is wired.
	ErrMissingIndexService = errors.New("mcp: index service is not configured")
)
