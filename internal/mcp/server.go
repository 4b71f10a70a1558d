// Package mcp exposes the query engine and indexer over the tool protocol:
// seven tools (search_code, get_symbol, get_callers, get_dependents,
// get_dependencies, get_architecture, reindex_file) served on stdio via
// mark3labs/mcp-go, each call logged with a correlation id and duration.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/codeindex/internal/index"
	"github.com/mvp-joe/codeindex/internal/query"
)

// Server owns the mcp-go server instance and the query/index handles it
// wires tools to.
type Server struct {
	engine  *query.Engine
	indexer *index.Indexer
	mcp     *server.MCPServer
}

// New builds a Server with every tool registered, backed by engine and
// indexer.
func New(engine *query.Engine, indexer *index.Indexer) *Server {
	mcpServer := server.NewMCPServer(
		"codeindex-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &Server{engine: engine, indexer: indexer, mcp: mcpServer}
	s.registerTools()
	return s
}

// Serve runs the MCP server on stdio until the context is cancelled or a
// SIGINT/SIGTERM arrives.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("mcp server: %w", err)
		}
	}()

	select {
	case <-sigCh:
		cancel()
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
