package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (s *Server) registerTools() {
	s.addSearchCode()
	s.addGetSymbol()
	s.addGetCallers()
	s.addGetDependents()
	s.addGetDependencies()
	s.addGetArchitecture()
	s.addReindexFile()
}

// withTiming wraps a tool handler with a correlation id and a
// "<tool> completed in <t>ms" log line on stderr, matching the
// per-call observability the daemon's other surfaces emit.
func withTiming(name string, fn func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := uuid.NewString()
		start := time.Now()
		result, err := fn(ctx, req)
		log.Printf("[%s] %s completed in %dms", id, name, time.Since(start).Milliseconds())
		return result, err
	}
}

func stringArg(req mcp.CallToolRequest, key string) (string, bool) {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", false
	}
	v, ok := args[key].(string)
	return v, ok
}

func intArg(req mcp.CallToolRequest, key string, def int) int {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return def
	}
	v, ok := args[key].(float64)
	if !ok {
		return def
	}
	return int(v)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) addSearchCode() {
	tool := mcp.NewTool(
		"search_code",
		mcp.WithDescription("Full-text search over indexed symbols, ranked by importance then relevance."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 15)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcp.AddTool(tool, withTiming("search_code", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, ok := stringArg(req, "query")
		if !ok || q == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}
		limit := intArg(req, "limit", 15)
		results, err := s.engine.Search(q, limit)
		if err != nil {
			return nil, fmt.Errorf("search_code: %w", err)
		}
		return jsonResult(results)
	}))
}

func (s *Server) addGetSymbol() {
	tool := mcp.NewTool(
		"get_symbol",
		mcp.WithDescription("Full context for a symbol: its body, dependencies, dependents, and same-file siblings."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Symbol name or qualified name")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcp.AddTool(tool, withTiming("get_symbol", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, ok := stringArg(req, "name")
		if !ok || name == "" {
			return mcp.NewToolResultError("name parameter is required"), nil
		}
		result, err := s.engine.ContextFor(name)
		if err != nil {
			return nil, fmt.Errorf("get_symbol: %w", err)
		}
		if result == nil {
			return mcp.NewToolResultText(fmt.Sprintf("no symbol matching %q", name)), nil
		}
		return jsonResult(result)
	}))
}

func (s *Server) addGetCallers() {
	tool := mcp.NewTool(
		"get_callers",
		mcp.WithDescription("Symbols that call or reference the given symbol."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Symbol name or qualified name")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcp.AddTool(tool, withTiming("get_callers", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, ok := stringArg(req, "name")
		if !ok || name == "" {
			return mcp.NewToolResultError("name parameter is required"), nil
		}
		result, err := s.engine.Callers(name)
		if err != nil {
			return nil, fmt.Errorf("get_callers: %w", err)
		}
		return jsonResult(result)
	}))
}

func (s *Server) addGetDependents() {
	tool := mcp.NewTool(
		"get_dependents",
		mcp.WithDescription("Files that transitively import the given file, breadth-first by import depth."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Root-relative file path")),
		mcp.WithNumber("max_depth", mcp.Description("Maximum traversal depth (default 10)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcp.AddTool(tool, withTiming("get_dependents", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, ok := stringArg(req, "file")
		if !ok || file == "" {
			return mcp.NewToolResultError("file parameter is required"), nil
		}
		maxDepth := intArg(req, "max_depth", 10)
		result, err := s.engine.Impact(file, maxDepth)
		if err != nil {
			return nil, fmt.Errorf("get_dependents: %w", err)
		}
		return jsonResult(result)
	}))
}

func (s *Server) addGetDependencies() {
	tool := mcp.NewTool(
		"get_dependencies",
		mcp.WithDescription("Symbols the given symbol calls or references."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Symbol name or qualified name")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcp.AddTool(tool, withTiming("get_dependencies", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, ok := stringArg(req, "name")
		if !ok || name == "" {
			return mcp.NewToolResultError("name parameter is required"), nil
		}
		result, err := s.engine.Dependencies(name)
		if err != nil {
			return nil, fmt.Errorf("get_dependencies: %w", err)
		}
		return jsonResult(result)
	}))
}

func (s *Server) addGetArchitecture() {
	tool := mcp.NewTool(
		"get_architecture",
		mcp.WithDescription("Module-level partition of the codebase: file and symbol counts, and cross-module dependencies."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcp.AddTool(tool, withTiming("get_architecture", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := s.engine.Modules()
		if err != nil {
			return nil, fmt.Errorf("get_architecture: %w", err)
		}
		return jsonResult(result)
	}))
}

func (s *Server) addReindexFile() {
	tool := mcp.NewTool(
		"reindex_file",
		mcp.WithDescription("Reparse and update the index for a single file. Used after an edit or on a deletion (file no longer on disk removes its row)."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Root-relative file path")),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.mcp.AddTool(tool, withTiming("reindex_file", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file, ok := stringArg(req, "file")
		if !ok || file == "" {
			return mcp.NewToolResultError("file parameter is required"), nil
		}
		if err := s.indexer.ReindexFile(ctx, file); err != nil {
			return nil, fmt.Errorf("reindex_file: %w", err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("reindexed %s", file)), nil
	}))
}
