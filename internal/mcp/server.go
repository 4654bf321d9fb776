package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/bugboard/internal/models"
	"github.com/joescharf/bugboard/internal/store"
)

// Server exposes a bug collection as MCP tools.
type Server struct {
	store       store.Store
	environment string
	version     string
}

// NewServer creates the MCP server wrapper around s.
func NewServer(s store.Store, environment, version string) *Server {
	return &Server{store: s, environment: environment, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("bugboard", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.listBugsTool())
	srv.AddTool(s.statsTool())
	srv.AddTool(s.addBugTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.MCPServer())
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

type bugOut struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Severity    string `json:"severity"`
	Status      string `json:"status"`
	Created     string `json:"created"`
	Description string `json:"description,omitempty"`
}

func toBugOut(b models.Bug) bugOut {
	return bugOut{
		ID:          b.ID,
		Title:       b.Title,
		Severity:    string(b.Severity),
		Status:      string(b.Status),
		Created:     b.CreatedDate(),
		Description: b.Description,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// bug_list
func (s *Server) listBugsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("bug_list",
		mcp.WithDescription("List bugs in insertion order. Returns a JSON array of bugs with id, title, severity, status, created and description."),
		mcp.WithString("severity", mcp.Description("Filter: all, critical, high, medium, low (default: all)")),
	)
	return tool, s.handleListBugs
}

func (s *Server) handleListBugs(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := models.ParseFilter(request.GetString("severity", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	bugs := s.store.FilteredBugs(filter)
	out := make([]bugOut, len(bugs))
	for i, b := range bugs {
		out[i] = toBugOut(b)
	}
	return jsonResult(out)
}

// bug_stats
func (s *Server) statsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("bug_stats",
		mcp.WithDescription("Get bug statistics: total, per-severity and per-status counts, plus the environment label."),
	)
	return tool, s.handleStats
}

func (s *Server) handleStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"environment": s.environment,
		"stats":       s.store.Statistics(),
	})
}

// bug_add
func (s *Server) addBugTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("bug_add",
		mcp.WithDescription("Add a bug. New bugs are open and dated today. Returns the created bug as JSON."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Bug title (must not be blank)")),
		mcp.WithString("severity", mcp.Description("Severity: critical, high, medium, low (default: medium)")),
		mcp.WithString("description", mcp.Description("Bug description")),
	)
	return tool, s.handleAddBug
}

func (s *Server) handleAddBug(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}

	draft := models.NewDraft()
	draft.Title = title
	draft.Description = request.GetString("description", "")
	if sev := request.GetString("severity", ""); sev != "" {
		parsed, err := models.ParseSeverity(sev)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		draft.Severity = parsed
	}

	bug, err := s.store.AddBug(draft)
	if err != nil {
		if errors.Is(err, store.ErrEmptyTitle) {
			return mcp.NewToolResultError("title must not be blank"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to add bug: %v", err)), nil
	}
	return jsonResult(toBugOut(bug))
}
