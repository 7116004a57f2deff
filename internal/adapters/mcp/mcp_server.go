// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xvierd/forest-cli/internal/domain"
	"github.com/xvierd/forest-cli/internal/ports"
)

// defaultHistoryLimit is the number of attempts get_history returns by default.
const defaultHistoryLimit = 10

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server  *server.MCPServer
	session ports.SessionProvider
	history ports.HistoryProvider
	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewServer creates a new MCP server instance. history may be nil, in which
// case get_history is not offered.
func NewServer(session ports.SessionProvider, history ports.HistoryProvider, version string) *Server {
	s := &Server{
		session: session,
		history: history,
	}

	s.server = server.NewMCPServer(
		"forest",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"get_session_state",
			mcp.WithDescription("Get the focus session state: Idle, Running or Withering, remaining time, growth progress, pending warning and forest size"),
		),
		s.handleGetSessionState,
	)

	s.server.AddTool(
		mcp.NewTool(
			"start_session",
			mcp.WithDescription("Start a focus session and plant a sapling. Only possible while Idle"),
		),
		s.handleStartSession,
	)

	s.server.AddTool(
		mcp.NewTool(
			"report_visibility",
			mcp.WithDescription("Report that the app became hidden or visible. Becoming hidden while Running interrupts the session"),
			mcp.WithString(
				"visibility",
				mcp.Required(),
				mcp.Description("The new visibility of the app"),
				mcp.Enum(string(domain.VisibilityHidden), string(domain.VisibilityVisible)),
			),
		),
		s.handleReportVisibility,
	)

	s.server.AddTool(
		mcp.NewTool(
			"confirm_continue",
			mcp.WithDescription("Dismiss the leave warning and keep the session running"),
		),
		s.handleConfirmContinue,
	)

	s.server.AddTool(
		mcp.NewTool(
			"confirm_leave",
			mcp.WithDescription("Accept the leave warning; the tree withers"),
		),
		s.handleConfirmLeave,
	)

	s.server.AddTool(
		mcp.NewTool(
			"list_forest",
			mcp.WithDescription("List the trees grown in this process, oldest first"),
		),
		s.handleListForest,
	)

	if s.history != nil {
		s.server.AddTool(
			mcp.NewTool(
				"get_history",
				mcp.WithDescription("Get grown and withered attempts with a summary"),
				mcp.WithNumber(
					"limit",
					mcp.Description("Maximum number of attempts to return (default: 10)"),
				),
			),
			s.handleGetHistory,
		)
	}
}

// Start begins serving MCP requests via stdio.
func (s *Server) Start(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve answers MCP requests read from in until ctx is cancelled or in is
// closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.running.Store(true)
	defer s.running.Store(false)

	return server.NewStdioServer(s.server).Listen(ctx, in, out)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

// handleGetSessionState handles the get_session_state tool.
func (s *Server) handleGetSessionState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.session.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get session state: %v", err)), nil
	}
	return jsonResult(sessionData(snap))
}

// handleStartSession handles the start_session tool.
func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	started, err := s.session.Start(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start session: %v", err)), nil
	}
	return s.appliedResult(ctx, "started", started)
}

// handleReportVisibility handles the report_visibility tool.
func (s *Server) handleReportVisibility(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("visibility")
	if err != nil {
		return mcp.NewToolResultError("visibility is required: " + err.Error()), nil
	}

	visibility, err := domain.ParseVisibility(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.session.ReportVisibility(ctx, visibility); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to report visibility: %v", err)), nil
	}

	snap, err := s.session.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get session state: %v", err)), nil
	}
	return jsonResult(sessionData(snap))
}

// handleConfirmContinue handles the confirm_continue tool.
func (s *Server) handleConfirmContinue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	applied, err := s.session.ConfirmContinue(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to continue session: %v", err)), nil
	}
	return s.appliedResult(ctx, "applied", applied)
}

// handleConfirmLeave handles the confirm_leave tool.
func (s *Server) handleConfirmLeave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	applied, err := s.session.ConfirmLeave(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to leave session: %v", err)), nil
	}
	return s.appliedResult(ctx, "applied", applied)
}

// handleListForest handles the list_forest tool.
func (s *Server) handleListForest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.session.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list forest: %v", err)), nil
	}

	trees := make([]map[string]interface{}, 0, len(snap.Trees))
	for _, tree := range snap.Trees {
		trees = append(trees, treeData(tree))
	}

	return jsonResult(map[string]interface{}{
		"count": len(trees),
		"trees": trees,
	})
}

// handleGetHistory handles the get_history tool.
func (s *Server) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultHistoryLimit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	attempts, err := s.history.GetRecentAttempts(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get history: %v", err)), nil
	}
	summary, err := s.history.GetSummary(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get history: %v", err)), nil
	}

	attemptList := make([]map[string]interface{}, 0, len(attempts))
	for _, a := range attempts {
		item := map[string]interface{}{
			"id":              a.ID,
			"outcome":         string(a.Outcome),
			"started_at":      a.StartedAt.Format(time.RFC3339),
			"ended_at":        a.EndedAt.Format(time.RFC3339),
			"focused_seconds": a.FocusedSeconds,
		}
		if a.TreeID != "" {
			item["tree_id"] = a.TreeID
		}
		attemptList = append(attemptList, item)
	}

	return jsonResult(map[string]interface{}{
		"summary": map[string]interface{}{
			"attempts":        summary.Attempts(),
			"grown":           summary.Grown,
			"withered":        summary.Withered,
			"focused_seconds": summary.FocusedSeconds,
			"success_rate":    summary.SuccessRate(),
		},
		"attempts": attemptList,
	})
}

// appliedResult reports whether a command took effect alongside the state
// it left behind.
func (s *Server) appliedResult(ctx context.Context, key string, applied bool) (*mcp.CallToolResult, error) {
	snap, err := s.session.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get session state: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		key:       applied,
		"session": sessionData(snap),
	})
}

func sessionData(snap domain.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"state":             string(snap.State),
		"state_label":       domain.GetStateLabel(snap.State),
		"remaining_seconds": snap.RemainingSeconds,
		"remaining":         domain.FormatRemaining(snap.RemainingSeconds),
		"duration_seconds":  snap.DurationSeconds,
		"progress":          snap.Progress,
		"stage":             string(snap.Stage()),
		"warning":           snap.Warning,
		"celebrating":       snap.Celebrating,
		"forest_size":       snap.ForestSize(),
	}
}

func treeData(tree domain.Tree) map[string]interface{} {
	data := map[string]interface{}{
		"id":         tree.ID,
		"planted_at": tree.PlantedAt.Format(time.RFC3339),
	}
	if tree.Branch != "" {
		data["branch"] = tree.Branch
	}
	if tree.Repository != "" {
		data["repository"] = tree.Repository
	}
	return data
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
