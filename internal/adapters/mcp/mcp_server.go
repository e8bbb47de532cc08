// Package mcp exposes the recommender to AI agents over the Model Context
// Protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/okian/taskflow/internal/domain/model"
	"github.com/okian/taskflow/internal/domain/types"
)

// ServerName and ServerVersion identify the server to MCP clients.
const (
	ServerName    = "TaskFlow Recommendation Server"
	ServerVersion = "1.0.0"
)

// Recommender is the subset of the service the tools call.
type Recommender interface {
	Recommend(ctx context.Context, taskKey string) (types.TaskRecommendations, error)
	CapacityOverview(ctx context.Context) (model.CapacityOverview, error)
	UnassignedTasks(ctx context.Context) ([]model.Task, error)
}

// NewMCPServer initializes and configures the MCP server without starting it.
func NewMCPServer(rec Recommender) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithLogging(),
	)

	h := &toolHandler{rec: rec}

	s.AddTool(mcp.NewTool("recommend_assignees",
		mcp.WithDescription("Rank team members for a task by skill fit and remaining sprint capacity, with an explanation per candidate."),
		mcp.WithString("task_key", mcp.Description("Key of the task to staff, e.g. TASK-101."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Return at most this many candidates (defaults to the configured top N).")),
	), h.handleRecommendAssignees)

	s.AddTool(mcp.NewTool("team_capacity",
		mcp.WithDescription("Summarize each member's workload and the team's total capacity and utilization. Each member carries a band: Healthy below 60%, Busy below 80%, Overloaded otherwise."),
	), h.handleTeamCapacity)

	s.AddTool(mcp.NewTool("list_unassigned_tasks",
		mcp.WithDescription("List tasks that have no assignee yet."),
	), h.handleListUnassignedTasks)

	return s
}

// StartMCPServer serves the tools over stdio until the client disconnects.
func StartMCPServer(_ context.Context, rec Recommender) error {
	return server.ServeStdio(NewMCPServer(rec))
}
