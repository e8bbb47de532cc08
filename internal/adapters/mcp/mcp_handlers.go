package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	rec Recommender
}

func (h *toolHandler) handleRecommendAssignees(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := strings.TrimSpace(request.GetString("task_key", ""))
	if key == "" {
		return mcp.NewToolResultError("task_key is required"), nil
	}
	limit := request.GetInt("limit", 0)
	if limit < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("limit must not be negative, got %d", limit)), nil
	}

	res, err := h.rec.Recommend(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recommendation failed: %v", err)), nil
	}
	if limit > 0 && limit < len(res.Recommendations) {
		res.Recommendations = res.Recommendations[:limit]
	}
	return jsonResult(res)
}

func (h *toolHandler) handleTeamCapacity(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	overview, err := h.rec.CapacityOverview(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("capacity lookup failed: %v", err)), nil
	}
	return jsonResult(overview)
}

func (h *toolHandler) handleListUnassignedTasks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := h.rec.UnassignedTasks(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("task lookup failed: %v", err)), nil
	}
	return jsonResult(tasks)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
