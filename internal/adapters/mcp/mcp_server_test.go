package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcp_internal "github.com/okian/taskflow/internal/adapters/mcp"
	service "github.com/okian/taskflow/internal/app"
	"github.com/okian/taskflow/internal/domain/model"
	"github.com/okian/taskflow/internal/domain/types"
	"github.com/okian/taskflow/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startService(t *testing.T) *service.Service {
	t.Helper()
	require.NoError(t, logger.Init())
	svc := service.New(service.WithWorkerCount(1))
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(svc.Stop)
	return svc
}

func call(t *testing.T, name string, args map[string]any, rec mcp_internal.Recommender) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(rec)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServer_RecommendAssignees(t *testing.T) {
	svc := startService(t)

	t.Run("ranks the team for a task", func(t *testing.T) {
		res := call(t, "recommend_assignees", map[string]any{"task_key": "TASK-101"}, svc)
		require.False(t, res.IsError, text(res))

		var out types.TaskRecommendations
		require.NoError(t, json.Unmarshal([]byte(text(res)), &out))
		require.Len(t, out.Recommendations, 3)
		assert.Equal(t, "Stacey", out.Recommendations[0].DisplayName)
		assert.Equal(t, 0.82, out.Recommendations[0].Score)
		assert.Equal(t, "React(4/3), JavaScript(5/4)", out.Recommendations[0].Explanation.SkillMatch)
	})

	t.Run("honours limit", func(t *testing.T) {
		res := call(t, "recommend_assignees", map[string]any{"task_key": "TASK-102", "limit": 1.0}, svc)
		require.False(t, res.IsError)

		var out types.TaskRecommendations
		require.NoError(t, json.Unmarshal([]byte(text(res)), &out))
		require.Len(t, out.Recommendations, 1)
		assert.Equal(t, "Maya", out.Recommendations[0].DisplayName)
	})

	t.Run("missing task_key", func(t *testing.T) {
		res := call(t, "recommend_assignees", map[string]any{"task_key": ""}, svc)
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, text(res), "task_key is required")
	})

	t.Run("negative limit", func(t *testing.T) {
		res := call(t, "recommend_assignees", map[string]any{"task_key": "TASK-101", "limit": -2.0}, svc)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "limit must not be negative")
	})

	t.Run("unknown task", func(t *testing.T) {
		res := call(t, "recommend_assignees", map[string]any{"task_key": "NOPE-1"}, svc)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "task not found")
	})
}

func TestMCPServer_TeamCapacity(t *testing.T) {
	svc := startService(t)

	res := call(t, "team_capacity", nil, svc)
	require.False(t, res.IsError)

	var out model.CapacityOverview
	require.NoError(t, json.Unmarshal([]byte(text(res)), &out))
	assert.Len(t, out.Members, 3)
	assert.Equal(t, 127.0, out.Totals.TotalCapacity)
	assert.Equal(t, 90.0, out.Totals.TotalLoad)
	assert.Equal(t, "stacey.johnson", out.Members[0].Username)
	assert.Equal(t, model.BandBusy, out.Members[0].Workload.Band)
}

func TestMCPServer_ListUnassignedTasks(t *testing.T) {
	svc := startService(t)

	res := call(t, "list_unassigned_tasks", nil, svc)
	require.False(t, res.IsError)

	var out []model.Task
	require.NoError(t, json.Unmarshal([]byte(text(res)), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "TASK-101", out[0].Key)
}

func TestMCPServer_ServiceStopped(t *testing.T) {
	svc := service.New()

	res := call(t, "team_capacity", nil, svc)
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "not started")
}
