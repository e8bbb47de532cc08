package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/taskflow/internal/adapters/repository"
	"github.com/okian/taskflow/internal/config"
	"github.com/okian/taskflow/internal/domain/model"
	"github.com/okian/taskflow/internal/domain/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with a clean TASKFLOW_ environment.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfig, "")

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: dev")
	assert.Contains(t, out, "Commit:  none")
}

func TestRecommendCommand(t *testing.T) {
	t.Run("json output ranks the default team", func(t *testing.T) {
		out, err := run(t, "recommend", "TASK-101", "--output", "json")
		require.NoError(t, err)

		var res types.TaskRecommendations
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		require.Len(t, res.Recommendations, 3)
		assert.Equal(t, "Stacey", res.Recommendations[0].DisplayName)
		assert.Equal(t, 0.82, res.Recommendations[0].Score)
		assert.Equal(t, 1, res.Recommendations[0].Rank)
	})

	t.Run("table output", func(t *testing.T) {
		out, err := run(t, "recommend", "TASK-101")
		require.NoError(t, err)
		assert.Contains(t, out, "TASK-101")
		assert.Contains(t, out, "Stacey")
		assert.Contains(t, out, "0.82")
		assert.Contains(t, out, "React(4/3), JavaScript(5/4)")
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := run(t, "recommend", "TASK-999")
		assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	})

	t.Run("bad output format", func(t *testing.T) {
		_, err := run(t, "recommend", "TASK-101", "-o", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown output")
	})

	t.Run("requires a task key", func(t *testing.T) {
		_, err := run(t, "recommend")
		assert.Error(t, err)
	})

	t.Run("missing fixture file", func(t *testing.T) {
		_, err := run(t, "--users", "does-not-exist.json", "recommend", "TASK-101")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load fixtures")
	})
}

func TestCapacityCommand(t *testing.T) {
	t.Run("json output", func(t *testing.T) {
		out, err := run(t, "capacity", "-o", "json")
		require.NoError(t, err)

		var overview model.CapacityOverview
		require.NoError(t, json.Unmarshal([]byte(out), &overview))
		assert.Len(t, overview.Members, 3)
		assert.Equal(t, 127.0, overview.Totals.TotalCapacity)
		assert.Equal(t, 90.0, overview.Totals.TotalLoad)
		for _, m := range overview.Members {
			assert.Equal(t, model.UtilizationBand(m.Workload.UtilizationPercent), m.Workload.Band, m.Username)
		}
	})

	t.Run("table output", func(t *testing.T) {
		out, err := run(t, "capacity")
		require.NoError(t, err)
		assert.Contains(t, out, "stacey.johnson")
		assert.Contains(t, out, "Team load 90/127 points")
		assert.Contains(t, out, "60.0% Busy")
	})
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("TASKFLOW_TOP_N", "0")
	_, err := run(t, "capacity")
	assert.Error(t, err)
}

func TestFitLabel(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.82, StrongFit},
		{0.75, StrongFit},
		{0.6, GoodFit},
		{0.44, FairFit},
		{0.06, WeakFit},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, fitLabel(tc.score), "score %v", tc.score)
	}
}

func TestColorUtilization(t *testing.T) {
	cases := []struct {
		percent float64
		band    string
	}{
		{59.9, model.BandHealthy},
		{60, model.BandBusy},
		{79.9, model.BandBusy},
		{80, model.BandOverloaded},
	}
	for _, tc := range cases {
		band := model.UtilizationBand(tc.percent)
		assert.Equal(t, tc.band, band, "percent %v", tc.percent)
		assert.Contains(t, colorUtilization(tc.percent, band), tc.band)
	}
}

func TestNewHandler(t *testing.T) {
	t.Setenv(config.EnvConfig, "")
	s := &settings{}
	root := NewRootCmd()
	root.SetContext(context.Background())
	require.NoError(t, s.setup(root))

	svc, err := s.startService(context.Background())
	require.NoError(t, err)
	t.Cleanup(svc.Stop)

	srv := httptest.NewServer(newHandler(context.Background(), svc))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/recommendations/TASK-102")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res types.TaskRecommendations
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.NotEmpty(t, res.Recommendations)
	assert.Equal(t, "Maya", res.Recommendations[0].DisplayName)

	docs, err := http.Get(srv.URL + "/openapi.yaml")
	require.NoError(t, err)
	defer docs.Body.Close()
	assert.Equal(t, http.StatusOK, docs.StatusCode)

	var body bytes.Buffer
	_, _ = body.ReadFrom(docs.Body)
	assert.True(t, strings.HasPrefix(body.String(), "openapi:"))
}
