package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/okian/taskflow/internal/domain/model"
	"github.com/okian/taskflow/internal/domain/types"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Fit labels by score.
const (
	StrongFit = "Strong"
	GoodFit   = "Good"
	FairFit   = "Fair"
	WeakFit   = "Weak"
)

// Color variables for console output.
var (
	strongColor = color.New(color.FgGreen, color.Bold)
	goodColor   = color.New(color.FgYellow)
	fairColor   = color.New(color.FgCyan)
	weakColor   = color.New(color.FgHiBlack)

	healthyColor    = color.New(color.FgGreen)
	busyColor       = color.New(color.FgYellow)
	overloadedColor = color.New(color.FgRed, color.Bold)
)

// fitLabel names the band a score falls in.
func fitLabel(score float64) string {
	switch {
	case score >= 0.75:
		return StrongFit
	case score >= 0.5:
		return GoodFit
	case score >= 0.25:
		return FairFit
	default:
		return WeakFit
	}
}

func colorFitLabel(score float64) string {
	text := fitLabel(score)
	switch text {
	case StrongFit:
		return strongColor.Sprint(text)
	case GoodFit:
		return goodColor.Sprint(text)
	case FairFit:
		return fairColor.Sprint(text)
	default:
		return weakColor.Sprint(text)
	}
}

// colorUtilization renders a utilization percent in its band's color.
func colorUtilization(percent float64, band string) string {
	text := strconv.FormatFloat(percent, 'f', 1, 64) + "% " + band
	switch band {
	case model.BandHealthy:
		return healthyColor.Sprint(text)
	case model.BandBusy:
		return busyColor.Sprint(text)
	default:
		return overloadedColor.Sprint(text)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeRecommendations prints a ranked list as a table.
func writeRecommendations(w io.Writer, res types.TaskRecommendations) error {
	if _, err := fmt.Fprintf(w, "%s  %s\n", res.Task.Key, res.Task.Summary); err != nil {
		return err
	}
	if len(res.Recommendations) == 0 {
		_, err := fmt.Fprintln(w, "No candidates.")
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Rank", "Name", "Score", "Fit", "Skill Match", "Current Load", "Available"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(res.Recommendations))
	for _, e := range res.Recommendations {
		skills := e.Explanation.SkillMatch
		if skills == "" {
			skills = "-"
		}
		data = append(data, []string{
			strconv.Itoa(e.Rank),
			e.DisplayName,
			e.Explanation.Score,
			colorFitLabel(e.Score),
			skills,
			e.Explanation.CurrentLoad,
			e.Explanation.Availability,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCapacity prints the team overview as a table with a totals line.
func writeCapacity(w io.Writer, overview model.CapacityOverview) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Member", "Username", "Load", "Capacity", "Utilization", "Available", "Tasks"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(overview.Members))
	for _, m := range overview.Members {
		data = append(data, []string{
			m.DisplayName,
			m.Username,
			formatPoints(m.Workload.CurrentLoad),
			formatPoints(m.Workload.PointsPerSprint),
			colorUtilization(m.Workload.UtilizationPercent, m.Workload.Band),
			formatPoints(m.Workload.AvailablePoints),
			strconv.Itoa(m.Workload.AssignedTasks),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	t := overview.Totals
	_, err := fmt.Fprintf(w, "Team load %s/%s points, average utilization %.1f%%\n",
		formatPoints(t.TotalLoad), formatPoints(t.TotalCapacity), t.AverageUtilization)
	return err
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
