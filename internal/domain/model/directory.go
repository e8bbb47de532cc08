package model

import "time"

// Assignment records one task handed to one user.
type Assignment struct {
	ID                  string    `json:"id"`
	TaskKey             string    `json:"taskKey"`
	Assignee            string    `json:"assignee"`
	AssigneeDisplayName string    `json:"assigneeDisplayName"`
	StoryPoints         float64   `json:"storyPoints"`
	AssignedAt          time.Time `json:"assignedAt"`
	Task                Task      `json:"task"`
}

// Workload summarizes how loaded a user is.
type Workload struct {
	Username           string  `json:"username"`
	DisplayName        string  `json:"displayName"`
	AssignedTasks      int     `json:"assignedTasks"`
	AssignedPoints     float64 `json:"assignedPoints"`
	PointsPerSprint    float64 `json:"pointsPerSprint"`
	CurrentLoad        float64 `json:"currentLoad"`
	UtilizationPercent float64 `json:"utilizationPercent"`
	AvailablePoints    float64 `json:"availablePoints"`
	Band               string  `json:"band"`
}

// Utilization bands of the capacity heatmap.
const (
	BandHealthy    = "Healthy"
	BandBusy       = "Busy"
	BandOverloaded = "Overloaded"
)

// UtilizationBand places a utilization percent in its heatmap band:
// below 60 is healthy, below 80 busy, anything else overloaded.
func UtilizationBand(percent float64) string {
	switch {
	case percent < 60:
		return BandHealthy
	case percent < 80:
		return BandBusy
	default:
		return BandOverloaded
	}
}

// MemberCapacity is one row of the team capacity overview.
type MemberCapacity struct {
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName"`
	TimeZone    string   `json:"timeZone"`
	Workload    Workload `json:"workload"`
}

// TeamTotals aggregates capacity over the whole team.
type TeamTotals struct {
	TotalCapacity      float64 `json:"totalCapacity"`
	TotalLoad          float64 `json:"totalLoad"`
	TotalAssigned      float64 `json:"totalAssigned"`
	AverageUtilization float64 `json:"averageUtilization"`
}

// CapacityOverview is the per-member workload plus team totals.
type CapacityOverview struct {
	Members []MemberCapacity `json:"members"`
	Totals  TeamTotals       `json:"teamTotals"`
}
