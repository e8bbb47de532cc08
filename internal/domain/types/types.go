// Package types contains the response shapes the service hands to its surfaces.
package types

import (
	"time"

	"github.com/okian/taskflow/internal/domain/model"
	"github.com/okian/taskflow/internal/domain/scoring"
)

// Entry is one ranked candidate in a recommendation list.
type Entry struct {
	Rank        int                 `json:"rank"`
	CandidateID string              `json:"candidate_id"`
	Username    string              `json:"username,omitempty"`
	DisplayName string              `json:"display_name"`
	Score       float64             `json:"score"`
	Explanation scoring.Explanation `json:"explanation"`
}

// Entries ranks recs in order, starting at 1.
func Entries(recs []scoring.Recommendation) []Entry {
	out := make([]Entry, len(recs))
	for i, r := range recs {
		out[i] = Entry{
			Rank:        i + 1,
			CandidateID: r.Candidate.ID,
			Username:    r.Candidate.Username,
			DisplayName: r.Candidate.DisplayName,
			Score:       r.Score,
			Explanation: r.Explanation,
		}
	}
	return out
}

// TaskRecommendations is the ranked list for one task.
type TaskRecommendations struct {
	Task            model.Task `json:"task"`
	Recommendations []Entry    `json:"recommendations"`
	GeneratedAt     time.Time  `json:"generated_at"`
}

// BatchError reports one task of a batch that could not be ranked.
type BatchError struct {
	TaskKey string `json:"task_key"`
	Message string `json:"message"`
}

// BatchResult collects the outcome of a batch request in request order.
type BatchResult struct {
	BatchID string                `json:"batch_id"`
	Results []TaskRecommendations `json:"results"`
	Errors  []BatchError          `json:"errors"`
}

// AssignResult is the outcome of an assignment request. Replayed is set
// when the request id was seen before and the original result is returned.
type AssignResult struct {
	RequestID  string           `json:"request_id"`
	Assignment model.Assignment `json:"assignment"`
	Replayed   bool             `json:"replayed"`
}

// Info describes the data the service is serving.
type Info struct {
	Source          string  `json:"source"`
	Users           int     `json:"users"`
	Tasks           int     `json:"tasks"`
	UnassignedTasks int     `json:"unassigned_tasks"`
	TopN            int     `json:"top_n"`
	SkillWeight     float64 `json:"skill_weight"`
	LoadWeight      float64 `json:"load_weight"`
}
