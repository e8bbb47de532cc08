package queue

import (
	"time"

	"github.com/okian/taskflow/internal/domain/scoring"
)

// Job asks a worker to recommend assignees for one task.
// Reply must have room for the result; workers never block on it.
type Job struct {
	BatchID    string
	TaskKey    string
	EnqueuedAt time.Time
	Reply      chan<- Result
}

// Result is a worker's answer to one Job.
type Result struct {
	BatchID         string
	TaskKey         string
	Recommendations []scoring.Recommendation
	Err             error
}

// Respond delivers r on the job's reply channel, stamping the job's batch
// and task. It never blocks; a result with nowhere to go is dropped.
func (j Job) Respond(r Result) {
	if j.Reply == nil {
		return
	}
	r.BatchID = j.BatchID
	r.TaskKey = j.TaskKey
	select {
	case j.Reply <- r:
	default:
	}
}
