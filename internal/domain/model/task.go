package model

import (
	"fmt"
	"slices"
	"strings"
)

// Task statuses used by the directory.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
)

// SkillRequirement is a minimum proficiency a task asks for.
type SkillRequirement struct {
	Name     string `json:"name" yaml:"name"`
	MinLevel int    `json:"minLevel" yaml:"minLevel"`
}

// Task is a unit of work awaiting an assignee.
type Task struct {
	Key            string             `json:"key" yaml:"key"`
	Summary        string             `json:"summary,omitempty" yaml:"summary"`
	Description    string             `json:"description,omitempty" yaml:"description"`
	Project        string             `json:"project,omitempty" yaml:"project"`
	IssueType      string             `json:"issueType,omitempty" yaml:"issueType"`
	Status         string             `json:"status,omitempty" yaml:"status"`
	Priority       string             `json:"priority,omitempty" yaml:"priority"`
	Assignee       string             `json:"assignee,omitempty" yaml:"assignee"`
	DueDate        string             `json:"dueDate,omitempty" yaml:"dueDate"`
	Labels         []string           `json:"labels,omitempty" yaml:"labels"`
	StoryPoints    float64            `json:"storyPoints" yaml:"storyPoints"`
	RequiredSkills []SkillRequirement `json:"requiredSkills" yaml:"requiredSkills"`
}

// Validate checks the fields the scoring engine depends on.
// An empty RequiredSkills list is valid.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Key) == "" {
		return fmt.Errorf("%w: task key is empty", ErrInvalidInput)
	}
	if !finite(t.StoryPoints) {
		return fmt.Errorf("%w: task %s: storyPoints is not a finite number", ErrInvalidInput, t.Key)
	}
	if t.StoryPoints < 0 {
		return fmt.Errorf("%w: task %s: negative storyPoints", ErrInvalidInput, t.Key)
	}
	for i, r := range t.RequiredSkills {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("%w: task %s: required skill %d has no name", ErrInvalidInput, t.Key, i)
		}
		if r.MinLevel <= 0 {
			return fmt.Errorf("%w: task %s: required skill %q has non-positive minLevel %d", ErrInvalidInput, t.Key, r.Name, r.MinLevel)
		}
	}
	return nil
}

// IsAssigned reports whether the task has an assignee.
func (t *Task) IsAssigned() bool {
	return strings.TrimSpace(t.Assignee) != ""
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() Task {
	out := *t
	out.Labels = slices.Clone(t.Labels)
	out.RequiredSkills = slices.Clone(t.RequiredSkills)
	return out
}
