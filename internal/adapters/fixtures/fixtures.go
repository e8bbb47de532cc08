// Package fixtures loads the JIRA-style users and tasks the directory serves
// from static JSON or YAML files, and ships a small built-in data set used
// when no files are configured.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/taskflow/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Data source names reported by DataSet.Source.
const (
	SourceFixtures = "fixtures"
	SourceFallback = "fallback"
)

// Format identifies a fixture encoding.
type Format string

// Supported fixture encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

//go:embed data/users.json data/tasks.json
var fallbackFS embed.FS

// DataSet is a roster and its tasks.
type DataSet struct {
	Users  []model.Candidate
	Tasks  []model.Task
	Source string
}

type rawUser struct {
	ID           string          `json:"id" yaml:"id"`
	Username     string          `json:"username" yaml:"username"`
	DisplayName  string          `json:"displayName" yaml:"displayName"`
	EmailAddress string          `json:"emailAddress" yaml:"emailAddress"`
	TimeZone     string          `json:"timeZone" yaml:"timeZone"`
	Skills       *[]model.Skill  `json:"skills" yaml:"skills"`
	Capacity     *model.Capacity `json:"capacity" yaml:"capacity"`
}

type rawTask struct {
	Key            string                    `json:"key" yaml:"key"`
	Summary        string                    `json:"summary" yaml:"summary"`
	Description    string                    `json:"description" yaml:"description"`
	Project        string                    `json:"project" yaml:"project"`
	IssueType      string                    `json:"issueType" yaml:"issueType"`
	Status         string                    `json:"status" yaml:"status"`
	Priority       string                    `json:"priority" yaml:"priority"`
	Assignee       string                    `json:"assignee" yaml:"assignee"`
	DueDate        string                    `json:"dueDate" yaml:"dueDate"`
	Labels         []string                  `json:"labels" yaml:"labels"`
	StoryPoints    float64                   `json:"storyPoints" yaml:"storyPoints"`
	RequiredSkills *[]model.SkillRequirement `json:"requiredSkills" yaml:"requiredSkills"`
}

type usersDocument struct {
	Users []rawUser `json:"users" yaml:"users"`
}

type tasksDocument struct {
	Tasks []rawTask `json:"tasks" yaml:"tasks"`
}

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadUsers reads a {"users": [...]} document from path.
func LoadUsers(path string) ([]model.Candidate, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users fixture: %w", err)
	}
	users, err := DecodeUsers(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return users, nil
}

// LoadTasks reads a {"tasks": [...]} document from path.
func LoadTasks(path string) ([]model.Task, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks fixture: %w", err)
	}
	tasks, err := DecodeTasks(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tasks, nil
}

// DecodeUsers parses and validates a users document. A user without a
// skills or capacity attribute is rejected instead of defaulted.
func DecodeUsers(data []byte, format Format) ([]model.Candidate, error) {
	var doc usersDocument
	if err := unmarshal(data, format, &doc); err != nil {
		return nil, err
	}

	users := make([]model.Candidate, 0, len(doc.Users))
	seen := make(map[string]struct{}, len(doc.Users))
	for i := range doc.Users {
		c, err := doc.Users[i].candidate(i)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: user id %s", ErrDuplicateRecord, c.ID)
		}
		seen[c.ID] = struct{}{}
		users = append(users, c)
	}
	return users, nil
}

// DecodeTasks parses and validates a tasks document. A task without a
// requiredSkills attribute is rejected instead of defaulted.
func DecodeTasks(data []byte, format Format) ([]model.Task, error) {
	var doc tasksDocument
	if err := unmarshal(data, format, &doc); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(doc.Tasks))
	seen := make(map[string]struct{}, len(doc.Tasks))
	for i := range doc.Tasks {
		t, err := doc.Tasks[i].task(i)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t.Key]; dup {
			return nil, fmt.Errorf("%w: task key %s", ErrDuplicateRecord, t.Key)
		}
		seen[t.Key] = struct{}{}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// DecodeRequest parses an ad hoc scoring request of the form
// {"task": {...}, "roster": [...]} with the same checks as the fixture files.
// Roster entries may repeat; they are scored as given.
func DecodeRequest(data []byte) (model.Task, []model.Candidate, error) {
	var req struct {
		Task   *rawTask  `json:"task"`
		Roster []rawUser `json:"roster"`
	}
	if err := unmarshal(data, FormatJSON, &req); err != nil {
		return model.Task{}, nil, err
	}
	if req.Task == nil {
		return model.Task{}, nil, fmt.Errorf("%w: request has no task", model.ErrInvalidInput)
	}
	task, err := req.Task.task(0)
	if err != nil {
		return model.Task{}, nil, err
	}
	roster := make([]model.Candidate, 0, len(req.Roster))
	for i := range req.Roster {
		c, err := req.Roster[i].candidate(i)
		if err != nil {
			return model.Task{}, nil, err
		}
		roster = append(roster, c)
	}
	return task, roster, nil
}

func (raw *rawUser) candidate(i int) (model.Candidate, error) {
	if raw.Skills == nil {
		return model.Candidate{}, fmt.Errorf("%w: user %d (%s) has no skills", model.ErrInvalidInput, i, raw.ID)
	}
	if raw.Capacity == nil {
		return model.Candidate{}, fmt.Errorf("%w: user %d (%s) has no capacity", model.ErrInvalidInput, i, raw.ID)
	}
	c := model.Candidate{
		ID:           raw.ID,
		Username:     raw.Username,
		DisplayName:  raw.DisplayName,
		EmailAddress: raw.EmailAddress,
		TimeZone:     raw.TimeZone,
		Skills:       *raw.Skills,
		Capacity:     *raw.Capacity,
	}
	if err := c.Validate(); err != nil {
		return model.Candidate{}, fmt.Errorf("user %d: %w", i, err)
	}
	return c, nil
}

func (raw *rawTask) task(i int) (model.Task, error) {
	if raw.RequiredSkills == nil {
		return model.Task{}, fmt.Errorf("%w: task %d (%s) has no requiredSkills", model.ErrInvalidInput, i, raw.Key)
	}
	t := model.Task{
		Key:            raw.Key,
		Summary:        raw.Summary,
		Description:    raw.Description,
		Project:        raw.Project,
		IssueType:      raw.IssueType,
		Status:         raw.Status,
		Priority:       raw.Priority,
		Assignee:       raw.Assignee,
		DueDate:        raw.DueDate,
		Labels:         raw.Labels,
		StoryPoints:    raw.StoryPoints,
		RequiredSkills: *raw.RequiredSkills,
	}
	if t.Status == "" {
		t.Status = model.StatusToDo
	}
	if err := t.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("task %d: %w", i, err)
	}
	return t, nil
}

// Load reads the users and tasks files. An empty path falls back to the
// built-in data for that half; with both empty the result is Default().
func Load(usersPath, tasksPath string) (DataSet, error) {
	if usersPath == "" && tasksPath == "" {
		return Default(), nil
	}
	ds := Default()
	ds.Source = SourceFixtures

	if usersPath != "" {
		users, err := LoadUsers(usersPath)
		if err != nil {
			return DataSet{}, err
		}
		ds.Users = users
	}
	if tasksPath != "" {
		tasks, err := LoadTasks(tasksPath)
		if err != nil {
			return DataSet{}, err
		}
		ds.Tasks = tasks
	}
	return ds, nil
}

// Default returns a fresh copy of the built-in data set.
func Default() DataSet {
	users, err := DecodeUsers(mustRead("data/users.json"), FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("fixtures: built-in users: %v", err))
	}
	tasks, err := DecodeTasks(mustRead("data/tasks.json"), FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("fixtures: built-in tasks: %v", err))
	}
	return DataSet{Users: users, Tasks: tasks, Source: SourceFallback}
}

func mustRead(name string) []byte {
	data, err := fallbackFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("fixtures: %v", err))
	}
	return data
}

func unmarshal(data []byte, format Format, out any) error {
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return nil
}
