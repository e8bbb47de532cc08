// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Skill is a candidate's proficiency in a named skill.
type Skill struct {
	Name  string `json:"name" yaml:"name"`
	Level int    `json:"level" yaml:"level"`
}

// Capacity describes a candidate's sprint throughput and committed load.
// CurrentLoad may exceed PointsPerSprint when the candidate is over-allocated.
type Capacity struct {
	PointsPerSprint float64 `json:"pointsPerSprint" yaml:"pointsPerSprint"`
	CurrentLoad     float64 `json:"currentLoad" yaml:"currentLoad"`
}

// Available returns the points left in the sprint. Negative when over-allocated.
func (c Capacity) Available() float64 {
	return c.PointsPerSprint - c.CurrentLoad
}

// Candidate is a team member that can be recommended for a task.
type Candidate struct {
	ID           string   `json:"id" yaml:"id"`
	Username     string   `json:"username,omitempty" yaml:"username"`
	DisplayName  string   `json:"displayName" yaml:"displayName"`
	EmailAddress string   `json:"emailAddress,omitempty" yaml:"emailAddress"`
	TimeZone     string   `json:"timeZone,omitempty" yaml:"timeZone"`
	Skills       []Skill  `json:"skills" yaml:"skills"`
	Capacity     Capacity `json:"capacity" yaml:"capacity"`
}

// SkillLevel returns the level of the first skill named name.
func (c *Candidate) SkillLevel(name string) (int, bool) {
	for _, s := range c.Skills {
		if s.Name == name {
			return s.Level, true
		}
	}
	return 0, false
}

// Validate checks the fields the scoring engine depends on.
// A zero PointsPerSprint is left to the engine, which reports it as a
// division by zero.
func (c *Candidate) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: candidate id is empty", ErrInvalidInput)
	}
	for i, s := range c.Skills {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: candidate %s: skill %d has no name", ErrInvalidInput, c.ID, i)
		}
		if s.Level <= 0 {
			return fmt.Errorf("%w: candidate %s: skill %q has non-positive level %d", ErrInvalidInput, c.ID, s.Name, s.Level)
		}
	}
	if !finite(c.Capacity.PointsPerSprint) || !finite(c.Capacity.CurrentLoad) {
		return fmt.Errorf("%w: candidate %s: capacity is not a finite number", ErrInvalidInput, c.ID)
	}
	if c.Capacity.PointsPerSprint < 0 {
		return fmt.Errorf("%w: candidate %s: negative pointsPerSprint", ErrInvalidInput, c.ID)
	}
	if c.Capacity.CurrentLoad < 0 {
		return fmt.Errorf("%w: candidate %s: negative currentLoad", ErrInvalidInput, c.ID)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Clone returns a deep copy of the candidate.
func (c *Candidate) Clone() Candidate {
	out := *c
	out.Skills = slices.Clone(c.Skills)
	return out
}
