package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/taskflow/internal/domain/model"
)

// SkillMatch is one required skill the candidate holds.
type SkillMatch struct {
	Name     string  `json:"name"`
	Level    int     `json:"level"`
	MinLevel int     `json:"minLevel"`
	Ratio    float64 `json:"ratio"`
}

// String renders the match as "name(level/minLevel)".
func (m SkillMatch) String() string {
	return fmt.Sprintf("%s(%d/%d)", m.Name, m.Level, m.MinLevel)
}

// Explanation is the human-readable rationale behind a score, with the
// numeric factors alongside for structured consumers.
type Explanation struct {
	// SkillMatch lists held skills as "name(level/minLevel)" joined by ", ".
	// Required skills the candidate lacks are omitted.
	SkillMatch string `json:"skillMatch"`
	// CurrentLoad reads "<load>/<capacity> points (<utilization>%)".
	CurrentLoad string `json:"currentLoad"`
	// Availability reads "<capacity - load> points".
	Availability string `json:"availability"`
	// Score is the score with two decimals.
	Score string `json:"score"`

	Matches            []SkillMatch `json:"matches"`
	SkillFit           float64      `json:"skillFit"`
	LoadFactor         float64      `json:"loadFactor"`
	UtilizationPercent int          `json:"utilizationPercent"`
	AvailablePoints    float64      `json:"availablePoints"`
}

func newExplanation(capacity model.Capacity, b breakdown, score float64) Explanation {
	parts := make([]string, len(b.matches))
	for i, m := range b.matches {
		parts[i] = m.String()
	}
	matches := b.matches
	if matches == nil {
		matches = []SkillMatch{}
	}

	utilization := int(b.utilization)
	available := round2(capacity.Available())

	return Explanation{
		SkillMatch: strings.Join(parts, ", "),
		CurrentLoad: fmt.Sprintf("%s/%s points (%d%%)",
			formatPoints(capacity.CurrentLoad), formatPoints(capacity.PointsPerSprint), utilization),
		Availability:       formatPoints(available) + " points",
		Score:              strconv.FormatFloat(score, 'f', 2, 64),
		Matches:            matches,
		SkillFit:           b.skillFit,
		LoadFactor:         b.loadFactor,
		UtilizationPercent: utilization,
		AvailablePoints:    available,
	}
}

// formatPoints prints story points without trailing zeros: 24, 12.5.
func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
