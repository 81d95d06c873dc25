package orchestrator

import (
	"github.com/aleister1102/isolatedaudit/internal/blocklist"
	"github.com/aleister1102/isolatedaudit/internal/models"
)

// BuildPlan lays out the batch pattern-major, repetition-minor, with the
// unblocked baseline first. Blank and duplicate patterns collapse, so the
// plan always holds len(blocklist.Matrix(patterns)) × runs cells.
func BuildPlan(patterns []string, runs int) []models.RunCell {
	matrix := blocklist.Matrix(patterns)
	if runs < 0 {
		runs = 0
	}

	total := len(matrix) * runs
	plan := make([]models.RunCell, 0, total)
	for _, pattern := range matrix {
		for rep := 1; rep <= runs; rep++ {
			plan = append(plan, models.RunCell{
				Index:      len(plan) + 1,
				Total:      total,
				Pattern:    pattern,
				Repetition: rep,
			})
		}
	}
	return plan
}
