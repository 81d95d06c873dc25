package models

// RunCell is one (pattern, repetition) entry of the run matrix.
type RunCell struct {
	Index      int // 1-based position in the whole batch
	Total      int
	Pattern    string
	Repetition int // 1-based within the pattern
}

// IsBaseline reports whether the cell runs without any blocked pattern.
func (c RunCell) IsBaseline() bool {
	return c.Pattern == ""
}

// RunFailure records a cell that produced no result.
type RunFailure struct {
	Cell RunCell
	Kind string
	Err  error
}
