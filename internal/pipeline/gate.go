package pipeline

// DefaultMinScore is the inclusive publication threshold.
const DefaultMinScore = 65

// Gate decides publish vs. reject from the critic score.
type Gate struct {
	MinScore int
}

// Publish reports whether score meets the threshold. Ties publish.
func (g Gate) Publish(score int) bool {
	return score >= g.MinScore
}
