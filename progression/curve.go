package progression

// Curve defines the linear level curve: each level costs Growth more XP than
// the one before it. Both functions are pure; the award engine recomputes
// them freely inside a retryable transaction.
type Curve struct {
	Base   int // XP to go from level 1 to level 2
	Growth int // extra XP added per level
}

// DefaultCurve matches the shipped reward tuning: 100, 125, 150, ...
var DefaultCurve = Curve{Base: 100, Growth: 25}

// StepFor returns the XP required to go from level to level+1.
func (c Curve) StepFor(level int) int {
	if level < 1 {
		level = 1
	}
	return c.Base + c.Growth*(level-1)
}

// ThresholdFor returns the cumulative XP required to reach level.
// Level 1 needs nothing; the sum below is an arithmetic series.
func (c Curve) ThresholdFor(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return n*c.Base + c.Growth*n*(n-1)/2
}

// LevelForTotalXP returns the highest level reachable with totalXP.
func (c Curve) LevelForTotalXP(totalXP int) int {
	level := 1
	for totalXP >= c.ThresholdFor(level+1) {
		level++
	}
	return level
}
