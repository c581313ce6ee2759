package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepFor(t *testing.T) {
	c := Curve{Base: 100, Growth: 25}

	tests := []struct {
		level int
		want  int
	}{
		{1, 100},
		{2, 125},
		{3, 150},
		{10, 325},
		{0, 100}, // clamped to level 1
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.StepFor(tt.level), "StepFor(%d)", tt.level)
	}
}

func TestThresholdFor(t *testing.T) {
	c := Curve{Base: 100, Growth: 25}

	assert.Equal(t, 0, c.ThresholdFor(1))
	assert.Equal(t, 100, c.ThresholdFor(2))
	assert.Equal(t, 225, c.ThresholdFor(3))
	assert.Equal(t, 375, c.ThresholdFor(4))

	// The closed form must agree with summing the steps.
	sum := 0
	for level := 1; level <= 50; level++ {
		assert.Equal(t, sum, c.ThresholdFor(level), "cumulative mismatch at level %d", level)
		sum += c.StepFor(level)
	}
}

func TestCurveStrictlyIncreasing(t *testing.T) {
	c := DefaultCurve
	for level := 1; level < 100; level++ {
		assert.Less(t, c.StepFor(level), c.StepFor(level+1))
		assert.Less(t, c.ThresholdFor(level), c.ThresholdFor(level+1))
	}
}

func TestLevelForTotalXP(t *testing.T) {
	c := Curve{Base: 100, Growth: 25}

	tests := []struct {
		totalXP int
		want    int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{224, 2},
		{225, 3},
		{320, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.LevelForTotalXP(tt.totalXP), "LevelForTotalXP(%d)", tt.totalXP)
	}
}
