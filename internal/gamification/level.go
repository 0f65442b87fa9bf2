package gamification

import "math"

const MaxLevel = 200

// Curve is the exponential experience curve.
// Level N needs Base × Growth^(N-1) points more than level N-1; level 1 starts at 0.
type Curve struct {
	Base   float64
	Growth float64
}

func DefaultCurve() Curve {
	return Curve{Base: 100, Growth: 1.5}
}

func (c Curve) requirement(level int) float64 {
	return c.Base * math.Pow(c.Growth, float64(level-1))
}

// Threshold returns the cumulative points needed to reach level.
func (c Curve) Threshold(level int) int {
	total := 0.0
	for n := 2; n <= level; n++ {
		total += c.requirement(n)
	}
	if total >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(total))
}

// Level returns the highest level whose threshold points has reached.
func (c Curve) Level(points int) int {
	level := 1
	next := 0.0
	for level < MaxLevel {
		next += c.requirement(level + 1)
		if float64(points) < math.Ceil(next) {
			break
		}
		level++
	}
	return level
}
