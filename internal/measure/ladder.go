package measure

import (
	"twmw/internal/series"
)

// Direction states whether larger or smaller values earn higher scores.
type Direction int

const (
	// GreaterIsBetter satisfies a rung when value > threshold.
	GreaterIsBetter Direction = iota
	// LessIsBetter satisfies a rung when value < threshold. Used for
	// cost-type indicators such as valuation ratios.
	LessIsBetter
)

// Rung is one threshold/score pair of a ladder.
type Rung struct {
	Threshold float64
	Score     float64
}

// Ladder is an ordered set of threshold rules. Rungs are checked in order
// (sorted by descending preference); the first satisfied rung determines
// the score, otherwise Default applies. Thresholds and direction are
// per-measure configuration, not derivable from the value.
type Ladder struct {
	Direction Direction
	Rungs     []Rung
	Default   float64
}

// Apply scores a single value against the ladder.
func (l Ladder) Apply(v float64) float64 {
	for _, r := range l.Rungs {
		switch l.Direction {
		case LessIsBetter:
			if v < r.Threshold {
				return r.Score
			}
		default:
			if v > r.Threshold {
				return r.Score
			}
		}
	}
	return l.Default
}

// Score maps a value series through the ladder point by point.
func (l Ladder) Score(s series.TimeSeries) series.TimeSeries {
	return s.Map(l.Apply)
}

// binaryAboveZero is the simplest ladder in the panel: 1 point while the
// value is above zero (price above its moving average, positive momentum),
// 0 otherwise.
var binaryAboveZero = Ladder{
	Direction: GreaterIsBetter,
	Rungs:     []Rung{{Threshold: 0, Score: 1}},
}
