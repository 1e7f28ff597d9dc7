package domain

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a finished result bundle for logs, metrics and notifications.
type Summary struct {
	MeanSpeed    float64 `json:"mean_speed"`
	MaxSpeed     float64 `json:"max_speed"`
	MaxStreak    int32   `json:"max_streak"`
	CalmFraction float64 `json:"calm_fraction"` // share of cells with a running streak at the last step
}

// Summarize computes speed and streak statistics over the whole bundle.
// Speed statistics skip non-finite values (missing wind marked NaN); with no
// finite speed at all they are zero.
func Summarize(b ResultBundle) Summary {
	if b.Shape.Len() == 0 {
		return Summary{}
	}
	speeds := make([]float64, 0, len(b.Speed.Data))
	for _, s := range b.Speed.Data {
		if v := float64(s); !math.IsNaN(v) && !math.IsInf(v, 0) {
			speeds = append(speeds, v)
		}
	}

	var maxStreak int32
	for _, a := range b.Streaks.Data {
		if a > maxStreak {
			maxStreak = a
		}
	}

	last := b.Streaks.Slice(b.Shape.T - 1)
	calm := 0
	for _, a := range last {
		if a > 0 {
			calm++
		}
	}

	sum := Summary{
		MaxStreak:    maxStreak,
		CalmFraction: float64(calm) / float64(len(last)),
	}
	if len(speeds) > 0 {
		sum.MeanSpeed = stat.Mean(speeds, nil)
		sum.MaxSpeed = floats.Max(speeds)
	}
	return sum
}
