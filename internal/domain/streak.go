package domain

// StreakField holds, per cell and time step, the length of the current run of
// consecutive calm steps. It is shaped like the speed field it was derived from.
type StreakField struct {
	Shape Shape
	Data  []int32
}

// At returns the streak length at (t, y, x).
func (s StreakField) At(t, y, x int) int32 { return s.Data[s.Shape.Index(t, y, x)] }

// Slice returns the horizontal slice for time step t. The result aliases s.Data.
func (s StreakField) Slice(t int) []int32 {
	n := s.Shape.Cells()
	return s.Data[t*n : (t+1)*n]
}

// AccumulateStreaks scans the speed field along the time axis. Step 0 is always
// zero. Every later step extends the previous count by one where the speed is
// strictly below threshold and resets to zero otherwise, so a speed equal to the
// threshold ends a streak.
//
// Cells are independent; only the time order within a cell matters. The scan
// carries the previous slice and applies streakStep across all cells of the
// next one.
func AccumulateStreaks(speed SpeedField, threshold float64) StreakField {
	out := StreakField{Shape: speed.Shape, Data: make([]int32, speed.Shape.Len())}
	if speed.Shape.T == 0 || speed.Shape.Cells() == 0 {
		return out
	}
	// acc[0] stays zero from make.
	prev := out.Slice(0)
	for t := 1; t < speed.Shape.T; t++ {
		cur := out.Slice(t)
		for c, s := range speed.Slice(t) {
			cur[c] = streakStep(prev[c], s, threshold)
		}
		prev = cur
	}
	return out
}

// streakStep is the fold step of the scan.
func streakStep(prev int32, speed float32, threshold float64) int32 {
	if float64(speed) < threshold {
		return prev + 1
	}
	return 0
}
