package domain

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testThreshold = 3.0

func singleCell(speeds ...float32) SpeedField {
	return SpeedField{Shape: Shape{T: len(speeds), Y: 1, X: 1}, Data: speeds}
}

func TestAccumulateStreaks_Scenarios(t *testing.T) {
	cases := []struct {
		name   string
		speeds []float32
		want   []int32
	}{
		{"mixed sequence", []float32{5.0, 1.0, 2.0, 4.0, 0.5}, []int32{0, 1, 2, 0, 1}},
		{"single step calm", []float32{0.1}, []int32{0}},
		{"single step windy", []float32{12}, []int32{0}},
		{"all calm", []float32{1, 1, 1, 1}, []int32{0, 1, 2, 3}},
		{"all windy", []float32{9, 8, 7, 6}, []int32{0, 0, 0, 0}},
		{"equal to threshold resets", []float32{1, 2, 3, 2}, []int32{0, 1, 0, 1}},
		{"first step calm is still zero", []float32{0, 0, 5, 0}, []int32{0, 1, 0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AccumulateStreaks(singleCell(tc.speeds...), testThreshold)
			if diff := cmp.Diff(tc.want, got.Data); diff != "" {
				t.Errorf("acc mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAccumulateStreaks_EmptyTimeAxis(t *testing.T) {
	got := AccumulateStreaks(SpeedField{Shape: Shape{T: 0, Y: 3, X: 4}}, testThreshold)
	assert.Equal(t, Shape{T: 0, Y: 3, X: 4}, got.Shape)
	assert.Empty(t, got.Data)
}

func TestAccumulateStreaks_ThresholdHasNoRange(t *testing.T) {
	speeds := singleCell(0, 0, 0)

	zero := AccumulateStreaks(speeds, 0)
	assert.Equal(t, []int32{0, 0, 0}, zero.Data, "0 < 0 is false")

	negative := AccumulateStreaks(speeds, -1)
	assert.Equal(t, []int32{0, 0, 0}, negative.Data)

	high := AccumulateStreaks(speeds, 1e9)
	assert.Equal(t, []int32{0, 1, 2}, high.Data)
}

func TestAccumulateStreaks_CellsAreIndependent(t *testing.T) {
	// Two cells, three steps: cell 0 calm throughout, cell 1 windy at t=1.
	speed := SpeedField{
		Shape: Shape{T: 3, Y: 1, X: 2},
		Data: []float32{
			1, 1,
			1, 9,
			1, 1,
		},
	}
	got := AccumulateStreaks(speed, testThreshold)
	assert.Equal(t, []int32{0, 1, 2}, []int32{got.At(0, 0, 0), got.At(1, 0, 0), got.At(2, 0, 0)})
	assert.Equal(t, []int32{0, 0, 1}, []int32{got.At(0, 0, 1), got.At(1, 0, 1), got.At(2, 0, 1)})
}

func TestAccumulateStreaks_Laws(t *testing.T) {
	shape := Shape{T: 40, Y: 5, X: 7}
	rng := rand.New(rand.NewPCG(1, 2))
	speed := NewField(shape)
	for i := range speed.Data {
		speed.Data[i] = float32(rng.Float64() * 6)
	}
	// Force some exact-threshold hits.
	speed.Data[shape.Index(3, 1, 1)] = testThreshold
	speed.Data[shape.Index(17, 4, 6)] = testThreshold

	acc := AccumulateStreaks(speed, testThreshold)
	require.Len(t, acc.Data, shape.Len())

	for y := 0; y < shape.Y; y++ {
		for x := 0; x < shape.X; x++ {
			require.Zero(t, acc.At(0, y, x), "boundary at (%d,%d)", y, x)
			for step := 1; step < shape.T; step++ {
				a := acc.At(step, y, x)
				require.GreaterOrEqual(t, a, int32(0))
				if float64(speed.At(step, y, x)) < testThreshold {
					require.Equal(t, acc.At(step-1, y, x)+1, a, "extend at t=%d (%d,%d)", step, y, x)
				} else {
					require.Zero(t, a, "reset at t=%d (%d,%d)", step, y, x)
				}
			}
		}
	}
	assert.Zero(t, acc.At(3, 1, 1))
	assert.Zero(t, acc.At(17, 4, 6))
}

func TestStreakStep(t *testing.T) {
	assert.Equal(t, int32(5), streakStep(4, 2.999, testThreshold))
	assert.Equal(t, int32(0), streakStep(4, 3.0, testThreshold))
	assert.Equal(t, int32(0), streakStep(4, 3.001, testThreshold))
}
