package domain

import (
	"fmt"
	"math"
)

// SpeedField is the wind speed magnitude in m/s, shaped like its wind components.
type SpeedField = Field

// ComputeSpeed derives sqrt(u^2 + v^2) elementwise. U and V must share a shape.
func ComputeSpeed(wind VectorField) (SpeedField, error) {
	if wind.U.Shape != wind.V.Shape || len(wind.U.Data) != len(wind.V.Data) {
		return SpeedField{}, fmt.Errorf("%w: %s %v vs %s %v",
			ErrShapeMismatch, VarU10, wind.U.Shape, VarV10, wind.V.Shape)
	}
	out := NewField(wind.U.Shape)
	for i, u := range wind.U.Data {
		out.Data[i] = Speed(u, wind.V.Data[i])
	}
	return out, nil
}

// Speed returns the magnitude of a single (u, v) wind vector.
func Speed(u, v float32) float32 {
	uu, vv := float64(u), float64(v)
	return float32(math.Sqrt(uu*uu + vv*vv))
}
