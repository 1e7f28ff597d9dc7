package domain

import "fmt"

// Dimension and variable names used by WRF output files.
const (
	DimTime       = "Time"
	DimSouthNorth = "south_north"
	DimWestEast   = "west_east"
	DimDateStrLen = "DateStrLen"

	VarU10   = "U10"
	VarV10   = "V10"
	VarXLAT  = "XLAT"
	VarXLONG = "XLONG"
	VarTimes = "Times"
	VarWspd  = "wspd"
	VarAcc   = "acc"
)

// WRFTimeLayout is the fixed-width timestamp format WRF writes into Times.
const WRFTimeLayout = "2006-01-02_15:04:05"

// Shape is the (Time, south_north, west_east) extent of a gridded field.
type Shape struct {
	T int `json:"time"`
	Y int `json:"south_north"`
	X int `json:"west_east"`
}

// Cells returns the number of horizontal grid cells.
func (s Shape) Cells() int { return s.Y * s.X }

// Len returns the number of values in a field of this shape.
func (s Shape) Len() int { return s.T * s.Y * s.X }

// Index returns the flat row-major offset of (t, y, x).
func (s Shape) Index(t, y, x int) int { return (t*s.Y+y)*s.X + x }

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.T, s.Y, s.X)
}

// Field is a real-valued (Time, south_north, west_east) array stored flat in
// row-major order.
type Field struct {
	Shape Shape
	Data  []float32
}

// NewField allocates a zeroed field of the given shape.
func NewField(shape Shape) Field {
	return Field{Shape: shape, Data: make([]float32, shape.Len())}
}

// At returns the value at (t, y, x).
func (f Field) At(t, y, x int) float32 { return f.Data[f.Shape.Index(t, y, x)] }

// Slice returns the horizontal slice for time step t. The result aliases f.Data.
func (f Field) Slice(t int) []float32 {
	n := f.Shape.Cells()
	return f.Data[t*n : (t+1)*n]
}

func (f Field) validate(name string) error {
	if len(f.Data) != f.Shape.Len() {
		return fmt.Errorf("%w: %s has %d values, shape %v needs %d",
			ErrShapeMismatch, name, len(f.Data), f.Shape, f.Shape.Len())
	}
	return nil
}

// VectorField holds the eastward (U) and northward (V) wind components in m/s.
type VectorField struct {
	U Field
	V Field
}

// CoordinateField is a latitude or longitude array. Static fields are shaped
// (south_north, west_east) and carry T == 0 with TimeVarying false; otherwise the
// field is shaped (Time, south_north, west_east).
type CoordinateField struct {
	Shape       Shape
	TimeVarying bool
	Data        []float32
}

// NewStaticCoordinate builds a time-invariant (Y, X) coordinate field.
func NewStaticCoordinate(y, x int, data []float32) CoordinateField {
	return CoordinateField{Shape: Shape{Y: y, X: x}, Data: data}
}

// NewTimeVaryingCoordinate builds a (T, Y, X) coordinate field.
func NewTimeVaryingCoordinate(shape Shape, data []float32) CoordinateField {
	return CoordinateField{Shape: shape, TimeVarying: true, Data: data}
}

// Normalize returns the coordinate in (T, Y, X) form. A static field is
// replicated across all t time steps; a time-varying field is copied as-is and
// must already have t steps.
func (c CoordinateField) Normalize(t int) (Field, error) {
	cells := c.Shape.Cells()
	shape := Shape{T: t, Y: c.Shape.Y, X: c.Shape.X}
	if c.TimeVarying {
		if c.Shape.T != t || len(c.Data) != shape.Len() {
			return Field{}, fmt.Errorf("%w: coordinate shaped %v, want %d time steps",
				ErrShapeMismatch, c.Shape, t)
		}
		out := NewField(shape)
		copy(out.Data, c.Data)
		return out, nil
	}
	if len(c.Data) != cells {
		return Field{}, fmt.Errorf("%w: static coordinate has %d values, want %d",
			ErrShapeMismatch, len(c.Data), cells)
	}
	out := NewField(shape)
	for step := 0; step < t; step++ {
		copy(out.Slice(step), c.Data)
	}
	return out, nil
}

// TimeLabels are the per-step timestamps of a run. They are opaque to the
// computation and carried through unchanged.
type TimeLabels []string

// Width returns the longest label length, which becomes DateStrLen on output.
func (l TimeLabels) Width() int {
	w := 0
	for _, s := range l {
		if len(s) > w {
			w = len(s)
		}
	}
	return w
}

// Grid is everything the loader extracts from a source container.
type Grid struct {
	Source string
	Wind   VectorField
	Lat    CoordinateField
	Lon    CoordinateField
	Times  TimeLabels
}

// Shape returns the shape of the wind components.
func (g Grid) Shape() Shape { return g.Wind.U.Shape }

// Validate checks that every field agrees with the wind component shape.
func (g Grid) Validate() error {
	shape := g.Wind.U.Shape
	if err := g.Wind.U.validate(VarU10); err != nil {
		return err
	}
	if err := g.Wind.V.validate(VarV10); err != nil {
		return err
	}
	if g.Wind.V.Shape != shape {
		return fmt.Errorf("%w: %s %v vs %s %v", ErrShapeMismatch, VarU10, shape, VarV10, g.Wind.V.Shape)
	}
	coords := []struct {
		name string
		c    CoordinateField
	}{{VarXLAT, g.Lat}, {VarXLONG, g.Lon}}
	for _, cc := range coords {
		name, c := cc.name, cc.c
		want := c.Shape.Cells()
		if c.TimeVarying {
			want = c.Shape.Len()
		}
		if len(c.Data) != want {
			return fmt.Errorf("%w: %s has %d values for shape %v", ErrShapeMismatch, name, len(c.Data), c.Shape)
		}
		if c.Shape.Y != shape.Y || c.Shape.X != shape.X {
			return fmt.Errorf("%w: %s %v vs %s %v", ErrShapeMismatch, name, c.Shape, VarU10, shape)
		}
		if c.TimeVarying && c.Shape.T != shape.T {
			return fmt.Errorf("%w: %s has %d time steps, %s has %d",
				ErrShapeMismatch, name, c.Shape.T, VarU10, shape.T)
		}
	}
	if len(g.Times) != shape.T {
		return fmt.Errorf("%w: %s has %d labels, %s has %d time steps",
			ErrShapeMismatch, VarTimes, len(g.Times), VarU10, shape.T)
	}
	return nil
}
