package domain

import (
	"fmt"
	"strings"
)

// fieldTypeReal is the WRF FieldType code for real-valued fields.
const fieldTypeReal = 104

// CoordinatesTag names the coordinate pair every gridded output variable refers to.
const CoordinatesTag = VarXLONG + " " + VarXLAT

// VariableAttributes is the fixed WRF attribute set attached to each output
// variable. Geo-aware readers key on these exact names and values.
type VariableAttributes struct {
	FieldType   int32
	MemoryOrder string
	Description string
	Units       string
	Stagger     string
	Coordinates string
}

// BundleAttributes are the global attributes of an output container.
type BundleAttributes struct {
	Title       string
	Description string
	Source      string
	History     string
	Threshold   float64
}

// Attribute sets for the output variables.
var (
	LatAttributes = VariableAttributes{
		FieldType:   fieldTypeReal,
		MemoryOrder: "XY ",
		Description: "LATITUDE, SOUTH IS NEGATIVE",
		Units:       "degree_north",
		Stagger:     "",
		Coordinates: CoordinatesTag,
	}
	LonAttributes = VariableAttributes{
		FieldType:   fieldTypeReal,
		MemoryOrder: "XY ",
		Description: "LONGITUDE, WEST IS NEGATIVE",
		Units:       "degrees_east",
		Stagger:     "",
		Coordinates: CoordinatesTag,
	}
	SpeedAttributes = VariableAttributes{
		FieldType:   fieldTypeReal,
		MemoryOrder: "XY ",
		Description: "WIND SPEED AT 10 M",
		Units:       "m s-1",
		Stagger:     "",
		Coordinates: CoordinatesTag,
	}
	StreakAttributes = VariableAttributes{
		FieldType:   fieldTypeReal,
		MemoryOrder: "XY ",
		Description: "CONSECUTIVE TIME STEPS WITH WIND SPEED BELOW THRESHOLD",
		Units:       "1",
		Stagger:     "",
		Coordinates: CoordinatesTag,
	}
)

// BundleTitle is the global title written to every output container.
const BundleTitle = "CALM WIND STREAKS FROM WRF 10 M WIND"

// ResultBundle is the self-describing output of a run: derived fields,
// normalized coordinates, time labels and their metadata.
type ResultBundle struct {
	Shape      Shape
	Speed      SpeedField
	Streaks    StreakField
	Lat        Field
	Lon        Field
	Times      TimeLabels
	Attributes BundleAttributes
}

// Variable pairs an output array with its name and attributes.
type Variable struct {
	Name       string
	Attributes VariableAttributes
	Float      []float32
	Int        []int32
}

// Variables lists the gridded output variables in file order.
func (b ResultBundle) Variables() []Variable {
	return []Variable{
		{Name: VarWspd, Attributes: SpeedAttributes, Float: b.Speed.Data},
		{Name: VarAcc, Attributes: StreakAttributes, Int: b.Streaks.Data},
		{Name: VarXLAT, Attributes: LatAttributes, Float: b.Lat.Data},
		{Name: VarXLONG, Attributes: LonAttributes, Float: b.Lon.Data},
	}
}

// Assemble packages the derived fields with the grid's coordinates and labels.
// Coordinates are always emitted as (Time, south_north, west_east).
func Assemble(grid Grid, speed SpeedField, streaks StreakField, threshold float64) (ResultBundle, error) {
	shape := speed.Shape
	if streaks.Shape != shape {
		return ResultBundle{}, fmt.Errorf("%w: %s %v vs %s %v", ErrShapeMismatch, VarWspd, shape, VarAcc, streaks.Shape)
	}
	lat, err := grid.Lat.Normalize(shape.T)
	if err != nil {
		return ResultBundle{}, fmt.Errorf("normalize %s: %w", VarXLAT, err)
	}
	lon, err := grid.Lon.Normalize(shape.T)
	if err != nil {
		return ResultBundle{}, fmt.Errorf("normalize %s: %w", VarXLONG, err)
	}
	times := make(TimeLabels, len(grid.Times))
	copy(times, grid.Times)

	return ResultBundle{
		Shape:   shape,
		Speed:   speed,
		Streaks: streaks,
		Lat:     lat,
		Lon:     lon,
		Times:   times,
		Attributes: BundleAttributes{
			Title:       BundleTitle,
			Description: describe(threshold),
			Source:      grid.Source,
			History:     "Created " + clock.Now().UTC().Format("2006-01-02T15:04:05Z") + " by calmstreak",
			Threshold:   threshold,
		},
	}, nil
}

func describe(threshold float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s = sqrt(%s^2 + %s^2); ", VarWspd, VarU10, VarV10)
	fmt.Fprintf(&b, "%s = number of consecutive time steps with %s < %g m/s, ", VarAcc, VarWspd, threshold)
	b.WriteString("reset to 0 when the threshold is reached, 0 at the first step")
	return b.String()
}
