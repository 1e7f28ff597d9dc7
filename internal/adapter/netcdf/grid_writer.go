package netcdf

import (
	"fmt"

	"github.com/ctessum/cdf"

	"github.com/couchcryptid/calmstreak/internal/domain"
)

type gridOptions struct {
	skip map[string]bool
}

// GridOption customizes WriteGrid.
type GridOption func(*gridOptions)

// WithoutVariables leaves the named variables out of the written file, for
// producing deliberately incomplete inputs.
func WithoutVariables(names ...string) GridOption {
	return func(o *gridOptions) {
		for _, n := range names {
			o.skip[n] = true
		}
	}
}

// WriteGrid writes g as a minimal WRF history file holding U10, V10, XLAT,
// XLONG and Times. Static coordinates keep their (south_north, west_east)
// shape. It is the inverse of Reader.Extract and backs cmd/genmock and tests.
func WriteGrid(path string, g domain.Grid, opts ...GridOption) error {
	o := gridOptions{skip: map[string]bool{}}
	for _, opt := range opts {
		opt(&o)
	}
	shape := g.Shape()
	width := labelWidth(g.Times)

	h := cdf.NewHeader(
		[]string{domain.DimTime, domain.DimDateStrLen, domain.DimSouthNorth, domain.DimWestEast},
		[]int{0, width, shape.Y, shape.X},
	)
	h.AddAttribute("", "TITLE", " OUTPUT FROM WRF V4.5 MODEL")
	h.AddAttribute("", "WEST-EAST_GRID_DIMENSION", []int32{int32(shape.X + 1)})
	h.AddAttribute("", "SOUTH-NORTH_GRID_DIMENSION", []int32{int32(shape.Y + 1)})

	vars := []gridVar{
		coordVar(domain.VarXLAT, g.Lat, domain.LatAttributes),
		coordVar(domain.VarXLONG, g.Lon, domain.LonAttributes),
		{domain.VarU10, gridDims, g.Wind.U.Data, windAttributes("U at 10 M")},
		{domain.VarV10, gridDims, g.Wind.V.Data, windAttributes("V at 10 M")},
	}

	if !o.skip[domain.VarTimes] {
		h.AddVariable(domain.VarTimes, []string{domain.DimTime, domain.DimDateStrLen}, "")
	}
	for _, v := range vars {
		if o.skip[v.name] {
			continue
		}
		h.AddVariable(v.name, v.dims, []float32{0})
		addVariableAttributes(h, v.name, v.attrs)
	}

	return writeFile(path, h, func(f *cdf.File) error {
		if !o.skip[domain.VarTimes] && shape.T > 0 {
			if err := writeLabels(f, g.Times, width); err != nil {
				return err
			}
		}
		for _, v := range vars {
			if o.skip[v.name] || len(v.data) == 0 {
				continue
			}
			end := []int{shape.T, shape.Y, shape.X}
			begin := []int{0, 0, 0}
			if len(v.dims) == 2 {
				end, begin = end[1:], begin[1:]
			}
			if _, err := f.Writer(v.name, begin, end).Write(v.data); err != nil {
				return fmt.Errorf("write %s: %w", v.name, err)
			}
		}
		return nil
	})
}

type gridVar struct {
	name  string
	dims  []string
	data  []float32
	attrs domain.VariableAttributes
}

func coordVar(name string, c domain.CoordinateField, attrs domain.VariableAttributes) gridVar {
	dims := gridDims
	if !c.TimeVarying {
		dims = gridDims[1:]
	}
	return gridVar{name, dims, c.Data, attrs}
}

func windAttributes(description string) domain.VariableAttributes {
	return domain.VariableAttributes{
		FieldType:   104,
		MemoryOrder: "XY ",
		Description: description,
		Units:       "m s-1",
		Stagger:     "",
		Coordinates: domain.CoordinatesTag,
	}
}
