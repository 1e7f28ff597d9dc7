package netcdf

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/couchcryptid/calmstreak/internal/domain"
)

var gridDims = []string{domain.DimTime, domain.DimSouthNorth, domain.DimWestEast}

// Reader loads WRF wind grids. It implements pipeline.GridExtractor.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a Reader that logs through logger.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// Extract reads U10, V10, XLAT, XLONG and Times from the container at path.
// It fails with domain.ErrNotFound when path is not a readable NetCDF file and
// with domain.ErrMissingField or domain.ErrShapeMismatch when a variable is
// absent or malformed.
func (r *Reader) Extract(ctx context.Context, path string) (domain.Grid, error) {
	if err := ctx.Err(); err != nil {
		return domain.Grid{}, err
	}
	c, fmtKind, err := openContainer(path)
	if err != nil {
		return domain.Grid{}, err
	}
	defer c.Close()

	g, err := readGrid(c, path)
	if err != nil {
		return domain.Grid{}, err
	}
	r.logger.Debug("grid loaded",
		"input", path,
		"format", fmtKind.String(),
		"shape", g.Shape().String(),
		"static_coordinates", !g.Lat.TimeVarying,
	)
	return g, nil
}

func readGrid(c container, path string) (domain.Grid, error) {
	u, err := c.floats(domain.VarU10)
	if err != nil {
		return domain.Grid{}, err
	}
	shape, err := gridShape(domain.VarU10, u)
	if err != nil {
		return domain.Grid{}, err
	}

	v, err := c.floats(domain.VarV10)
	if err != nil {
		return domain.Grid{}, err
	}
	vShape, err := gridShape(domain.VarV10, v)
	if err != nil {
		return domain.Grid{}, err
	}
	if vShape != shape {
		return domain.Grid{}, incompatible(domain.VarV10, "shape %v, %s is %v", vShape, domain.VarU10, shape)
	}

	lat, err := readCoordinate(c, domain.VarXLAT, shape)
	if err != nil {
		return domain.Grid{}, err
	}
	lon, err := readCoordinate(c, domain.VarXLONG, shape)
	if err != nil {
		return domain.Grid{}, err
	}

	dims, labels, err := c.labels(domain.VarTimes)
	if err != nil {
		return domain.Grid{}, err
	}
	if len(dims) != 2 || dims[0] != domain.DimTime {
		return domain.Grid{}, incompatible(domain.VarTimes, "dimensions %v, want (%s, %s)", dims, domain.DimTime, domain.DimDateStrLen)
	}
	if len(labels) != shape.T {
		return domain.Grid{}, incompatible(domain.VarTimes, "%d labels for %d time steps", len(labels), shape.T)
	}

	g := domain.Grid{
		Source: path,
		Wind: domain.VectorField{
			U: domain.Field{Shape: shape, Data: u.data},
			V: domain.Field{Shape: shape, Data: v.data},
		},
		Lat:   lat,
		Lon:   lon,
		Times: labels,
	}
	if err := g.Validate(); err != nil {
		return domain.Grid{}, fmt.Errorf("%w: %w", domain.ErrMissingField, err)
	}
	return g, nil
}

func gridShape(name string, v floatVar) (domain.Shape, error) {
	if !slices.Equal(v.dims, gridDims) {
		return domain.Shape{}, incompatible(name, "dimensions %v, want %v", v.dims, gridDims)
	}
	shape := domain.Shape{T: v.lens[0], Y: v.lens[1], X: v.lens[2]}
	if shape.Y == 0 || shape.X == 0 {
		return domain.Shape{}, incompatible(name, "empty horizontal grid %v", shape)
	}
	if len(v.data) != shape.Len() {
		return domain.Shape{}, incompatible(name, "%d values for shape %v", len(v.data), shape)
	}
	return shape, nil
}

// readCoordinate accepts (south_north, west_east) or (Time, south_north, west_east).
func readCoordinate(c container, name string, wind domain.Shape) (domain.CoordinateField, error) {
	v, err := c.floats(name)
	if err != nil {
		return domain.CoordinateField{}, err
	}
	switch {
	case slices.Equal(v.dims, gridDims[1:]):
		if v.lens[0] != wind.Y || v.lens[1] != wind.X || len(v.data) != wind.Cells() {
			return domain.CoordinateField{}, incompatible(name, "lengths %v, wind grid is %v", v.lens, wind)
		}
		return domain.NewStaticCoordinate(wind.Y, wind.X, v.data), nil
	case slices.Equal(v.dims, gridDims):
		shape := domain.Shape{T: v.lens[0], Y: v.lens[1], X: v.lens[2]}
		if shape != wind || len(v.data) != wind.Len() {
			return domain.CoordinateField{}, incompatible(name, "shape %v, wind grid is %v", shape, wind)
		}
		return domain.NewTimeVaryingCoordinate(shape, v.data), nil
	default:
		return domain.CoordinateField{}, incompatible(name, "dimensions %v", v.dims)
	}
}
