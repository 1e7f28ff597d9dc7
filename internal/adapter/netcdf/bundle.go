package netcdf

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/calmstreak/internal/domain"
)

// Metadata is the attribute content of a written result container.
type Metadata struct {
	Global    domain.BundleAttributes
	Variables map[string]domain.VariableAttributes
}

// ReadBundle re-reads a container produced by Writer.Load.
func ReadBundle(path string) (domain.ResultBundle, Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ResultBundle{}, Metadata{}, fmt.Errorf("%w: %s: %w", domain.ErrNotFound, path, err)
	}
	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil || !(bytes.Equal(magic, magicCDF1) || bytes.Equal(magic, magicCDF2)) {
		f.Close()
		return domain.ResultBundle{}, Metadata{}, fmt.Errorf("%w: %s is not a NetCDF classic file", domain.ErrNotFound, path)
	}
	c, err := openClassic(f)
	if err != nil {
		f.Close()
		return domain.ResultBundle{}, Metadata{}, fmt.Errorf("%w: %s: %w", domain.ErrNotFound, path, err)
	}
	defer c.Close()

	speed, err := c.floats(domain.VarWspd)
	if err != nil {
		return domain.ResultBundle{}, Metadata{}, err
	}
	shape, err := gridShape(domain.VarWspd, speed)
	if err != nil {
		return domain.ResultBundle{}, Metadata{}, err
	}

	dims, lens, acc, err := c.ints(domain.VarAcc)
	if err != nil {
		return domain.ResultBundle{}, Metadata{}, err
	}
	if accShape, err := gridShape(domain.VarAcc, floatVar{dims: dims, lens: lens, data: make([]float32, len(acc))}); err != nil {
		return domain.ResultBundle{}, Metadata{}, err
	} else if accShape != shape {
		return domain.ResultBundle{}, Metadata{}, incompatible(domain.VarAcc, "shape %v, %s is %v", accShape, domain.VarWspd, shape)
	}

	lat, err := readCoordinate(c, domain.VarXLAT, shape)
	if err != nil {
		return domain.ResultBundle{}, Metadata{}, err
	}
	lon, err := readCoordinate(c, domain.VarXLONG, shape)
	if err != nil {
		return domain.ResultBundle{}, Metadata{}, err
	}
	latField, err := lat.Normalize(shape.T)
	if err != nil {
		return domain.ResultBundle{}, Metadata{}, err
	}
	lonField, err := lon.Normalize(shape.T)
	if err != nil {
		return domain.ResultBundle{}, Metadata{}, err
	}

	_, labels, err := c.labels(domain.VarTimes)
	if err != nil {
		return domain.ResultBundle{}, Metadata{}, err
	}

	meta := Metadata{
		Global: domain.BundleAttributes{
			Title:       c.attrString("", "title"),
			Description: c.attrString("", "description"),
			Source:      c.attrString("", "source"),
			History:     c.attrString("", "history"),
			Threshold:   c.attrFloat64("", "threshold"),
		},
		Variables: map[string]domain.VariableAttributes{},
	}
	for _, name := range []string{domain.VarWspd, domain.VarAcc, domain.VarXLAT, domain.VarXLONG} {
		meta.Variables[name] = domain.VariableAttributes{
			FieldType:   c.attrInt32(name, "FieldType"),
			MemoryOrder: c.attrString(name, "MemoryOrder"),
			Description: c.attrString(name, "description"),
			Units:       c.attrString(name, "units"),
			Stagger:     c.attrString(name, "stagger"),
			Coordinates: c.attrString(name, "coordinates"),
		}
	}

	return domain.ResultBundle{
		Shape:      shape,
		Speed:      domain.Field{Shape: shape, Data: speed.data},
		Streaks:    domain.StreakField{Shape: shape, Data: acc},
		Lat:        latField,
		Lon:        lonField,
		Times:      labels,
		Attributes: meta.Global,
	}, meta, nil
}
