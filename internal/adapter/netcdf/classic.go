package netcdf

import (
	"fmt"
	"os"
	"slices"

	"github.com/ctessum/cdf"
)

// classicContainer reads CDF-1/CDF-2 files.
type classicContainer struct {
	file *os.File
	nc   *cdf.File
}

func openClassic(f *os.File) (*classicContainer, error) {
	nc, err := cdf.Open(f)
	if err != nil {
		return nil, err
	}
	return &classicContainer{file: f, nc: nc}, nil
}

func (c *classicContainer) Close() error { return c.file.Close() }

func (c *classicContainer) has(name string) bool {
	return slices.Contains(c.nc.Header.Variables(), name)
}

// read loads a whole variable into the backend's natural slice type.
func (c *classicContainer) read(name string) (dims []string, lens []int, buf any, err error) {
	if !c.has(name) {
		return nil, nil, nil, missing(name, nil)
	}
	dims = c.nc.Header.Dimensions(name)
	lens = c.nc.Header.Lengths(name)
	n := product(lens)
	r := c.nc.Reader(name, make([]int, len(lens)), lens)
	buf = r.Zero(n)
	if n == 0 {
		return dims, lens, buf, nil
	}
	if _, err := r.Read(buf); err != nil {
		return nil, nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	return dims, lens, buf, nil
}

func (c *classicContainer) floats(name string) (floatVar, error) {
	dims, lens, buf, err := c.read(name)
	if err != nil {
		return floatVar{}, err
	}
	data, err := toFloat32(name, buf)
	if err != nil {
		return floatVar{}, err
	}
	return floatVar{dims: dims, lens: lens, data: data}, nil
}

func (c *classicContainer) ints(name string) ([]string, []int, []int32, error) {
	dims, lens, buf, err := c.read(name)
	if err != nil {
		return nil, nil, nil, err
	}
	data, ok := buf.([]int32)
	if !ok {
		return nil, nil, nil, incompatible(name, "unsupported element type %T", buf)
	}
	return dims, lens, data, nil
}

func (c *classicContainer) labels(name string) ([]string, []string, error) {
	dims, lens, buf, err := c.read(name)
	if err != nil {
		return nil, nil, err
	}
	if len(lens) != 2 {
		return nil, nil, incompatible(name, "want 2 dimensions, got %d", len(lens))
	}
	raw, ok := buf.([]byte)
	if !ok {
		return nil, nil, incompatible(name, "not a char variable (%T)", buf)
	}
	return dims, splitLabels(raw, lens[0], lens[1]), nil
}

// attribute helpers; cdf returns char attributes as string and numeric ones as slices.

func (c *classicContainer) attrString(v, a string) string {
	s, _ := c.nc.Header.GetAttribute(v, a).(string)
	return s
}

func (c *classicContainer) attrInt32(v, a string) int32 {
	if xs, ok := c.nc.Header.GetAttribute(v, a).([]int32); ok && len(xs) > 0 {
		return xs[0]
	}
	return 0
}

func (c *classicContainer) attrFloat64(v, a string) float64 {
	if xs, ok := c.nc.Header.GetAttribute(v, a).([]float64); ok && len(xs) > 0 {
		return xs[0]
	}
	return 0
}
