package netcdf

import (
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// hdf5Var is the part of a go-native-netcdf variable the reader needs.
type hdf5Var interface {
	Values() (any, error)
	Dimensions() []string
}

// hdf5Group looks up variables in an open NetCDF-4 file.
type hdf5Group interface {
	variable(name string) (hdf5Var, error)
	Close()
}

type apiGroup struct {
	g api.Group
}

func (a apiGroup) variable(name string) (hdf5Var, error) { return a.g.GetVarGetter(name) }
func (a apiGroup) Close()                                 { a.g.Close() }

// hdf5Container reads NetCDF-4 files, which is what WRF writes when built
// with io_form_history = 11 or compressed output.
type hdf5Container struct {
	nc hdf5Group
}

func openHDF5(path string) (*hdf5Container, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, err
	}
	return &hdf5Container{nc: apiGroup{nc}}, nil
}

func (c *hdf5Container) Close() error {
	c.nc.Close()
	return nil
}

func (c *hdf5Container) values(name string) ([]string, any, error) {
	v, err := c.nc.variable(name)
	if err != nil {
		return nil, nil, missing(name, err)
	}
	vals, err := v.Values()
	if err != nil {
		return nil, nil, missing(name, err)
	}
	return v.Dimensions(), vals, nil
}

func (c *hdf5Container) floats(name string) (floatVar, error) {
	dims, v, err := c.values(name)
	if err != nil {
		return floatVar{}, err
	}
	switch x := v.(type) {
	case [][][]float32:
		return floatVar{dims: dims, lens: lens3(len(x), x), data: flatten3(x)}, nil
	case [][]float32:
		return floatVar{dims: dims, lens: lens2(len(x), x), data: flatten2(x)}, nil
	case [][][]float64:
		return floatVar{dims: dims, lens: lens3(len(x), x), data: narrow(flatten3(x))}, nil
	case [][]float64:
		return floatVar{dims: dims, lens: lens2(len(x), x), data: narrow(flatten2(x))}, nil
	default:
		return floatVar{}, incompatible(name, "unsupported value type %T", v)
	}
}

func (c *hdf5Container) labels(name string) ([]string, []string, error) {
	dims, v, err := c.values(name)
	if err != nil {
		return nil, nil, err
	}
	switch x := v.(type) {
	case []string:
		out := make([]string, len(x))
		for i, s := range x {
			out[i] = strings.TrimRight(s, "\x00")
		}
		return dims, out, nil
	case string:
		// A single record collapses to one string.
		return dims, []string{strings.TrimRight(x, "\x00")}, nil
	default:
		return nil, nil, incompatible(name, "not a char variable (%T)", v)
	}
}

func lens2[T any](n int, x [][]T) []int {
	if n == 0 {
		return []int{0, 0}
	}
	return []int{n, len(x[0])}
}

func lens3[T any](n int, x [][][]T) []int {
	if n == 0 || len(x[0]) == 0 {
		return []int{n, 0, 0}
	}
	return []int{n, len(x[0]), len(x[0][0])}
}

func flatten2[T any](x [][]T) []T {
	var out []T
	for _, row := range x {
		out = append(out, row...)
	}
	return out
}

func flatten3[T any](x [][][]T) []T {
	var out []T
	for _, plane := range x {
		out = append(out, flatten2(plane)...)
	}
	return out
}

func narrow(xs []float64) []float32 {
	out := make([]float32, len(xs))
	for i, x := range xs {
		out[i] = float32(x)
	}
	return out
}
