// Package netcdf reads WRF wind grids from NetCDF containers and writes calm
// streak result bundles back out as NetCDF classic files.
package netcdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/couchcryptid/calmstreak/internal/domain"
)

// format identifies the on-disk encoding of a container.
type format int

const (
	formatClassic format = iota // CDF-1 and CDF-2, read with ctessum/cdf
	formatHDF5                  // NetCDF-4 and CDF-5, read with go-native-netcdf
)

func (f format) String() string {
	if f == formatHDF5 {
		return "netcdf4"
	}
	return "classic"
}

var (
	magicCDF1 = []byte("CDF\x01")
	magicCDF2 = []byte("CDF\x02")
	magicCDF5 = []byte("CDF\x05")
	magicHDF5 = []byte("\x89HDF")
)

// floatVar is a real-valued variable as read from any backend.
type floatVar struct {
	dims []string
	lens []int
	data []float32
}

// container is the read side shared by both backends.
type container interface {
	floats(name string) (floatVar, error)
	labels(name string) (dims []string, labels []string, err error)
	Close() error
}

// openContainer sniffs the file signature and opens the matching backend.
func openContainer(path string) (container, format, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, 0, fmt.Errorf("%w: %s: %w", domain.ErrNotFound, path, err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("%w: %s is a directory", domain.ErrNotFound, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", domain.ErrNotFound, path, err)
	}
	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("%w: %s is not a NetCDF file", domain.ErrNotFound, path)
	}

	switch {
	case bytes.Equal(magic, magicCDF1), bytes.Equal(magic, magicCDF2):
		c, err := openClassic(f)
		if err != nil {
			f.Close()
			return nil, 0, fmt.Errorf("%w: %s: %w", domain.ErrNotFound, path, err)
		}
		return c, formatClassic, nil
	case bytes.Equal(magic, magicHDF5), bytes.Equal(magic, magicCDF5):
		f.Close()
		c, err := openHDF5(path)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %w", domain.ErrNotFound, path, err)
		}
		return c, formatHDF5, nil
	default:
		f.Close()
		return nil, 0, fmt.Errorf("%w: %s is not a NetCDF file", domain.ErrNotFound, path)
	}
}

func missing(name string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrMissingField, name, err)
	}
	return fmt.Errorf("%w: %s", domain.ErrMissingField, name)
}

// incompatible reports a variable that exists but cannot be used. It matches
// both ErrMissingField and ErrShapeMismatch.
func incompatible(name, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s: %s", domain.ErrMissingField, domain.ErrShapeMismatch, name, fmt.Sprintf(format, args...))
}

func product(lens []int) int {
	n := 1
	for _, l := range lens {
		n *= l
	}
	return n
}

func toFloat32(name string, buf any) ([]float32, error) {
	switch v := buf.(type) {
	case []float32:
		return v, nil
	case []float64:
		return narrow(v), nil
	default:
		return nil, incompatible(name, "unsupported element type %T", buf)
	}
}

// splitLabels cuts a (T, width) char block into T labels, dropping NUL padding.
func splitLabels(raw []byte, t, width int) []string {
	out := make([]string, t)
	for i := range out {
		out[i] = string(bytes.TrimRight(raw[i*width:(i+1)*width], "\x00"))
	}
	return out
}
