package netcdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"

	"github.com/couchcryptid/calmstreak/internal/domain"
)

// Writer serializes result bundles as NetCDF classic files.
// It implements pipeline.BundleLoader.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a Writer that logs through logger.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logger}
}

// Load writes b to path, replacing any existing file. The container is built
// in a temporary file next to path and renamed into place, so a failed write
// never leaves a truncated file behind. Failures wrap domain.ErrWrite.
func (w *Writer) Load(ctx context.Context, b domain.ResultBundle, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.Shape.Y == 0 || b.Shape.X == 0 {
		return fmt.Errorf("%w: %w: empty horizontal grid %v", domain.ErrWrite, domain.ErrShapeMismatch, b.Shape)
	}

	width := labelWidth(b.Times)
	h := cdf.NewHeader(
		[]string{domain.DimTime, domain.DimDateStrLen, domain.DimSouthNorth, domain.DimWestEast},
		[]int{0, width, b.Shape.Y, b.Shape.X},
	)
	h.AddAttribute("", "title", b.Attributes.Title)
	h.AddAttribute("", "description", b.Attributes.Description)
	h.AddAttribute("", "source", b.Attributes.Source)
	h.AddAttribute("", "history", b.Attributes.History)
	h.AddAttribute("", "threshold", []float64{b.Attributes.Threshold})

	// Times goes first: the last record variable must be 4-byte aligned for
	// UpdateNumRecs to count the final record.
	h.AddVariable(domain.VarTimes, []string{domain.DimTime, domain.DimDateStrLen}, "")
	vars := b.Variables()
	for _, v := range vars {
		var fill any = []float32{0}
		if v.Int != nil {
			fill = []int32{0}
		}
		h.AddVariable(v.Name, gridDims, fill)
		addVariableAttributes(h, v.Name, v.Attributes)
	}

	err := writeFile(path, h, func(f *cdf.File) error {
		if b.Shape.T == 0 {
			return nil
		}
		if err := writeLabels(f, b.Times, width); err != nil {
			return err
		}
		end := []int{b.Shape.T, b.Shape.Y, b.Shape.X}
		for _, v := range vars {
			var data any = v.Float
			if v.Int != nil {
				data = v.Int
			}
			if _, err := f.Writer(v.Name, []int{0, 0, 0}, end).Write(data); err != nil {
				return fmt.Errorf("write %s: %w", v.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.logger.Debug("bundle written", "output", path, "shape", b.Shape.String())
	return nil
}

func addVariableAttributes(h *cdf.Header, name string, a domain.VariableAttributes) {
	h.AddAttribute(name, "FieldType", []int32{a.FieldType})
	h.AddAttribute(name, "MemoryOrder", a.MemoryOrder)
	h.AddAttribute(name, "description", a.Description)
	h.AddAttribute(name, "units", a.Units)
	h.AddAttribute(name, "stagger", a.Stagger)
	h.AddAttribute(name, "coordinates", a.Coordinates)
}

// labelWidth sizes DateStrLen. It never returns 0, which NetCDF reserves for
// the record dimension.
func labelWidth(labels domain.TimeLabels) int {
	return max(labels.Width(), len(domain.WRFTimeLayout))
}

func writeLabels(f *cdf.File, labels domain.TimeLabels, width int) error {
	var sb strings.Builder
	for _, l := range labels {
		sb.WriteString(l)
		sb.WriteString(strings.Repeat("\x00", width-len(l)))
	}
	w := f.Writer(domain.VarTimes, []int{0, 0}, []int{len(labels), width})
	if _, err := w.Write(sb.String()); err != nil {
		return fmt.Errorf("write %s: %w", domain.VarTimes, err)
	}
	return nil
}

// writeFile defines h in a temp file beside path, fills it with write, fixes
// the record count and renames it over path.
func writeFile(path string, h *cdf.Header, write func(*cdf.File) error) (err error) {
	h.Define()
	for _, e := range h.Check() {
		if e != nil {
			return fmt.Errorf("%w: header: %w", domain.ErrWrite, e)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrWrite, path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	f, err := cdf.Create(tmp, h)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrWrite, path, err)
	}
	if err = write(f); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrWrite, path, err)
	}
	if err = cdf.UpdateNumRecs(tmp); err != nil {
		return fmt.Errorf("%w: update record count: %w", domain.ErrWrite, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrWrite, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrWrite, path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrWrite, path, err)
	}
	return nil
}
