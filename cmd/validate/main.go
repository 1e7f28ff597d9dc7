// Command validate re-reads a WRF input file and the calmstreak output made
// from it and checks the result phase by phase: grid alignment, the wind
// speed law, the calm streak recurrence and the metadata contract.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -input data/mock/wrfout_d01_2024-07-01_00:00:00 \
//	  -output data/mock/wrfout_d01_2024-07-01_00:00:00_output.nc
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/couchcryptid/calmstreak/internal/adapter/netcdf"
	"github.com/couchcryptid/calmstreak/internal/domain"
)

// maxReported caps the errors kept per phase.
const maxReported = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	errors  []string
	dropped int
}

func (p *phase) errorf(format string, args ...any) {
	if len(p.errors) >= maxReported {
		p.dropped++
		return
	}
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	input := flag.String("input", "", "WRF input file the output was computed from")
	output := flag.String("output", "", "calmstreak output file")
	flag.Parse()

	if *input == "" || *output == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*input, *output, os.Stdout))
}

func run(inputPath, outputPath string, w io.Writer) int {
	fmt.Fprintln(w, "=== Calm Streak Output Validation ===")
	fmt.Fprintln(w)

	grid, err := netcdf.NewReader(slog.New(slog.DiscardHandler)).Extract(context.Background(), inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load input: %v\n", err)
		return 1
	}
	bundle, meta, err := netcdf.ReadBundle(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load output: %v\n", err)
		return 1
	}

	align := validateAlignment(grid, bundle)
	phases := []*phase{align}
	// The value checks index both files by the same shape.
	if align.passed() {
		phases = append(phases,
			validateSpeedLaw(grid, bundle),
			validateStreaks(bundle, meta.Global.Threshold),
		)
	}
	phases = append(phases, validateMetadata(meta, inputPath))

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors)+p.dropped)
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Grid: %s, threshold %g m/s\n", bundle.Shape, meta.Global.Threshold)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
		if p.dropped > 0 {
			fmt.Fprintf(w, "  ... and %d more\n", p.dropped)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateAlignment(g domain.Grid, b domain.ResultBundle) *phase {
	p := &phase{name: "Phase 1: Grid alignment"}
	if g.Shape() != b.Shape {
		p.errorf("output shape %v, input shape %v", b.Shape, g.Shape())
		return p
	}
	if !slices.Equal(g.Times, b.Times) {
		p.errorf("Times differ: input %d labels, output %d labels", len(g.Times), len(b.Times))
	}
	for _, c := range []struct {
		name string
		in   domain.CoordinateField
		out  domain.Field
	}{
		{domain.VarXLAT, g.Lat, b.Lat},
		{domain.VarXLONG, g.Lon, b.Lon},
	} {
		want, err := c.in.Normalize(g.Shape().T)
		if err != nil {
			p.errorf("%s: %v", c.name, err)
			continue
		}
		if !slices.Equal(want.Data, c.out.Data) {
			p.errorf("%s values differ from input", c.name)
		}
	}
	return p
}

func validateSpeedLaw(g domain.Grid, b domain.ResultBundle) *phase {
	p := &phase{name: "Phase 2: Wind speed law"}
	for i := range b.Speed.Data {
		want := domain.Speed(g.Wind.U.Data[i], g.Wind.V.Data[i])
		got := b.Speed.Data[i]
		if got != want && !(isNaN(got) && isNaN(want)) {
			p.errorf("wspd[%d] = %g, want %g", i, got, want)
		}
		if got < 0 {
			p.errorf("wspd[%d] = %g is negative", i, got)
		}
	}
	return p
}

func validateStreaks(b domain.ResultBundle, threshold float64) *phase {
	p := &phase{name: "Phase 3: Calm streak recurrence"}
	s := b.Shape
	for y := range s.Y {
		for x := range s.X {
			for t := range s.T {
				got := b.Streaks.At(t, y, x)
				if got < 0 {
					p.errorf("acc[%d,%d,%d] = %d is negative", t, y, x, got)
				}
				if t == 0 {
					if got != 0 {
						p.errorf("acc[0,%d,%d] = %d, want 0", y, x, got)
					}
					continue
				}
				want := int32(0)
				if float64(b.Speed.At(t, y, x)) < threshold {
					want = b.Streaks.At(t-1, y, x) + 1
				}
				if got != want {
					p.errorf("acc[%d,%d,%d] = %d, want %d", t, y, x, got, want)
				}
			}
		}
	}
	return p
}

func validateMetadata(m netcdf.Metadata, inputPath string) *phase {
	p := &phase{name: "Phase 4: Metadata contract"}
	if m.Global.Title == "" {
		p.errorf("global title is empty")
	}
	if m.Global.Description == "" {
		p.errorf("global description is empty")
	}
	if m.Global.Source != inputPath {
		p.errorf("global source = %q, want %q", m.Global.Source, inputPath)
	}
	for _, v := range []struct {
		name string
		want domain.VariableAttributes
	}{
		{domain.VarWspd, domain.SpeedAttributes},
		{domain.VarAcc, domain.StreakAttributes},
		{domain.VarXLAT, domain.LatAttributes},
		{domain.VarXLONG, domain.LonAttributes},
	} {
		if got := m.Variables[v.name]; got != v.want {
			p.errorf("%s attributes = %+v, want %+v", v.name, got, v.want)
		}
	}
	return p
}

func isNaN(f float32) bool { return math.IsNaN(float64(f)) }
