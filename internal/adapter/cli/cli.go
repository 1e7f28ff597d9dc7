// Package cli turns command-line arguments or an interactive session into a
// calm streak run request.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/akamensky/argparse"

	"github.com/couchcryptid/calmstreak/internal/config"
)

// Request describes one run: which file to read, where to write and the calm
// threshold in m/s.
type Request struct {
	Input       string
	Output      string
	Threshold   float64
	Interactive bool
}

// ErrMissingInput is returned when no input path was supplied.
var ErrMissingInput = errors.New("no input file given")

// UsageError is a command-line mistake. Usage holds the text to show the user.
type UsageError struct {
	Err   error
	Usage string
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// ParseArgs parses args (args[0] is the program name) as
//
//	calmstreak [-o OUTPUT] [-t THRESHOLD] [-i] INPUT
//
// Unset flags fall back to cfg. With -i the input may be omitted; Prompt
// completes the request.
func ParseArgs(args []string, cfg *config.Config) (Request, error) {
	p := argparse.NewParser("calmstreak", "Computes 10 m wind speed and calm streak counts from a WRF output file")
	input := p.StringPositional(&argparse.Options{
		Help: "WRF output file holding U10, V10, XLAT, XLONG and Times",
	})
	output := p.String("o", "output", &argparse.Options{
		Help: fmt.Sprintf("Output NetCDF file (default %q, or INPUT_output.nc with -i)", cfg.OutputPath),
	})
	threshold := p.String("t", "threshold", &argparse.Options{
		Default: strconv.FormatFloat(cfg.Threshold, 'g', -1, 64),
		Help:    "Calm wind speed threshold in m/s",
	})
	interactive := p.Flag("i", "interactive", &argparse.Options{
		Help: "Prompt for the input file and threshold",
	})

	if err := p.Parse(args); err != nil {
		return Request{}, &UsageError{Err: err, Usage: p.Usage(err)}
	}

	th, err := config.ParseThreshold(*threshold)
	if err != nil {
		return Request{}, &UsageError{Err: err, Usage: p.Usage(err)}
	}
	req := Request{
		Input:       *input,
		Output:      *output,
		Threshold:   th,
		Interactive: *interactive,
	}
	if req.Interactive {
		return req, nil
	}
	if req.Input == "" {
		return Request{}, &UsageError{Err: ErrMissingInput, Usage: p.Usage(ErrMissingInput)}
	}
	if req.Output == "" {
		req.Output = cfg.OutputPath
	}
	return req, nil
}

// Prompt asks for whatever req is missing: the input path (surrounding quotes
// are stripped) and the threshold, asking again until it parses. An empty
// threshold answer keeps req.Threshold. Without an explicit output the result
// goes next to the input, see DefaultOutput.
func Prompt(in io.Reader, out io.Writer, req Request) (Request, error) {
	sc := bufio.NewScanner(in)

	if req.Input == "" {
		fmt.Fprint(out, "Path to the input NetCDF file: ")
		line, err := readLine(sc)
		if err != nil {
			return Request{}, err
		}
		req.Input = strings.Trim(line, `"'`)
		if req.Input == "" {
			return Request{}, &UsageError{Err: ErrMissingInput, Usage: "an input file is required\n"}
		}
	}

	for {
		fmt.Fprintf(out, "Calm wind speed threshold in m/s [%g]: ", req.Threshold)
		line, err := readLine(sc)
		if err != nil {
			return Request{}, err
		}
		if line == "" {
			break
		}
		th, err := config.ParseThreshold(line)
		if err != nil {
			fmt.Fprintln(out, "Invalid number, try again.")
			continue
		}
		req.Threshold = th
		break
	}

	if req.Output == "" {
		req.Output = DefaultOutput(req.Input)
	}
	return req, nil
}

// DefaultOutput derives the interactive output path: a trailing ".nc" becomes
// "_output.nc", anything else gets "_output.nc" appended.
func DefaultOutput(input string) string {
	return strings.TrimSuffix(input, ".nc") + "_output.nc"
}

func readLine(sc *bufio.Scanner) (string, error) {
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return "", &UsageError{Err: io.ErrUnexpectedEOF, Usage: "input ended before all answers were given\n"}
}
