// Package rv describes the random variables the simulator constructs from its
// argument list. A variable is never sampled here; only its name, constructor
// arguments and expectation are needed.
package rv

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrSourceRead reports an empirical CDF file that is missing, unreadable or malformed.
var ErrSourceRead = errors.New("reading CDF source")

// RandomVariable is a distribution descriptor the simulator builds with
// create_<Name>_rv <Args...>.
type RandomVariable interface {
	// Name is the simulator-side identifier of the distribution.
	Name() string
	// Mean returns the expectation of the distribution.
	Mean() (float64, error)
	// Args returns constructor parameters in the order the simulator expects.
	Args() []string
}

// Fixed always yields the same value.
type Fixed struct {
	value float64
	arg   string
}

// NewFixed returns a Fixed whose argument is spelled as a real ("10.0").
func NewFixed(value float64) Fixed { return Fixed{value: value, arg: FormatFloat(value)} }

// NewFixedInt returns a Fixed whose argument is spelled as an integer ("10").
func NewFixedInt(value int64) Fixed {
	return Fixed{value: float64(value), arg: strconv.FormatInt(value, 10)}
}

// Name is "fixed".
func (f Fixed) Name() string { return "fixed" }

// Mean is the value itself.
func (f Fixed) Mean() (float64, error) { return f.value, nil }

// Args is the value.
func (f Fixed) Args() []string { return []string{f.arg} }

// Uniform is uniform on [min, max].
type Uniform struct {
	min, max       float64
	minArg, maxArg string
}

// NewUniform returns a Uniform whose bounds are spelled as reals.
func NewUniform(min, max float64) Uniform {
	return Uniform{min: min, max: max, minArg: FormatFloat(min), maxArg: FormatFloat(max)}
}

// NewUniformInt returns a Uniform whose bounds are spelled as integers.
func NewUniformInt(min, max int64) Uniform {
	return Uniform{
		min:    float64(min),
		max:    float64(max),
		minArg: strconv.FormatInt(min, 10),
		maxArg: strconv.FormatInt(max, 10),
	}
}

// Name is "uniform".
func (u Uniform) Name() string { return "uniform" }

// Mean is the midpoint of the bounds.
func (u Uniform) Mean() (float64, error) { return (u.min + u.max) * 0.5, nil }

// Args are the lower and upper bounds.
func (u Uniform) Args() []string { return []string{u.minArg, u.maxArg} }

// Exponential is parameterized by its rate; the mean is 1/rate.
type Exponential struct {
	rate float64
}

// NewExponential returns an Exponential with the given rate.
func NewExponential(rate float64) Exponential { return Exponential{rate: rate} }

// Rate returns the rate parameter.
func (e Exponential) Rate() float64 { return e.rate }

// Name is "exponential".
func (e Exponential) Name() string { return "exponential" }

// Mean is 1/rate.
func (e Exponential) Mean() (float64, error) { return 1.0 / e.rate, nil }

// Args is the rate.
func (e Exponential) Args() []string { return []string{FormatFloat(e.rate)} }

// Empirical is defined by a CDF file on disk. Mean re-reads the file on every call;
// callers that need the value repeatedly should keep it.
type Empirical struct {
	file          string
	interpolation Interpolation
}

// NewEmpirical returns an Empirical reading its CDF from file.
func NewEmpirical(file string, interpolation Interpolation) Empirical {
	return Empirical{file: file, interpolation: interpolation}
}

// File returns the CDF file path.
func (e Empirical) File() string { return e.file }

// Interpolation returns the policy used by Mean.
func (e Empirical) Interpolation() Interpolation { return e.interpolation }

// Name is "empirical".
func (e Empirical) Name() string { return "empirical" }

// Args are the CDF file and the interpolation code.
func (e Empirical) Args() []string {
	return []string{e.file, strconv.Itoa(e.interpolation.Code())}
}

// Mean reads the CDF file and integrates it with the interpolation policy.
func (e Empirical) Mean() (float64, error) {
	cdf, err := ReadCDF(e.file)
	if err != nil {
		return 0, err
	}
	return e.interpolation.Mean(cdf), nil
}

// Point is one CDF row: Y is the value column, X the cumulative column.
type Point struct {
	Y, X float64
}

// ReadCDF parses a whitespace-delimited CDF file. Each non-blank line holds two or
// three numbers; the first is Y and the last is X, a middle column is ignored.
func ReadCDF(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceRead, err)
	}
	defer f.Close()

	var cdf []Point
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("%w: %s:%d: want 2 or 3 columns, got %d", ErrSourceRead, path, line, len(fields))
		}
		y, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %w", ErrSourceRead, path, line, err)
		}
		x, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %w", ErrSourceRead, path, line, err)
		}
		cdf = append(cdf, Point{Y: y, X: x})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceRead, path, err)
	}
	return cdf, nil
}

// FormatFloat renders f the way the simulator's Tcl scripts were always fed:
// shortest round-trip digits, a trailing ".0" on integral values, and exponent
// notation outside [1e-4, 1e16).
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
