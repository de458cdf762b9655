package pagerank

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/parallax/pkg/errors"
)

const (
	// DefaultAlpha is the damping factor used by the CLI and server when
	// none is given.
	DefaultAlpha = 0.85

	// DefaultTolerance replaces a zero tolerance.
	DefaultTolerance = 1e-6

	// DefaultMaxIter replaces a non-positive iteration cap.
	DefaultMaxIter = 500
)

// Options configures a PageRank run.
type Options struct {
	// Alpha is the damping factor. Must be in (0, 1).
	Alpha float64 `json:"alpha" toml:"alpha"`

	// Tolerance scales the convergence threshold: iteration stops when the
	// L1 residual is below Tolerance * V. Zero means DefaultTolerance.
	Tolerance float64 `json:"tolerance,omitempty" toml:"tolerance"`

	// MaxIter caps the number of iterations. Zero or negative means
	// DefaultMaxIter.
	MaxIter int `json:"max_iter,omitempty" toml:"max_iter"`

	// Guess is an optional initial rank vector of length V. It must be
	// non-negative with a positive sum and is normalized before use; the
	// caller's slice is not modified.
	Guess []float64 `json:"guess,omitempty" toml:"-"`

	// Logger receives per-iteration debug output. Defaults to log.Default().
	Logger *log.Logger `json:"-" toml:"-"`
}

// DefaultOptions returns options with every field at its default.
func DefaultOptions() Options {
	return Options{
		Alpha:     DefaultAlpha,
		Tolerance: DefaultTolerance,
		MaxIter:   DefaultMaxIter,
	}
}

// Validate checks the options and fills in defaults for zero values.
// The guess length is checked later against the graph.
func (o *Options) Validate() error {
	if err := errors.ValidateOpenUnit("alpha", o.Alpha); err != nil {
		return err
	}
	if math.IsNaN(o.Tolerance) || math.IsInf(o.Tolerance, 0) || o.Tolerance < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "tolerance must be a non-negative number, got %g", o.Tolerance)
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIter <= 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return nil
}

// normalizeGuess validates a guess for a graph with n vertices and returns
// a normalized copy.
func normalizeGuess(guess []float64, n int) ([]float64, error) {
	if err := errors.ValidateLength("guess", len(guess), n); err != nil {
		return nil, err
	}
	var sum float64
	for i, g := range guess {
		if math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "guess[%d] must be a non-negative number, got %g", i, g)
		}
		sum += g
	}
	if sum == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "guess sums to zero")
	}
	if math.IsInf(sum, 0) {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "guess sum overflows")
	}
	out := make([]float64, n)
	for i, g := range guess {
		out[i] = g / sum
	}
	return out, nil
}
