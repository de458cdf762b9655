package rmat

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/pflag"

	"github.com/matzehuels/parallax/pkg/errors"
)

// MaxScale is the largest supported scale. Vertex ids are int32.
const MaxScale = 30

// Descriptor parameterizes a generated graph.
type Descriptor struct {
	// Scale is log2 of the vertex count.
	Scale int `json:"scale" toml:"scale"`

	// EdgeFactor is the number of edges per vertex: E = V * EdgeFactor.
	EdgeFactor int `json:"edge_factor" toml:"edge_factor"`

	// Quadrant probabilities; they must sum to 1.
	A float64 `json:"a" toml:"a"`
	B float64 `json:"b" toml:"b"`
	C float64 `json:"c" toml:"c"`
	D float64 `json:"d" toml:"d"`

	// Weighted attaches uniform weights in [MinWeight, MaxWeight).
	// Both zero means [0, 1).
	Weighted  bool    `json:"weighted,omitempty" toml:"weighted"`
	MinWeight float64 `json:"min_weight,omitempty" toml:"min_weight"`
	MaxWeight float64 `json:"max_weight,omitempty" toml:"max_weight"`

	// Seed selects the random streams.
	Seed uint64 `json:"seed" toml:"seed"`

	// Permute relabels vertices with a random permutation, which removes
	// the correlation between vertex id and degree.
	Permute bool `json:"permute" toml:"permute"`
}

// Default returns the Graph500 parameters at scale 10.
func Default() Descriptor {
	return Descriptor{
		Scale:      10,
		EdgeFactor: 16,
		A:          0.57,
		B:          0.19,
		C:          0.19,
		D:          0.05,
		Seed:       42,
		Permute:    true,
	}
}

// Vertices returns 2^Scale.
func (d Descriptor) Vertices() int { return 1 << d.Scale }

// Edges returns V * EdgeFactor.
func (d Descriptor) Edges() int64 { return int64(d.Vertices()) * int64(d.EdgeFactor) }

// weightRange returns the effective weight interval.
func (d Descriptor) weightRange() (lo, hi float64) {
	if d.MinWeight == 0 && d.MaxWeight == 0 {
		return 0, 1
	}
	return d.MinWeight, d.MaxWeight
}

// Validate reports malformed descriptors with ErrCodeInvalidArgument.
func (d Descriptor) Validate() error {
	if d.Scale <= 0 || d.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidArgument, "scale must be in [1, %d], got %d", MaxScale, d.Scale)
	}
	if d.EdgeFactor <= 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "edge factor must be positive, got %d", d.EdgeFactor)
	}
	probs := []struct {
		name string
		p    float64
	}{{"a", d.A}, {"b", d.B}, {"c", d.C}, {"d", d.D}}
	var sum float64
	for _, q := range probs {
		if err := errors.ValidateProbability(q.name, q.p); err != nil {
			return err
		}
		sum += q.p
	}
	if math.Abs(sum-1) > 1e-6 {
		return errors.New(errors.ErrCodeInvalidArgument, "probabilities sum to %g, want 1", sum)
	}
	if d.Weighted {
		lo, hi := d.weightRange()
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo >= hi {
			return errors.New(errors.ErrCodeInvalidArgument, "weight range [%g, %g) is empty", lo, hi)
		}
	}
	return nil
}

// Args renders d in the syntax accepted by [ParseArgs]. The output is
// canonical and is used as a cache key.
func (d Descriptor) Args() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--rmat_scale=%d --rmat_edgefactor=%d", d.Scale, d.EdgeFactor)
	fmt.Fprintf(&b, " --rmat_a=%g --rmat_b=%g --rmat_c=%g --rmat_d=%g", d.A, d.B, d.C, d.D)
	fmt.Fprintf(&b, " --rmat_seed=%d --rmat_permute=%t", d.Seed, d.Permute)
	if d.Weighted {
		lo, hi := d.weightRange()
		fmt.Fprintf(&b, " --rmat_weighted --rmat_min_weight=%g --rmat_max_weight=%g", lo, hi)
	}
	return b.String()
}

// ParseArgs parses a descriptor from a flag string such as
// "--rmat_scale=10 --rmat_edgefactor=16 --rmat_a=0.45". Unset fields keep
// their [Default] values. When any of a, b or c is given without d, d is
// set to the remaining probability mass. The flags --device and --quiet
// are accepted and ignored.
func ParseArgs(args string) (Descriptor, error) {
	d := Default()
	fs := pflag.NewFlagSet("rmat", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&d.Scale, "rmat_scale", d.Scale, "log2 of the vertex count")
	fs.IntVar(&d.EdgeFactor, "rmat_edgefactor", d.EdgeFactor, "edges per vertex")
	fs.Float64Var(&d.A, "rmat_a", d.A, "top-left quadrant probability")
	fs.Float64Var(&d.B, "rmat_b", d.B, "top-right quadrant probability")
	fs.Float64Var(&d.C, "rmat_c", d.C, "bottom-left quadrant probability")
	fs.Float64Var(&d.D, "rmat_d", d.D, "bottom-right quadrant probability")
	fs.Uint64Var(&d.Seed, "rmat_seed", d.Seed, "random seed")
	fs.BoolVar(&d.Permute, "rmat_permute", d.Permute, "permute vertex labels")
	fs.BoolVar(&d.Weighted, "rmat_weighted", d.Weighted, "attach uniform edge weights")
	fs.Float64Var(&d.MinWeight, "rmat_min_weight", d.MinWeight, "lower weight bound")
	fs.Float64Var(&d.MaxWeight, "rmat_max_weight", d.MaxWeight, "upper weight bound")
	fs.Int("device", 0, "ignored")
	fs.Bool("quiet", false, "ignored")

	if err := fs.Parse(strings.Fields(args)); err != nil {
		return Descriptor{}, errors.Wrap(errors.ErrCodeInvalidArgument, err, "parse rmat arguments")
	}
	if fs.NArg() > 0 {
		return Descriptor{}, errors.New(errors.ErrCodeInvalidArgument, "unexpected argument %q", fs.Arg(0))
	}
	if !fs.Changed("rmat_d") && (fs.Changed("rmat_a") || fs.Changed("rmat_b") || fs.Changed("rmat_c")) {
		d.D = max(0, 1-d.A-d.B-d.C)
	}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}
