package bfs

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/parallax/pkg/errors"
)

// Direction selects which edges a search follows.
type Direction int

const (
	// Out follows edges from source to destination.
	Out Direction = iota
	// In follows edges backwards.
	In
	// Both ignores edge direction.
	Both
)

func (d Direction) String() string {
	switch d {
	case Out:
		return "out"
	case In:
		return "in"
	case Both:
		return "both"
	default:
		return "unknown"
	}
}

// ParseDirection parses "out", "in" or "both".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "out", "":
		return Out, nil
	case "in":
		return In, nil
	case "both", "undirected":
		return Both, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidArgument, "unknown direction %q", s)
}

// Option configures a search.
type Option func(*options)

type options struct {
	direction    Direction
	directionSet bool
	maxDepth     int
	logger       *log.Logger
	err          error
}

// WithDirection overrides the direction implied by the directed flag.
func WithDirection(d Direction) Option {
	return func(o *options) {
		if d < Out || d > Both {
			o.err = errors.New(errors.ErrCodeInvalidArgument, "unknown direction %d", d)
			return
		}
		o.direction = d
		o.directionSet = true
	}
}

// WithMaxDepth stops the search after d levels. Zero means no limit.
func WithMaxDepth(d int) Option {
	return func(o *options) {
		if d < 0 {
			o.err = errors.New(errors.ErrCodeInvalidArgument, "max depth cannot be negative (%d)", d)
			return
		}
		o.maxDepth = d
	}
}

// WithLogger sets the logger for per-level debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(directed bool, opts []Option) (options, error) {
	o := options{direction: Both, logger: log.Default()}
	if directed {
		o.direction = Out
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o, o.err
}
