package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateVertex checks that v is a vertex id of a graph with n vertices.
// The name identifies the argument in the error message (e.g. "start", "src[3]").
func ValidateVertex(name string, v, n int64) error {
	if v < 0 || v >= n {
		return New(ErrCodeInvalidArgument, "%s: vertex %d out of range [0, %d)", name, v, n)
	}
	return nil
}

// ValidateLength checks that a buffer has exactly want elements.
func ValidateLength(name string, got, want int) error {
	if got != want {
		return New(ErrCodeInvalidArgument, "%s: length %d, want %d", name, got, want)
	}
	return nil
}

// ValidateOpenUnit checks that x lies in the open interval (0, 1).
// NaN is rejected.
func ValidateOpenUnit(name string, x float64) error {
	if math.IsNaN(x) || x <= 0 || x >= 1 {
		return New(ErrCodeInvalidArgument, "%s must be in (0, 1), got %g", name, x)
	}
	return nil
}

// ValidateProbability checks that p is a finite value in [0, 1].
func ValidateProbability(name string, p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
		return New(ErrCodeInvalidArgument, "%s must be a probability in [0, 1], got %g", name, p)
	}
	return nil
}

// ValidateNonNegative checks that x is finite and not negative.
func ValidateNonNegative(name string, x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return New(ErrCodeInvalidArgument, "%s must be >= 0, got %g", name, x)
	}
	return nil
}

// ValidatePath validates a user-supplied file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
