package tensor

import "errors"

// Sentinel error kinds, matched via errors.Is, so callers can branch on
// the kind of failure rather than pattern-matching an error string.
var (
	// ErrShapeMismatch is returned by MatMul when the inner dimensions of
	// the two operands do not conform (A.Cols != B.Rows).
	ErrShapeMismatch = errors.New("tensor: shape mismatch")

	// ErrBroadcastIncompatible is returned by Add when an operand's
	// dimension is neither 1 nor the broadcast output's dimension.
	ErrBroadcastIncompatible = errors.New("tensor: broadcast incompatible")

	// ErrDimensionMismatch is returned by the vector helpers (Dot, L2Norm,
	// Cosine) when operand lengths differ.
	ErrDimensionMismatch = errors.New("tensor: dimension mismatch")
)
