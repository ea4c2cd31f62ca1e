package tensor

import "math"

// tanhE computes tanh for any Scalar element type by round-tripping
// through float64, the same precision math.Tanh itself offers.
func tanhE[E Scalar](x E) E {
	return E(math.Tanh(float64(x)))
}
