package csr

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"strings"
)

// HashBuffer returns the SHA-256 digest of a single byte buffer.
func HashBuffer(buf []byte) [32]byte {
	return sha256.Sum256(buf)
}

// HashBuffers returns a single SHA-256 digest over the concatenation of
// three byte buffers, computed via one streaming hash rather than a
// concatenated copy.
func HashBuffers(a, b, c []byte) [32]byte {
	h := sha256.New()
	h.Write(a)
	h.Write(b)
	h.Write(c)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HexDigest renders a digest as an uppercase hex string.
func HexDigest(digest [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(digest[:]))
}

func int32SliceBytes(xs []int32) []byte {
	buf := make([]byte, 4*len(xs))
	for i, x := range xs {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(x))
	}
	return buf
}

func float32SliceBytes(xs []float32) []byte {
	buf := make([]byte, 4*len(xs))
	for i, x := range xs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

// TopologyHash computes the structural fingerprint of the snapshot: a
// SHA-256 digest over the raw little-endian bytes of RowPtr, ColIdx and
// Weights, in that order. Two structurally identical graphs produce
// byte-identical digests; any weight change, however small, diverges via
// SHA-256's avalanche property.
func (s *Snapshot) TopologyHash() [32]byte {
	return HashBuffers(int32SliceBytes(s.RowPtr), int32SliceBytes(s.ColIdx), float32SliceBytes(s.Weights))
}
