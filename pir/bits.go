package pir

import (
	"fmt"
	"math/rand"

	"github.com/lukechampine/fastxor"
)

// Bits is a sequence of 0/1 values, one byte per bit, mirroring the
// textual '0'/'1' storage format of the shard files.
type Bits []byte

// ParseBits converts '0'/'1' text into bit values.
func ParseBits(text []byte) (Bits, error) {
	out := make(Bits, len(text))
	for i, c := range text {
		if c != '0' && c != '1' {
			return nil, fmt.Errorf("invalid bit character %q at offset %d", c, i)
		}
		out[i] = c - '0'
	}
	return out, nil
}

// Text renders the bits back as '0'/'1' characters.
func (b Bits) Text() []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = '0' + v
	}
	return out
}

func xorInto(a Bits, b Bits) {
	if len(a) != len(b) {
		panic("tried to XOR bit sequences of unequal length")
	}
	fastxor.Bytes(a, a, b)
}

func andInto(dst Bits, a, b Bits) {
	for i := range dst {
		dst[i] = a[i] & b[i]
	}
}

// RandBits draws n independent bits from src.
func RandBits(src *rand.Rand, n int) Bits {
	out := make(Bits, n)
	for i := range out {
		out[i] = byte(src.Uint64() & 1)
	}
	return out
}

// MaskedCombine computes out[j] = (s0[j]*r1[j] + s1[j]*r2[j]) mod 2,
// the server's masked linear combination. Since all operands are single
// bits this is (s0 AND r1) XOR (s1 AND r2).
func MaskedCombine(s0, s1, r1, r2 Bits) (Bits, error) {
	if len(s0) != len(s1) {
		return nil, fmt.Errorf("%w: shard0=%d shard1=%d", ErrShardLengthMismatch, len(s0), len(s1))
	}
	if len(r1) != len(s0) || len(r2) != len(s1) {
		return nil, fmt.Errorf("%w: masks r1=%d r2=%d for length %d", ErrShardLengthMismatch, len(r1), len(r2), len(s0))
	}
	tmp := make(Bits, len(s0))
	andInto(tmp, s0, r1)
	out := make(Bits, len(s1))
	andInto(out, s1, r2)
	xorInto(out, tmp)
	return out, nil
}
