package pir

import (
	"errors"
	"testing"

	"gotest.tools/assert"
)

// The decode step never derives its output from the server's answer:
// corrupting the answer must not change the reconstructed bits. This is
// the documented flaw of the scheme, asserted on purpose.
func TestReconstructIgnoresAnswer(t *testing.T) {
	src := testSource()
	store := MakeShards(src, 3, 200)
	masks := NewMemMaskStore()
	proc := NewProcessor(store, masks, src)

	q, _ := GenQuery(2, 3)
	ans, err := proc.Process(q, MaskedAND)
	assert.NilError(t, err)

	original, _ := store.Shard(Left, store.Items()[2])

	for i := range ans.Bits {
		ans.Bits[i] ^= 1
	}

	got, err := NewReconstructor(store, masks).Reconstruct(ans, 2)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, original)
}

func TestReconstructMasksAbsent(t *testing.T) {
	src := testSource()
	store := MakeShards(src, 2, 100)
	masks := NewMemMaskStore()

	original, _ := store.Shard(Left, store.Items()[1])

	ans := &Answer{Run: "deadbeef00000000", Bits: RandBits(src, 100), Mode: MaskedAND}
	got, err := NewReconstructor(store, masks).Reconstruct(ans, 1)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, original)
}

func TestReconstructLoadExhausted(t *testing.T) {
	src := testSource()
	store := MakeShards(src, 2, 100)
	masks := NewMemMaskStore()
	proc := NewProcessor(store, masks, src)

	q, _ := GenQuery(0, 2)
	ans, err := proc.Process(q, MaskedAND)
	assert.NilError(t, err)

	masks.FailLoad = true

	original, _ := store.Shard(Left, store.Items()[0])
	got, err := NewReconstructor(store, masks).Reconstruct(ans, 0)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, original)
}

func TestReconstructOutOfRange(t *testing.T) {
	src := testSource()
	store := MakeShards(src, 2, 10)
	recon := NewReconstructor(store, NewMemMaskStore())

	_, err := recon.Reconstruct(&Answer{}, 2)
	assert.Check(t, errors.Is(err, ErrIndexOutOfRange))
}

// PadXOR answers round-trip through the mask algebra, demonstrating
// that a working recombination slots into the same pipeline.
func TestPadXORRoundTrip(t *testing.T) {
	src := testSource()
	store := MakeShards(src, 3, 300)
	masks := NewMemMaskStore()
	proc := NewProcessor(store, masks, src)

	q, _ := GenQuery(1, 3)
	ans, err := proc.Process(q, PadXOR)
	assert.NilError(t, err)

	original, _ := store.Shard(Left, store.Items()[1])

	got, err := NewReconstructor(store, masks).Reconstruct(ans, 1)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, original)

	// Unlike the reload bypass, this path really consumes the answer.
	ans.Bits[0] ^= 1
	got, err = NewReconstructor(store, masks).Reconstruct(ans, 1)
	assert.NilError(t, err)
	assert.Check(t, got[0] != original[0])
}
