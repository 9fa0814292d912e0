package pir

import (
	"testing"

	"gotest.tools/assert"
)

func TestProcessLengthInvariant(t *testing.T) {
	src := testSource()
	store := MakeShards(src, 4, 256)
	masks := NewMemMaskStore()
	proc := NewProcessor(store, masks, src)

	q, err := GenQuery(2, store.NumItems())
	assert.NilError(t, err)

	ans, err := proc.Process(q, MaskedAND)
	assert.NilError(t, err)
	assert.Equal(t, len(ans.Bits), 256)
	assert.Check(t, !ans.Degraded)

	r1, r2, err := masks.Load(ans.Run)
	assert.NilError(t, err)
	assert.Equal(t, len(r1), 256)
	assert.Equal(t, len(r2), 256)
}

func TestProcessMatchesCombine(t *testing.T) {
	src := testSource()
	store := MakeShards(src, 3, 128)
	masks := NewMemMaskStore()
	proc := NewProcessor(store, masks, src)

	q, _ := GenQuery(1, 3)
	ans, err := proc.Process(q, MaskedAND)
	assert.NilError(t, err)

	name := store.Items()[1]
	s0, _ := store.Shard(Left, name)
	s1, _ := store.Shard(Right, name)
	r1, r2, err := masks.Load(ans.Run)
	assert.NilError(t, err)

	want, err := MaskedCombine(s0, s1, r1, r2)
	assert.NilError(t, err)
	assert.DeepEqual(t, ans.Bits, want)
}

func TestProcessMalformedQuery(t *testing.T) {
	src := testSource()
	proc := NewProcessor(MakeShards(src, 2, 64), NewMemMaskStore(), src)

	ans, err := proc.Process(QueryVector{0, 0}, MaskedAND)
	assert.NilError(t, err)
	assert.Equal(t, len(ans.Bits), 0)
}

func TestProcessShardLengthMismatch(t *testing.T) {
	src := testSource()
	store := NewStaticShardStore()
	store.Add("broken", RandBits(src, 64), RandBits(src, 63))
	proc := NewProcessor(store, NewMemMaskStore(), src)

	q, _ := GenQuery(0, 1)
	_, err := proc.Process(q, MaskedAND)
	assert.ErrorContains(t, err, "shard lengths differ")
}

func TestProcessDegradedPersist(t *testing.T) {
	src := testSource()
	store := MakeShards(src, 2, 512)
	masks := NewMemMaskStore()
	masks.Budget = 16 // far below the 1024 bits a mask pair needs
	proc := NewProcessor(store, masks, src)

	q, _ := GenQuery(0, 2)
	ans, err := proc.Process(q, MaskedAND)
	assert.NilError(t, err)
	assert.Check(t, ans.Degraded)
	assert.Check(t, !masks.Exists(ans.Run))

	s0, _ := store.Shard(Left, store.Items()[0])
	assert.DeepEqual(t, ans.Bits, s0)
}

func TestProcessFreshMasksPerQuery(t *testing.T) {
	src := testSource()
	store := MakeShards(src, 2, 64)
	masks := NewMemMaskStore()
	proc := NewProcessor(store, masks, src)

	q, _ := GenQuery(0, 2)
	a1, err := proc.Process(q, MaskedAND)
	assert.NilError(t, err)
	a2, err := proc.Process(q, MaskedAND)
	assert.NilError(t, err)

	assert.Check(t, a1.Run != a2.Run)
	assert.Check(t, masks.Exists(a1.Run))
	assert.Check(t, masks.Exists(a2.Run))
}
