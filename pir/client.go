package pir

import (
	"errors"
	"fmt"
)

// Recombiner recovers the item bits from the server's answer and the
// persisted mask pair.
type Recombiner interface {
	Recombine(answer, r1, r2 Bits) (Bits, error)
}

// UnmaskRecombiner inverts the PadXOR mode: shard0 = answer XOR r1.
type UnmaskRecombiner struct{}

func (UnmaskRecombiner) Recombine(answer, r1, r2 Bits) (Bits, error) {
	if len(answer) != len(r1) {
		return nil, fmt.Errorf("%w: answer=%d r1=%d", ErrShardLengthMismatch, len(answer), len(r1))
	}
	out := make(Bits, len(answer))
	copy(out, answer)
	xorInto(out, r1)
	return out, nil
}

// reloadRecombiner reproduces the original scheme's decode step: it
// ignores the answer and the masks entirely and reloads the plaintext
// shard-0 bits of the target item. The MaskedAND combination is not
// invertible by the client, so this bypass is the only decode the
// original ever had.
type reloadRecombiner struct {
	store ShardStore
	item  string
}

func (r reloadRecombiner) Recombine(answer, r1, r2 Bits) (Bits, error) {
	return r.store.Shard(Left, r.item)
}

// Reconstructor is the client-side decode step.
type Reconstructor struct {
	store ShardStore
	masks MaskStore

	// Recombine overrides the per-mode default. Nil selects the reload
	// bypass for MaskedAND answers and UnmaskRecombiner for PadXOR.
	Recombine Recombiner
}

func NewReconstructor(store ShardStore, masks MaskStore) *Reconstructor {
	return &Reconstructor{store: store, masks: masks}
}

func (c *Reconstructor) recombiner(answer *Answer, item string) Recombiner {
	if c.Recombine != nil {
		return c.Recombine
	}
	if answer.Mode == PadXOR && !answer.Degraded {
		return UnmaskRecombiner{}
	}
	return reloadRecombiner{store: c.store, item: item}
}

// Reconstruct recovers the target item's bits from an answer. Three
// mutually exclusive paths, selected by mask-store state rather than by
// the answer contents: masks present, masks absent, and mask loading
// hitting the memory budget. The two fallback paths reload the
// plaintext item directly.
func (c *Reconstructor) Reconstruct(answer *Answer, targetIndex int) (Bits, error) {
	items := c.store.Items()
	if targetIndex < 0 || targetIndex >= len(items) {
		return nil, fmt.Errorf("%w: index %d, catalog size %d", ErrIndexOutOfRange, targetIndex, len(items))
	}
	name := items[targetIndex]

	if !c.masks.Exists(answer.Run) {
		return c.store.Shard(Left, name)
	}

	r1, r2, err := c.masks.Load(answer.Run)
	if err != nil {
		if errors.Is(err, ErrResourceExhausted) {
			return c.store.Shard(Left, name)
		}
		return nil, fmt.Errorf("loading masks for run %s: %w", answer.Run, err)
	}

	return c.recombiner(answer, name).Recombine(answer.Bits, r1, r2)
}
