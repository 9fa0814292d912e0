package pir

import (
	"errors"
	"fmt"
	"math/rand"
)

// Processor is the server role: it scans the query for the requested
// item, loads both shards, draws a fresh mask pair, persists the masks
// under a run token, and returns the masked combination.
type Processor struct {
	store      ShardStore
	masks      MaskStore
	randSource *rand.Rand
}

func NewProcessor(store ShardStore, masks MaskStore, randSource *rand.Rand) *Processor {
	return &Processor{store: store, masks: masks, randSource: randSource}
}

// Answer implements Server.
func (p *Processor) Answer(req QueryReq, resp *Answer) error {
	out, err := p.Process(req.Query, req.Mode)
	if err != nil {
		return err
	}
	*resp = *out
	return nil
}

// Process runs one query. A malformed (all-zero) query yields an empty
// answer and no error. Mask persistence must complete, or explicitly
// fall back, before the answer is returned: when persisting fails with
// ErrResourceExhausted the answer degrades to the unmasked shard-0 bits.
func (p *Processor) Process(query QueryVector, mode Mode) (*Answer, error) {
	target := query.Target()
	if target == -1 {
		return &Answer{Mode: mode}, nil
	}
	items := p.store.Items()
	if target >= len(items) {
		return nil, fmt.Errorf("%w: query index %d, catalog size %d", ErrIndexOutOfRange, target, len(items))
	}
	name := items[target]

	s0, err := p.store.Shard(Left, name)
	if err != nil {
		return nil, fmt.Errorf("loading shard 0 of %q: %w", name, err)
	}
	s1, err := p.store.Shard(Right, name)
	if err != nil {
		return nil, fmt.Errorf("loading shard 1 of %q: %w", name, err)
	}
	if len(s0) != len(s1) {
		return nil, fmt.Errorf("%w: item %q, shard0=%d shard1=%d", ErrShardLengthMismatch, name, len(s0), len(s1))
	}

	r1 := RandBits(p.randSource, len(s0))
	r2 := RandBits(p.randSource, len(s0))

	var bits Bits
	switch mode {
	case PadXOR:
		bits = make(Bits, len(s0))
		copy(bits, s0)
		xorInto(bits, r1)
	default:
		bits, err = MaskedCombine(s0, s1, r1, r2)
		if err != nil {
			return nil, err
		}
	}

	run := NewRunToken(p.randSource)
	if err := p.masks.Persist(run, r1, r2); err != nil {
		if errors.Is(err, ErrResourceExhausted) {
			// Degrade to plaintext rather than fail the query.
			return &Answer{Run: run, Bits: s0, Mode: mode, Degraded: true}, nil
		}
		return nil, fmt.Errorf("persisting masks for run %s: %w", run, err)
	}

	return &Answer{Run: run, Bits: bits, Mode: mode}, nil
}
