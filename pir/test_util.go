package pir

import (
	"fmt"
	"math/rand"
	"sort"
)

// StaticShardStore is an in-memory ShardStore used by tests and
// benchmarks in this module.
type StaticShardStore struct {
	Shards [2]map[string]Bits
}

func NewStaticShardStore() *StaticShardStore {
	return &StaticShardStore{Shards: [2]map[string]Bits{{}, {}}}
}

func (s *StaticShardStore) Add(name string, shard0, shard1 Bits) {
	s.Shards[Left][name] = shard0
	s.Shards[Right][name] = shard1
}

func (s *StaticShardStore) Items() []string {
	names := make([]string, 0, len(s.Shards[Left]))
	for name := range s.Shards[Left] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *StaticShardStore) NumItems() int {
	return len(s.Shards[Left])
}

func (s *StaticShardStore) Shard(slot int, name string) (Bits, error) {
	b, ok := s.Shards[slot][name]
	if !ok {
		return nil, fmt.Errorf("no shard %d for item %q", slot, name)
	}
	out := make(Bits, len(b))
	copy(out, b)
	return out, nil
}

// MemMaskStore is an in-memory MaskStore. A nonzero Budget bounds the
// number of bits accepted per mask pair, returning ErrResourceExhausted
// beyond it; FailLoad makes Load report exhaustion instead.
type MemMaskStore struct {
	Budget   int
	FailLoad bool

	pairs map[string][2]Bits
}

func NewMemMaskStore() *MemMaskStore {
	return &MemMaskStore{pairs: make(map[string][2]Bits)}
}

func (m *MemMaskStore) Persist(run string, r1, r2 Bits) error {
	if m.Budget > 0 && len(r1)+len(r2) > m.Budget {
		return fmt.Errorf("persisting %d mask bits: %w", len(r1)+len(r2), ErrResourceExhausted)
	}
	m.pairs[run] = [2]Bits{r1, r2}
	return nil
}

func (m *MemMaskStore) Load(run string) (Bits, Bits, error) {
	pair, ok := m.pairs[run]
	if !ok {
		return nil, nil, fmt.Errorf("no masks for run %s", run)
	}
	if m.FailLoad {
		return nil, nil, fmt.Errorf("loading masks: %w", ErrResourceExhausted)
	}
	return pair[0], pair[1], nil
}

func (m *MemMaskStore) Exists(run string) bool {
	_, ok := m.pairs[run]
	return ok
}

// MakeShards builds nItems random same-length shard pairs named
// item00, item01, ...
func MakeShards(src *rand.Rand, nItems, nBits int) *StaticShardStore {
	store := NewStaticShardStore()
	for i := 0; i < nItems; i++ {
		store.Add(fmt.Sprintf("item%02d", i), RandBits(src, nBits), RandBits(src, nBits))
	}
	return store
}
