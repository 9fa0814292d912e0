// Package pir implements a two-database private-retrieval demo: a client
// builds a selection vector over a catalog of items, a server holding two
// bit-shards per item answers with a masked linear combination, and the
// client reconstructs the item's bit sequence.
//
// The scheme is a demonstration, not a privacy-preserving protocol: the
// selection vector is sent in the clear, and the default reconstruction
// path reloads the plaintext item instead of inverting the server's
// algebra. Both properties are deliberate and covered by tests.
package pir

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const Left int = 0
const Right int = 1

// Mode selects how the server combines shards and masks into an answer.
type Mode int

const (
	// MaskedAND answers with (shard0 AND r1) XOR (shard1 AND r2), the
	// mod-2 linear combination of the original scheme. Not invertible
	// by the client; reconstruction falls back to a plaintext reload.
	MaskedAND Mode = iota
	// PadXOR answers with shard0 XOR r1, a one-time pad over the
	// persisted mask. Invertible via UnmaskRecombiner.
	PadXOR
)

func (m Mode) String() string {
	switch m {
	case MaskedAND:
		return "maskedand"
	case PadXOR:
		return "padxor"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ModeString parses the string form used on the command line.
func ModeString(s string) (Mode, error) {
	switch s {
	case "maskedand":
		return MaskedAND, nil
	case "padxor":
		return PadXOR, nil
	}
	return 0, fmt.Errorf("unknown answer mode: %q", s)
}

func ModeStrings() []string {
	return []string{MaskedAND.String(), PadXOR.String()}
}

var (
	// ErrIndexOutOfRange is returned when a requested catalog index is
	// outside [0, catalogSize).
	ErrIndexOutOfRange = errors.New("item index out of catalog range")

	// ErrResourceExhausted reports that a bit sequence exceeded the
	// configured in-memory budget. Callers recover by switching to the
	// degraded plaintext paths.
	ErrResourceExhausted = errors.New("bit buffer budget exhausted")

	// ErrShardLengthMismatch reports a data-integrity failure: the two
	// shards of one item have different lengths.
	ErrShardLengthMismatch = errors.New("shard lengths differ")
)

// ShardStore is read access to the two parallel per-item bit sequences.
// Slot is Left (shard 0) or Right (shard 1).
type ShardStore interface {
	Items() []string
	NumItems() int
	Shard(slot int, name string) (Bits, error)
}

// MaskStore persists the per-query mask pair under a run token so that
// overlapping queries cannot clobber each other's masks.
type MaskStore interface {
	Persist(run string, r1, r2 Bits) error
	Load(run string) (r1, r2 Bits, err error)
	Exists(run string) bool
}

// QueryReq is the request a client sends to the server role.
type QueryReq struct {
	Query QueryVector
	Mode  Mode
}

// Answer is the server's response. Bits is empty for a malformed query.
// Degraded marks the fallback where mask persistence failed and the
// unmasked shard-0 bits were returned instead.
type Answer struct {
	Run      string
	Bits     Bits
	Mode     Mode
	Degraded bool
}

// Server is the server role as seen by the client: either an in-process
// Processor or an RPC proxy to a remote one.
type Server interface {
	Answer(req QueryReq, resp *Answer) error
}

// RandSource returns a non-cryptographic source for mask generation.
// Mask quality is irrelevant to the demo's (absent) privacy.
func RandSource() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewRunToken draws a fresh token to scope one query's mask files.
func NewRunToken(src *rand.Rand) string {
	return fmt.Sprintf("%08x%08x", src.Uint32(), src.Uint32())
}
