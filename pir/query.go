package pir

import "fmt"

// QueryVector is a one-hot selection over the catalog: exactly one entry
// is 1, at the target index. It is transmitted to the server as-is,
// without any encryption or sharing.
type QueryVector []byte

// QueryEncoder turns a target index into the query sent to the server.
// The one-hot encoder is the only implementation: catalog items have
// differing bit lengths, which rules out the cross-item linear
// combinations that a secret-shared or DPF encoding would need.
type QueryEncoder interface {
	Encode(targetIndex, catalogSize int) (QueryVector, error)
}

// OneHotEncoder is the plaintext encoding of the original scheme.
type OneHotEncoder struct{}

func (OneHotEncoder) Encode(targetIndex, catalogSize int) (QueryVector, error) {
	return GenQuery(targetIndex, catalogSize)
}

// GenQuery builds the one-hot selection vector. Deterministic, no side
// effects. A targetIndex outside [0, catalogSize) is a caller error.
func GenQuery(targetIndex, catalogSize int) (QueryVector, error) {
	if targetIndex < 0 || targetIndex >= catalogSize {
		return nil, fmt.Errorf("%w: index %d, catalog size %d", ErrIndexOutOfRange, targetIndex, catalogSize)
	}
	q := make(QueryVector, catalogSize)
	q[targetIndex] = 1
	return q, nil
}

// Target returns the index of the first 1 in the vector, or -1 if the
// vector is malformed (all zeros).
func (q QueryVector) Target() int {
	for i, v := range q {
		if v == 1 {
			return i
		}
	}
	return -1
}
