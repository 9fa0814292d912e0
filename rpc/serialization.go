package rpc

import "github.com/ugorji/go/codec"

// CodecHandle is the wire serialization shared by client and server:
// Binc with compact struct-as-array encoding. All protocol payloads are
// concrete types, so no interface registration is needed.
func CodecHandle() codec.Handle {
	h := codec.BincHandle{}
	h.StructToArray = true
	h.OptimumSize = true
	return &h
}
