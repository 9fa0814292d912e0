package bitcodec

import (
	"bytes"
	"math/rand"
	"testing"

	"gotest.tools/assert"
)

func TestBytesToBitsLength(t *testing.T) {
	in := []byte{0x00, 0xff, 0xc3}
	var out bytes.Buffer
	n, err := BytesToBits(&out, bytes.NewReader(in))
	assert.NilError(t, err)
	assert.Equal(t, n, int64(24))
	assert.Equal(t, out.String(), "000000001111111111000011")
}

func TestRoundTripIdentity(t *testing.T) {
	src := rand.New(rand.NewSource(17))
	data := make([]byte, 4096)
	src.Read(data)

	var bits bytes.Buffer
	_, err := BytesToBits(&bits, bytes.NewReader(data))
	assert.NilError(t, err)

	for _, policy := range []TrailingPolicy{DropTrailing, PadTrailing} {
		var back bytes.Buffer
		_, err = BitsToBytes(&back, bytes.NewReader(bits.Bytes()), policy)
		assert.NilError(t, err)
		// Input is a whole number of bytes, so both policies agree.
		assert.DeepEqual(t, back.Bytes(), data)
	}
}

func TestTrailingPolicies(t *testing.T) {
	// 8 full bits then a 1-bit remainder.
	in := "110000111"

	var dropped bytes.Buffer
	n, err := BitsToBytes(&dropped, bytes.NewReader([]byte(in)), DropTrailing)
	assert.NilError(t, err)
	assert.Equal(t, n, int64(1))
	assert.DeepEqual(t, dropped.Bytes(), []byte{0xc3})

	var padded bytes.Buffer
	n, err = BitsToBytes(&padded, bytes.NewReader([]byte(in)), PadTrailing)
	assert.NilError(t, err)
	assert.Equal(t, n, int64(2))
	assert.DeepEqual(t, padded.Bytes(), []byte{0xc3, 0x80})
}

func TestChunkBoundaryCarry(t *testing.T) {
	src := rand.New(rand.NewSource(17))
	data := make([]byte, 100)
	src.Read(data)

	var bits bytes.Buffer
	_, err := BytesToBits(&bits, bytes.NewReader(data))
	assert.NilError(t, err)

	// A chunk size that is not a multiple of 8 forces carries across
	// read windows.
	c := Codec{ChunkSize: 13}
	var back bytes.Buffer
	_, err = c.BitsToBytes(&back, bytes.NewReader(bits.Bytes()), DropTrailing)
	assert.NilError(t, err)
	assert.DeepEqual(t, back.Bytes(), data)
}

func TestBitsToBytesRejectsJunk(t *testing.T) {
	var out bytes.Buffer
	_, err := BitsToBytes(&out, bytes.NewReader([]byte("0101x101")), DropTrailing)
	assert.ErrorContains(t, err, "invalid bit character")
}

func TestAssemblePads(t *testing.T) {
	var out bytes.Buffer
	n, err := Assemble(&out, bytes.NewReader([]byte("11111111000")))
	assert.NilError(t, err)
	assert.Equal(t, n, int64(2))
	assert.DeepEqual(t, out.Bytes(), []byte{0xff, 0x00})
}

func TestMeterCounts(t *testing.T) {
	m := NewMeter()
	c := Codec{Meter: m}

	var bits bytes.Buffer
	_, err := c.BytesToBits(&bits, bytes.NewReader(make([]byte, 1000)))
	assert.NilError(t, err)
	assert.Check(t, m.Rate() >= 1000)
}
