// Package bitcodec converts between raw byte streams and their textual
// '0'/'1' representation. Conversion is streaming and chunked with
// bounded memory; the package has no protocol knowledge.
package bitcodec

import (
	"fmt"
	"io"
)

// TrailingPolicy decides what happens to a trailing bit group shorter
// than 8. The standalone converter and the in-protocol assembler
// intentionally differ here; do not unify them.
type TrailingPolicy int

const (
	// DropTrailing ignores leftover bits that do not make a full byte.
	DropTrailing TrailingPolicy = iota
	// PadTrailing appends zero bits up to a full byte.
	PadTrailing
)

// DefaultChunkSize is the streaming window, in input units per read.
const DefaultChunkSize = 1 << 20

// Codec carries the streaming parameters. The zero value is usable.
type Codec struct {
	ChunkSize int
	Meter     *Meter // optional throughput meter
}

var bitText = makeBitText()

func makeBitText() (t [256][8]byte) {
	for i := 0; i < 256; i++ {
		for b := 0; b < 8; b++ {
			t[i][b] = '0' + byte(i>>(7-b))&1
		}
	}
	return
}

func (c *Codec) chunk() int {
	if c.ChunkSize > 0 {
		return c.ChunkSize
	}
	return DefaultChunkSize
}

func (c *Codec) count(n int64) {
	if c.Meter != nil {
		c.Meter.count(n)
	}
}

// BytesToBits writes the bit text of everything read from r. Lossless:
// output length is exactly 8x the input byte count. Returns the number
// of bit characters written.
func (c *Codec) BytesToBits(w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, c.chunk())
	out := make([]byte, 0, 8*c.chunk())
	var written int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			out = out[:0]
			for _, b := range buf[:n] {
				out = append(out, bitText[b][:]...)
			}
			if _, werr := w.Write(out); werr != nil {
				return written, werr
			}
			written += int64(len(out))
			c.count(int64(n))
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

func packByte(bits []byte) byte {
	var v byte
	for _, b := range bits {
		v = v<<1 | b
	}
	return v
}

// BitsToBytes converts '0'/'1' text from r back into bytes. Groups are
// split only on byte boundaries regardless of chunking; the trailing
// group is handled per policy. Returns the number of bytes written.
func (c *Codec) BitsToBytes(w io.Writer, r io.Reader, policy TrailingPolicy) (int64, error) {
	buf := make([]byte, c.chunk())
	out := make([]byte, 0, c.chunk()/8+1)
	carry := make([]byte, 0, 8)
	var written int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			out = out[:0]
			for _, ch := range buf[:n] {
				if ch != '0' && ch != '1' {
					return written, fmt.Errorf("invalid bit character %q in input", ch)
				}
				carry = append(carry, ch-'0')
				if len(carry) == 8 {
					out = append(out, packByte(carry))
					carry = carry[:0]
				}
			}
			if len(out) > 0 {
				if _, werr := w.Write(out); werr != nil {
					return written, werr
				}
				written += int64(len(out))
				c.count(int64(len(out)))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, err
		}
	}

	if len(carry) > 0 && policy == PadTrailing {
		for len(carry) < 8 {
			carry = append(carry, 0)
		}
		if _, err := w.Write([]byte{packByte(carry)}); err != nil {
			return written, err
		}
		written++
		c.count(1)
	}
	return written, nil
}

// BytesToBits is the package-level form with default chunking.
func BytesToBits(w io.Writer, r io.Reader) (int64, error) {
	return (&Codec{}).BytesToBits(w, r)
}

// BitsToBytes is the package-level form with default chunking.
func BitsToBytes(w io.Writer, r io.Reader, policy TrailingPolicy) (int64, error) {
	return (&Codec{}).BitsToBytes(w, r, policy)
}

// Assemble is the terminal protocol step: it rejoins retrieved bit text
// into the output byte artifact, zero-padding a short trailing group.
func Assemble(w io.Writer, bitText io.Reader) (int64, error) {
	return (&Codec{}).BitsToBytes(w, bitText, PadTrailing)
}
