package store

import (
	"fmt"
	"io"
	"os"

	"vidpir/pir"
)

// ChunkSize is the I/O window for reading and writing bit-text files.
// Large sequences are always streamed through windows of this size.
const ChunkSize = 1 << 20

// ReadBitsFile loads a '0'/'1' text file in bounded chunks. A nonzero
// budget caps the bits buffered in memory; files beyond it fail with
// pir.ErrResourceExhausted before any allocation.
func ReadBitsFile(path string, budget int) (pir.Bits, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if budget > 0 && info.Size() > int64(budget) {
		return nil, fmt.Errorf("%s holds %d bits, budget is %d: %w",
			path, info.Size(), budget, pir.ErrResourceExhausted)
	}

	bits := make(pir.Bits, 0, info.Size())
	buf := make([]byte, ChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			chunk, perr := pir.ParseBits(buf[:n])
			if perr != nil {
				return nil, fmt.Errorf("%s: %v", path, perr)
			}
			bits = append(bits, chunk...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return bits, nil
}

// WriteBitsFile writes bits as '0'/'1' text, one chunk at a time.
func WriteBitsFile(path string, bits pir.Bits) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	for off := 0; off < len(bits); off += ChunkSize {
		end := off + ChunkSize
		if end > len(bits) {
			end = len(bits)
		}
		if _, err := f.Write(bits[off:end].Text()); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
