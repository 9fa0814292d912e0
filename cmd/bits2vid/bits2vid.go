// Command bits2vid is the standalone inverse of vid2bits: it rejoins
// bit-text files into byte files. Unlike the in-protocol assembler it
// drops a trailing bit group shorter than a byte.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/c2h5oh/datasize"

	"vidpir/bitcodec"
	"vidpir/store"
)

func main() {
	dir := flag.String("dir", ".", "Directory to scan for bit-text files")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Scanning %s: %s", *dir, err)
	}

	converted := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), store.ShardSuffix) {
			continue
		}

		base := strings.TrimSuffix(e.Name(), store.ShardSuffix)
		inPath := filepath.Join(*dir, e.Name())
		outPath := filepath.Join(*dir, "reconstructed_"+base)
		n, err := reconstruct(inPath, outPath)
		if err != nil {
			log.Fatalf("Reconstructing %s: %s", e.Name(), err)
		}
		fmt.Printf("Reconstructed %s -> %s (%s)\n",
			e.Name(), filepath.Base(outPath), datasize.ByteSize(n).HumanReadable())
		converted++
	}

	if converted == 0 {
		fmt.Printf("No %s files found to reconstruct.\n", store.ShardSuffix)
	}
}

func reconstruct(inPath, outPath string) (int64, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}

	n, err := bitcodec.BitsToBytes(out, in, bitcodec.DropTrailing)
	if err != nil {
		out.Close()
		return n, err
	}
	return n, out.Close()
}
