// Command vid2bits converts the video files in a directory into the
// textual bit representation the shard directories are built from.
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

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpg":  true,
	".mpeg": true,
}

func main() {
	dir := flag.String("dir", ".", "Directory to scan for video files")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Scanning %s: %s", *dir, err)
	}

	converted := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), store.ShardSuffix) {
			continue
		}
		if !videoExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}

		inPath := filepath.Join(*dir, e.Name())
		outPath := inPath + store.ShardSuffix
		n, err := convert(inPath, outPath)
		if err != nil {
			log.Fatalf("Converting %s: %s", e.Name(), err)
		}
		fmt.Printf("Converted %s -> %s (%s of bit text)\n",
			e.Name(), filepath.Base(outPath), datasize.ByteSize(n).HumanReadable())
		converted++
	}

	if converted == 0 {
		fmt.Println("No video files found to convert.")
	}
}

func convert(inPath, outPath string) (int64, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}

	n, err := bitcodec.BytesToBits(out, in)
	if err != nil {
		out.Close()
		return n, err
	}
	return n, out.Close()
}
