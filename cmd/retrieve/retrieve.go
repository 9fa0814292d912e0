// Command retrieve runs one full protocol round: it prompts for a
// catalog index, sends the one-hot query to the server role, and
// reconstructs and assembles the retrieved video.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/fatih/color"

	"vidpir/bitcodec"
	"vidpir/driver"
	"vidpir/pir"
	"vidpir/store"
)

const (
	bitsArtifact  = "retrieved_video.bits"
	videoArtifact = "reconstructed_video.mp4"
)

func main() {
	config := new(driver.Config).AddPirFlags().AddClientFlags().Parse()

	prof := driver.NewProfiler(config.CpuProfile)
	defer prof.Close()

	shards, masks, err := config.Stores()
	if err != nil {
		log.Fatalf("Setup failed: %s", err)
	}
	defer shards.Close()

	items := shards.Items()
	color.Green("Catalog has %d videos:", len(items))
	for i, name := range items {
		fmt.Printf("  %d: %s\n", i, name)
	}

	target := promptIndex(len(items))
	color.Green("Retrieving video %d...", target)

	query, err := pir.GenQuery(target, len(items))
	if err != nil {
		log.Fatalf("Query generation failed: %s", err)
	}

	drv, err := config.ServerDriver()
	if err != nil {
		log.Fatalf("Failed to create server driver: %s", err)
	}

	start := time.Now()
	var answer pir.Answer
	if err := drv.Answer(pir.QueryReq{Query: query, Mode: config.Mode}, &answer); err != nil {
		log.Fatalf("Server failed to answer: %s", err)
	}
	if answer.Degraded {
		color.Yellow("Mask persistence fell back; answer holds unmasked plaintext")
	}

	bits, err := pir.NewReconstructor(shards, masks).Reconstruct(&answer, target)
	if err != nil {
		log.Fatalf("Reconstruction failed: %s", err)
	}

	bitsPath := filepath.Join(config.WorkDir, bitsArtifact)
	if err := store.WriteBitsFile(bitsPath, bits); err != nil {
		log.Fatalf("Saving retrieved bits: %s", err)
	}

	videoPath := filepath.Join(config.WorkDir, videoArtifact)
	n, err := assemble(bitsPath, videoPath)
	if err != nil {
		log.Fatalf("Assembling video: %s", err)
	}

	color.Green("Video reconstructed: %s (%s, %s)",
		videoPath, datasize.ByteSize(n).HumanReadable(), time.Since(start).Round(time.Millisecond))

	if err := launchViewer(videoPath); err != nil {
		color.Yellow("Could not auto-play video: %s", err)
		fmt.Printf("Video saved at: %s\n", videoPath)
	}
}

// promptIndex reads the target index. Non-numeric input substitutes
// index 0 with a warning; an out-of-range index aborts the run.
func promptIndex(catalogSize int) int {
	fmt.Printf("Enter video index to retrieve (0-%d): ", catalogSize-1)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		log.Fatalf("Reading input: %s", err)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		color.Yellow("Invalid input, using video 0 by default")
		return 0
	}
	if idx < 0 || idx >= catalogSize {
		log.Fatalf("%s: index %d, catalog size %d", pir.ErrIndexOutOfRange, idx, catalogSize)
	}
	return idx
}

func assemble(bitsPath, videoPath string) (int64, error) {
	in, err := os.Open(bitsPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(videoPath)
	if err != nil {
		return 0, err
	}

	n, err := bitcodec.Assemble(out, in)
	if err != nil {
		out.Close()
		return n, err
	}
	return n, out.Close()
}

func launchViewer(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return exec.Command("xdg-open", abs).Start()
}
