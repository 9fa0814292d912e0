package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/assert"

	"vidpir/bitcodec"
	"vidpir/pir"
	"vidpir/store"
)

// Builds a shard catalog on disk from raw item contents: shard 0 holds
// the item's bit text, shard 1 a random sequence of the same length.
func makeCatalog(t *testing.T, items map[string][]byte) (string, string) {
	t.Helper()
	dir0 := t.TempDir()
	dir1 := t.TempDir()
	src := pir.RandSource()
	for name, content := range items {
		var bits bytes.Buffer
		_, err := bitcodec.BytesToBits(&bits, bytes.NewReader(content))
		assert.NilError(t, err)
		assert.NilError(t, os.WriteFile(filepath.Join(dir0, name+store.ShardSuffix), bits.Bytes(), 0644))

		other := pir.RandBits(src, bits.Len())
		assert.NilError(t, os.WriteFile(filepath.Join(dir1, name+store.ShardSuffix), other.Text(), 0644))
	}
	return dir0, dir1
}

func TestEndToEndRetrieval(t *testing.T) {
	video := []byte("not quite an mp4, but bytes all the same")
	dir0, dir1 := makeCatalog(t, map[string][]byte{
		"clip_a": []byte("aaaa"),
		"clip_b": video,
	})

	shards, err := store.Open(dir0, dir1)
	assert.NilError(t, err)
	defer shards.Close()
	masks := store.NewMaskStore(t.TempDir())

	drv, err := NewServerDriver(shards, masks, true)
	assert.NilError(t, err)

	var n int
	assert.NilError(t, drv.NumItems(0, &n))
	assert.Equal(t, n, 2)

	idx, ok := shards.Index("clip_b")
	assert.Check(t, ok)

	query, err := pir.GenQuery(idx, n)
	assert.NilError(t, err)

	var answer pir.Answer
	assert.NilError(t, drv.Answer(pir.QueryReq{Query: query, Mode: pir.MaskedAND}, &answer))
	assert.Check(t, !answer.Degraded)

	recon := pir.NewReconstructor(shards, masks)
	bits, err := recon.Reconstruct(&answer, idx)
	assert.NilError(t, err)

	var out bytes.Buffer
	_, err = bitcodec.Assemble(&out, bytes.NewReader(bits.Text()))
	assert.NilError(t, err)
	assert.DeepEqual(t, out.Bytes(), video)
}

func TestDriverMetrics(t *testing.T) {
	dir0, dir1 := makeCatalog(t, map[string][]byte{"clip": []byte("xyz")})

	shards, err := store.Open(dir0, dir1)
	assert.NilError(t, err)
	defer shards.Close()

	drv, err := NewServerDriver(shards, store.NewMaskStore(t.TempDir()), true)
	assert.NilError(t, err)

	query, _ := pir.GenQuery(0, 1)
	var answer pir.Answer
	assert.NilError(t, drv.Answer(pir.QueryReq{Query: query, Mode: pir.MaskedAND}, &answer))

	var answerBytes int
	assert.NilError(t, drv.GetAnswerBytes(0, &answerBytes))
	assert.Check(t, answerBytes > 0)

	var none int
	assert.NilError(t, drv.ResetMetrics(0, &none))
	assert.NilError(t, drv.GetAnswerBytes(0, &answerBytes))
	assert.Equal(t, answerBytes, 0)
}

func TestDriverDegradedPath(t *testing.T) {
	dir0, dir1 := makeCatalog(t, map[string][]byte{"clip": []byte("some longer payload here")})

	shards, err := store.Open(dir0, dir1)
	assert.NilError(t, err)
	defer shards.Close()

	masks := store.NewMaskStore(t.TempDir())
	masks.Budget = 8

	drv, err := NewServerDriver(shards, masks, false)
	assert.NilError(t, err)

	query, _ := pir.GenQuery(0, 1)
	var answer pir.Answer
	assert.NilError(t, drv.Answer(pir.QueryReq{Query: query, Mode: pir.MaskedAND}, &answer))
	assert.Check(t, answer.Degraded)

	// The degraded answer is already the plaintext shard-0 bits.
	s0, err := shards.Shard(pir.Left, "clip")
	assert.NilError(t, err)
	assert.DeepEqual(t, answer.Bits, s0)

	// Reconstruction still converges on the same plaintext.
	recon := pir.NewReconstructor(shards, masks)
	bits, err := recon.Reconstruct(&answer, 0)
	assert.NilError(t, err)
	assert.DeepEqual(t, bits, s0)
}

func TestSerializedSizeOf(t *testing.T) {
	small, err := SerializedSizeOf(pir.QueryReq{Query: pir.QueryVector{1}})
	assert.NilError(t, err)
	large, err := SerializedSizeOf(pir.QueryReq{Query: make(pir.QueryVector, 1000)})
	assert.NilError(t, err)
	assert.Check(t, large > small)
}
