package store

import (
	"fmt"
	"os"
	"path/filepath"

	"vidpir/pir"
)

// MaskStore persists per-query mask pairs as '0'/'1' text files in a
// work directory. Files are keyed by run token (<token>.r1.txt), so
// repeated or overlapping queries cannot clobber each other's masks.
type MaskStore struct {
	dir string

	// Budget bounds the bits held in memory for one mask pair, on both
	// the persist and load sides. Exceeding it reports
	// pir.ErrResourceExhausted, which callers turn into their degraded
	// plaintext paths. Zero means unbounded.
	Budget int
}

func NewMaskStore(dir string) *MaskStore {
	return &MaskStore{dir: dir}
}

func (m *MaskStore) path(run, mask string) string {
	return filepath.Join(m.dir, run+"."+mask+".txt")
}

// Persist writes both masks in bounded chunks. Nothing is written when
// the pair exceeds the budget.
func (m *MaskStore) Persist(run string, r1, r2 pir.Bits) error {
	if m.Budget > 0 && len(r1)+len(r2) > m.Budget {
		return fmt.Errorf("mask pair of %d bits over budget %d: %w",
			len(r1)+len(r2), m.Budget, pir.ErrResourceExhausted)
	}
	if err := WriteBitsFile(m.path(run, "r1"), r1); err != nil {
		return err
	}
	if err := WriteBitsFile(m.path(run, "r2"), r2); err != nil {
		os.Remove(m.path(run, "r1"))
		return err
	}
	return nil
}

func (m *MaskStore) Load(run string) (pir.Bits, pir.Bits, error) {
	r1, err := ReadBitsFile(m.path(run, "r1"), m.Budget)
	if err != nil {
		return nil, nil, err
	}
	r2, err := ReadBitsFile(m.path(run, "r2"), m.Budget)
	if err != nil {
		return nil, nil, err
	}
	return r1, r2, nil
}

// Exists reports whether both mask files of a run are present.
func (m *MaskStore) Exists(run string) bool {
	for _, mask := range []string{"r1", "r2"} {
		if _, err := os.Stat(m.path(run, mask)); err != nil {
			return false
		}
	}
	return true
}

// Remove deletes a consumed pair. Masks are single-use.
func (m *MaskStore) Remove(run string) error {
	err1 := os.Remove(m.path(run, "r1"))
	err2 := os.Remove(m.path(run, "r2"))
	if err1 != nil && !os.IsNotExist(err1) {
		return err1
	}
	if err2 != nil && !os.IsNotExist(err2) {
		return err2
	}
	return nil
}
