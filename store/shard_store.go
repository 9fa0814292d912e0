// Package store gives the protocol its durable state: two parallel
// directories of per-item shard files, and run-scoped mask files shared
// between the server and the reconstructor.
package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/elliotchance/orderedmap"
	"github.com/fsnotify/fsnotify"

	"vidpir/pir"
)

// ShardSuffix is the filename suffix of shard files, shared with the
// standalone converters.
const ShardSuffix = ".binary.txt"

// ShardStore reads the two bit-shards of every catalog item from a pair
// of directories. The catalog is the lexical order of shard-0 filenames;
// index is the addressing scheme used throughout the protocol.
type ShardStore struct {
	dirs [2]string

	mu      sync.RWMutex
	index   *orderedmap.OrderedMap // item name -> catalog position
	watcher *fsnotify.Watcher
}

// Open scans the two shard directories. Both directories must exist and
// every shard-0 file must have a shard-1 counterpart; a violation is a
// configuration error and aborts the run.
func Open(dir0, dir1 string) (*ShardStore, error) {
	s := &ShardStore{dirs: [2]string{dir0, dir1}}
	for _, dir := range s.dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("shard directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("shard path %s is not a directory", dir)
		}
	}
	if err := s.scan(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ShardStore) scan() error {
	entries, err := os.ReadDir(s.dirs[pir.Left])
	if err != nil {
		return fmt.Errorf("scanning shard directory: %w", err)
	}

	index := orderedmap.NewOrderedMap()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ShardSuffix) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ShardSuffix)
		if _, err := os.Stat(filepath.Join(s.dirs[pir.Right], e.Name())); err != nil {
			return fmt.Errorf("item %q has no shard-1 file: %w", name, err)
		}
		index.Set(name, index.Len())
	}
	if index.Len() == 0 {
		return fmt.Errorf("no %s items found in %s", ShardSuffix, s.dirs[pir.Left])
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()
	return nil
}

// Items returns the catalog in index order.
func (s *ShardStore) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, s.index.Len())
	for el := s.index.Front(); el != nil; el = el.Next() {
		names = append(names, el.Key.(string))
	}
	return names
}

func (s *ShardStore) NumItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Len()
}

// Index looks up an item's catalog position by name.
func (s *ShardStore) Index(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.index.Get(name)
	if !ok {
		return -1, false
	}
	return v.(int), true
}

// Shard loads one shard of one item, chunked.
func (s *ShardStore) Shard(slot int, name string) (pir.Bits, error) {
	if _, ok := s.Index(name); !ok {
		return nil, fmt.Errorf("unknown item %q", name)
	}
	return ReadBitsFile(filepath.Join(s.dirs[slot], name+ShardSuffix), 0)
}

// Watch refreshes the catalog whenever shard-0 files are added, removed
// or rewritten.
func (s *ShardStore) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	if err := watcher.Add(s.dirs[pir.Left]); err != nil {
		watcher.Close()
		return fmt.Errorf("cannot watch shard directory: %w", err)
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					if err := s.scan(); err != nil {
						// May happen mid-conversion; keep the old catalog.
						log.Printf("catalog rescan failed: %v", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("shard watcher error: %v", err)
			}
		}
	}()
	return nil
}

func (s *ShardStore) Close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
}
