// This module keeps the named lists served by fll ports. A CursorList is not safe for concurrent use, so every list
// is only touched while holding the lock of the shard its name hashes to. Sharding spreads the locks: clients working
// on different lists rarely wait for each other.

package port

import (
	"errors"
	"flag"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/nobletooth/fll/pkg/list"
	"github.com/nobletooth/fll/pkg/utils"
)

var storeShards = flag.Int("store_shards", 16, "Number of lock shards the list keyspace is split into.")

var ErrKeyNotFound = errors.New("key was not found")

// listShard owns the lists whose names hash to it.
type listShard struct {
	mux   sync.Mutex
	lists map[ /*name*/ string]*list.CursorList[string]
}

// ListStore maps names to cursor lists and serializes access to each of them.
type ListStore struct {
	shards []*listShard
}

// NewListStore creates a store split into `shardCount` lock shards.
func NewListStore(shardCount int) *ListStore {
	// Ensure there is at least one shard.
	if shardCount <= 0 {
		utils.RaiseInvariant("store", "non_positive_shard_count",
			"Invalid shard count has been given to list store.", "shardCount", shardCount)
		shardCount = 1
	}
	store := &ListStore{shards: make([]*listShard, shardCount)}
	for i := range shardCount {
		store.shards[i] = &listShard{lists: make(map[string]*list.CursorList[string])}
	}
	return store
}

// NewListStoreFromFlags creates a store sized by the -store_shards flag.
func NewListStoreFromFlags() *ListStore {
	return NewListStore(*storeShards)
}

// getShard picks the shard of `key` by hashing it.
func (s *ListStore) getShard(key string) *listShard {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// Do runs `fn` on the list stored under `key` while holding its shard lock. A missing list is created empty when
// `create` is set; otherwise ErrKeyNotFound is returned. Lists left empty by `fn` are dropped.
// `fn` must not keep references to the list or call back into the store.
func (s *ListStore) Do(key string, create bool, fn func(l *list.CursorList[string]) error) error {
	shard := s.getShard(key)
	shard.mux.Lock()
	defer shard.mux.Unlock()

	l, exists := shard.lists[key]
	if !exists {
		if !create {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		l = list.New[string]()
	}
	err := fn(l)
	if l.Len() == 0 {
		delete(shard.lists, key)
	} else if !exists {
		shard.lists[key] = l
	}
	return err
}

// Delete removes the list stored under `key` and reports whether it existed.
func (s *ListStore) Delete(key string) bool {
	shard := s.getShard(key)
	shard.mux.Lock()
	defer shard.mux.Unlock()
	_, exists := shard.lists[key]
	delete(shard.lists, key)
	return exists
}

// Keys yields the names of all stored lists. Each shard is snapshotted under its lock, so names added or removed
// while iterating may or may not show up.
func (s *ListStore) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, shard := range s.shards {
			shard.mux.Lock()
			names := make([]string, 0, len(shard.lists))
			for name := range shard.lists {
				names = append(names, name)
			}
			shard.mux.Unlock()
			slices.Sort(names)
			for _, name := range names {
				if !yield(name) {
					return
				}
			}
		}
	}
}

// Len returns the number of stored lists.
func (s *ListStore) Len() int {
	total := 0
	for _, shard := range s.shards {
		shard.mux.Lock()
		total += len(shard.lists)
		shard.mux.Unlock()
	}
	return total
}

// Close drops every stored list.
func (s *ListStore) Close() error {
	for _, shard := range s.shards {
		shard.mux.Lock()
		clear(shard.lists)
		shard.mux.Unlock()
	}
	return nil
}
