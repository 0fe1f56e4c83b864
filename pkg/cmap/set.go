// Package cmap provides a concurrent string set for session membership.
package cmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the default number of shards.
const DefaultShardCount = 16

// Set is a concurrent-safe sharded set of strings.
// Members can be added but never removed.
type Set struct {
	shards    []*setShard
	shardMask uint32
}

type setShard struct {
	mu    sync.RWMutex
	items map[string]struct{}
}

// NewSet creates a new set with the default shard count.
func NewSet() *Set {
	return NewSetWithShards(DefaultShardCount)
}

// NewSetWithShards creates a new set with the specified shard count.
// shardCount must be a power of 2; other values fall back to DefaultShardCount.
func NewSetWithShards(shardCount int) *Set {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = DefaultShardCount
	}

	s := &Set{
		shards:    make([]*setShard, shardCount),
		shardMask: uint32(shardCount - 1),
	}
	for i := range s.shards {
		s.shards[i] = &setShard{items: make(map[string]struct{})}
	}
	return s
}

func (s *Set) shard(key string) *setShard {
	return s.shards[murmur3.Sum32([]byte(key))&s.shardMask]
}

// Add inserts key if it is not already present.
// Returns true if key was inserted, false if it already existed.
func (s *Set) Add(key string) bool {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.items[key]; ok {
		return false
	}
	sh.items[key] = struct{}{}
	return true
}

// Has reports whether key is a member.
func (s *Set) Has(key string) bool {
	sh := s.shard(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	_, ok := sh.items[key]
	return ok
}

// Len returns the total number of members.
func (s *Set) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.items)
		sh.mu.RUnlock()
	}
	return n
}

// ShardCount returns the number of shards.
func (s *Set) ShardCount() int {
	return len(s.shards)
}
