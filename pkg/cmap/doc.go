// Package cmap provides a concurrent string set for session membership.
//
// The set is sharded by murmur3 hash with the following features:
//
//   - Sharding: power-of-two shard count for parallelism
//   - Fine-grained Locking: per-shard RWMutex for minimal contention
//   - Atomic insert-if-absent for uniqueness checks
//
// Usage:
//
//	s := cmap.NewSet()
//	if s.Add("key") {
//		// key was not present before
//	}
//	ok := s.Has("key")
//
// Thread Safety:
//
// All operations are thread-safe. Has uses RLock, Add uses Lock.
package cmap
