// Package snapshot persists the last rendered tree of each session, so a
// restarted server can resume diffing where it left off instead of
// re-sending whole trees.
//
// Three stores are provided: MemoryStore, BoltStore (a single bolt file)
// and S3Store. Snapshots are encoded with the protocol codec.
package snapshot
