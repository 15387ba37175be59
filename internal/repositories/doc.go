// Package repositories implements persistence for playlist snapshots and run history.
//
// Snapshot files:
//   - [SnapshotStore] : slot-addressed storage the backup engine speaks to
//   - [FileSnapshotStore] : the on-disk layout, one "<name>-<suffix>" file per slot, resolved by [NewPaths]
//   - [CycleLock] : a lock directory held for the duration of one cycle per playlist
//
// Run history (SQLite):
//   - [RunRepository] : recorded cycles with soft deletes and status filters
//
// Sequence numbers provide stable, human-readable ordering (run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
