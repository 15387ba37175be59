// Package tasks runs playlist backup cycles with real-time progress reporting.
//
// # Diff Engine
//
// [ComputeDiff] compares a freshly fetched [models.TitleSequence] against the stored one. The playlist is assumed to
// only grow, at one end:
//
//   - new items last: old[i] is compared with new[i], ascending
//   - new items first: old[i] is compared with new[i+delta], descending
//
// Items beyond the aligned window are growth and are never reported. A shorter sequence is an upstream anomaly
// reported as [*ShrinkageError].
//
// Reordering or inserting in the middle of a playlist shifts the alignment and every shifted position is reported
// as a change. Such diffs are noisy but never lose information, because both snapshots are kept.
//
// # Missing-Item Reporter
//
// [FindMissing] lists stored titles that occur nowhere in the fetched sequence, by set membership.
//
// # Rotation
//
// [BackupEngine.RunCycle] runs fetch, load, compare, then rotates the stored files:
//
//  1. baseline → baseline backup, diff → diff backup (skipped when absent)
//  2. current → baseline
//  3. write the new current snapshot
//  4. write the diff report
//
// An interrupted cycle leaves either the previous generation, updated backups next to a stale snapshot, or a fully
// updated set, and the next cycle recovers from any of them.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [RunRecorder] interface persists every cycle outcome (repositories.RunRepository). Recording errors are
// logged and never change the cycle result.
package tasks
