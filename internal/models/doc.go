// Package models defines domain types and persistence interfaces for playlist snapshot backups.
//
// The package contains two categories of types:
//
// 1. Value types passed between the title source, the engine and the stores
//   - [TitleSequence] : ordered playlist item titles as fetched
//   - [DiffReport] : positioned substitutions between a baseline and a fresh snapshot
//   - [MissingReport] : baseline titles absent from a fresh snapshot
//   - [Slot] : logical name of a persisted file (current snapshot, baseline, backups, reports)
//   - [CycleResult] : outcome of one snapshot-and-compare cycle
//
// 2. Persistent entities
//   - [CycleRun] : one recorded backup cycle in the run history database
//
// Persistent entities implement the Model interface; the Repository[T] interface defines standard CRUD operations.
package models
