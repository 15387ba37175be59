// package models defines the data model for playlist snapshot backups
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// TitleSequence is the ordered list of item titles of a playlist, in the order the source returned them.
type TitleSequence []string

// Set returns the titles of s as a membership set.
func (s TitleSequence) Set() map[string]struct{} {
	set := make(map[string]struct{}, len(s))
	for _, t := range s {
		set[t] = struct{}{}
	}
	return set
}

// DiffRecord is a substitution at Position (1-based, in the new sequence's index space).
type DiffRecord struct {
	Position int    `json:"position"`
	Old      string `json:"old"`
	New      string `json:"new"`
}

// DiffReport lists the positions whose titles changed between two snapshots.
type DiffReport []DiffRecord

// MissingRecord is a title present in the old sequence at Position (1-based) and absent from the new one.
type MissingRecord struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
}

// MissingReport lists titles that disappeared from a playlist.
type MissingReport []MissingRecord

// Slot names a persisted file of a tracked playlist independently of where it lives.
type Slot string

const (
	SlotCurrent        Slot = "current"         // most recently fetched snapshot
	SlotBaseline       Slot = "baseline"        // snapshot of the previous successful cycle
	SlotBaselineBackup Slot = "baseline_backup" // previous generation of the baseline
	SlotDiff           Slot = "diff"            // diff report of the last cycle
	SlotDiffBackup     Slot = "diff_backup"     // previous generation of the diff report
	SlotMissing        Slot = "missing"         // missing-item report
)

// Slots lists every slot in display order.
var Slots = []Slot{SlotCurrent, SlotBaseline, SlotDiff, SlotMissing, SlotBaselineBackup, SlotDiffBackup}

// CycleStatus is the outcome of a backup cycle.
type CycleStatus string

const (
	StatusUpdated CycleStatus = "updated"
	StatusFatal   CycleStatus = "fatal"
)

// CycleResult describes what a backup cycle did.
type CycleResult struct {
	Status      CycleStatus
	NoBaseline  bool // no prior snapshot existed; everything fetched is growth
	Fetched     int
	Baseline    int
	LengthDelta int
	Diff        DiffReport
	Missing     MissingReport // only set when the playlist shrank
	Reason      string        // only set when Status is StatusFatal
}
