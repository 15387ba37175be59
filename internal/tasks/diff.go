package tasks

import (
	"fmt"

	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/shared"
)

// ShrinkageError reports that a fetched sequence is shorter than its baseline.
//
// It matches both [shared.ErrShrinkage] and [shared.ErrUpstreamAnomaly] under [errors.Is].
type ShrinkageError struct {
	Removed   int // number of titles that went away
	NewLength int
	OldLength int
}

func (e *ShrinkageError) Error() string {
	return fmt.Sprintf("%v: new length (%d) is smaller than old length (%d), %d item(s) removed",
		shared.ErrShrinkage, e.NewLength, e.OldLength, e.Removed)
}

func (e *ShrinkageError) Is(target error) bool {
	return target == shared.ErrShrinkage || target == shared.ErrUpstreamAnomaly
}

// Alignment maps an index of the old sequence onto the new one: old[i] lines up with new[i+Offset].
//
// Descending only changes the order records are produced in.
type Alignment struct {
	Offset     int
	Descending bool
}

// AlignmentFor returns the alignment for a playlist that grew by lengthDelta items.
//
// Growth at the tail keeps indexes in place. Growth at the head shifts every old item by lengthDelta.
func AlignmentFor(newVideosLast bool, lengthDelta int) Alignment {
	if newVideosLast {
		return Alignment{}
	}
	return Alignment{Offset: lengthDelta, Descending: true}
}

// ComputeDiff compares newSeq against oldSeq and returns the length delta and the changed positions.
//
// A shorter newSeq is never diffed; the returned error is a [*ShrinkageError] and the report is nil.
func ComputeDiff(newSeq, oldSeq models.TitleSequence, newVideosLast bool) (int, models.DiffReport, error) {
	delta := len(newSeq) - len(oldSeq)
	if delta < 0 {
		return delta, nil, &ShrinkageError{Removed: -delta, NewLength: len(newSeq), OldLength: len(oldSeq)}
	}
	return delta, DiffAligned(newSeq, oldSeq, AlignmentFor(newVideosLast, delta)), nil
}

// DiffAligned records every old index whose title differs from its aligned counterpart in newSeq.
//
// Positions are 1-based in newSeq's index space. Titles outside the aligned window are growth and
// never appear in the report.
func DiffAligned(newSeq, oldSeq models.TitleSequence, a Alignment) models.DiffReport {
	report := models.DiffReport{}

	compare := func(i int) {
		j := i + a.Offset
		if j < 0 || j >= len(newSeq) {
			return
		}
		if oldSeq[i] != newSeq[j] {
			report = append(report, models.DiffRecord{Position: j + 1, Old: oldSeq[i], New: newSeq[j]})
		}
	}

	if a.Descending {
		for i := len(oldSeq) - 1; i >= 0; i-- {
			compare(i)
		}
	} else {
		for i := range oldSeq {
			compare(i)
		}
	}
	return report
}
