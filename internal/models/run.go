package models

import (
	"fmt"
	"time"
)

// CycleRun records a single backup cycle for a playlist in the run history.
type CycleRun struct {
	id            string
	sequence      int
	playlistID    string
	playlistName  string
	status        CycleStatus
	newVideosLast bool
	fetchedCount  int
	baselineCount int
	lengthDelta   int
	diffCount     int
	missingCount  int
	errorMessage  string
	startedAt     time.Time
	completedAt   *time.Time
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

var _ Model = (*CycleRun)(nil)

// NewCycleRun creates a run for the given playlist, started now.
func NewCycleRun(sequence int, playlistID, playlistName string, newVideosLast bool) *CycleRun {
	now := time.Now()
	return &CycleRun{
		sequence:      sequence,
		playlistID:    playlistID,
		playlistName:  playlistName,
		newVideosLast: newVideosLast,
		startedAt:     now,
		createdAt:     now,
		updatedAt:     now,
	}
}

// Complete copies the outcome of result onto the run and stamps the completion time.
func (r *CycleRun) Complete(result *CycleResult, err error) {
	now := time.Now()
	r.completedAt = &now
	r.updatedAt = now

	if result != nil {
		r.status = result.Status
		r.fetchedCount = result.Fetched
		r.baselineCount = result.Baseline
		r.lengthDelta = result.LengthDelta
		r.diffCount = len(result.Diff)
		r.missingCount = len(result.Missing)
		r.errorMessage = result.Reason
	}

	if err != nil {
		r.status = StatusFatal
		r.errorMessage = err.Error()
	}
}

func (r *CycleRun) ID() string                  { return r.id }
func (r *CycleRun) Sequence() int               { return r.sequence }
func (r *CycleRun) PlaylistID() string          { return r.playlistID }
func (r *CycleRun) PlaylistName() string        { return r.playlistName }
func (r *CycleRun) Status() CycleStatus         { return r.status }
func (r *CycleRun) NewVideosLast() bool         { return r.newVideosLast }
func (r *CycleRun) FetchedCount() int           { return r.fetchedCount }
func (r *CycleRun) BaselineCount() int          { return r.baselineCount }
func (r *CycleRun) LengthDelta() int            { return r.lengthDelta }
func (r *CycleRun) DiffCount() int              { return r.diffCount }
func (r *CycleRun) MissingCount() int           { return r.missingCount }
func (r *CycleRun) ErrorMessage() string        { return r.errorMessage }
func (r *CycleRun) StartedAt() time.Time        { return r.startedAt }
func (r *CycleRun) CompletedAt() *time.Time     { return r.completedAt }
func (r *CycleRun) CreatedAt() time.Time        { return r.createdAt }
func (r *CycleRun) UpdatedAt() time.Time        { return r.updatedAt }
func (r *CycleRun) DeletedAt() *time.Time       { return r.deletedAt }
func (r *CycleRun) SetID(id string)             { r.id = id }
func (r *CycleRun) SetSequence(seq int)         { r.sequence = seq }
func (r *CycleRun) SetStatus(s CycleStatus)     { r.status = s }
func (r *CycleRun) SetErrorMessage(m string)    { r.errorMessage = m }
func (r *CycleRun) SetStartedAt(t time.Time)    { r.startedAt = t }
func (r *CycleRun) SetCompletedAt(t *time.Time) { r.completedAt = t }
func (r *CycleRun) SetCreatedAt(t time.Time)    { r.createdAt = t }
func (r *CycleRun) SetUpdatedAt(t time.Time)    { r.updatedAt = t }
func (r *CycleRun) SetDeletedAt(t *time.Time)   { r.deletedAt = t }

// SetCounts sets the snapshot counters in one call, used when scanning rows.
func (r *CycleRun) SetCounts(fetched, baseline, delta, diff, missing int) {
	r.fetchedCount = fetched
	r.baselineCount = baseline
	r.lengthDelta = delta
	r.diffCount = diff
	r.missingCount = missing
}

// Validate checks required fields.
func (r *CycleRun) Validate() error {
	if r.id == "" {
		return fmt.Errorf("run id is required")
	}
	if r.playlistID == "" {
		return fmt.Errorf("playlist id is required")
	}
	switch r.status {
	case StatusUpdated, StatusFatal:
	default:
		return fmt.Errorf("invalid run status %q", r.status)
	}
	return nil
}
