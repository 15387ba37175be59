// package tasks implements the playlist backup cycle.
//
// The core abstraction is [BackupEngine], which fetches a playlist, compares it with the stored snapshot, and rotates
// the snapshot and report files. Cycles emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/repositories"
	"github.com/desertthunder/plbackup/internal/services"
	"github.com/desertthunder/plbackup/internal/shared"
)

// RunRecorder persists the outcome of a cycle.
type RunRecorder interface {
	Record(run *models.CycleRun) error
}

// EngineOpts configures a [BackupEngine].
type EngineOpts struct {
	Source        services.TitleSource
	Store         repositories.SnapshotStore
	Recorder      RunRecorder // optional
	Logger        *log.Logger // optional
	PlaylistID    string
	PlaylistName  string
	Credentials   string
	NewVideosLast bool
}

// BackupEngine runs backup cycles for a single playlist.
type BackupEngine struct {
	source        services.TitleSource
	store         repositories.SnapshotStore
	recorder      RunRecorder
	logger        *log.Logger
	playlistID    string
	playlistName  string
	credentials   string
	newVideosLast bool
}

// NewBackupEngine creates a [BackupEngine] from opts.
func NewBackupEngine(opts EngineOpts) *BackupEngine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	name := opts.PlaylistName
	if name == "" {
		name = opts.PlaylistID
	}
	return &BackupEngine{
		source:        opts.Source,
		store:         opts.Store,
		recorder:      opts.Recorder,
		logger:        shared.WithLogger(logger, "playlist", name),
		playlistID:    opts.PlaylistID,
		playlistName:  name,
		credentials:   opts.Credentials,
		newVideosLast: opts.NewVideosLast,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *BackupEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// RunCycle performs one backup cycle.
//
// Every failure yields a result with [models.StatusFatal] alongside the error. When the playlist shrank, the missing
// report is written and nothing else is touched. Otherwise the backups are rotated, the previous snapshot is promoted
// to the baseline, and the new snapshot and diff report are written, in that order, stopping at the first error.
func (e *BackupEngine) RunCycle(ctx context.Context, progress chan<- ProgressUpdate) (*models.CycleResult, error) {
	if err := e.validate(); err != nil {
		return &models.CycleResult{Status: models.StatusFatal, Reason: err.Error()}, err
	}

	run := models.NewCycleRun(0, e.playlistID, e.playlistName, e.newVideosLast)
	result, err := e.runCycle(ctx, progress)
	if err != nil {
		result.Status = models.StatusFatal
		result.Reason = err.Error()
	}
	e.record(run, result, err)
	return result, err
}

func (e *BackupEngine) runCycle(ctx context.Context, progress chan<- ProgressUpdate) (*models.CycleResult, error) {
	result := &models.CycleResult{}

	e.sendProgress(progress, fetchTitlesUpdate(e.playlistID))
	newSeq, err := e.source.FetchAll(ctx, e.playlistID, e.credentials)
	if err != nil {
		return result, fmt.Errorf("failed to fetch playlist %s: %w", e.playlistID, err)
	}
	result.Fetched = len(newSeq)
	e.sendProgress(progress, fetchedTitlesUpdate(newSeq))
	e.logger.Info("retrieved titles", "count", len(newSeq))

	e.sendProgress(progress, loadBaselineUpdate())
	oldSeq, noBaseline, err := e.loadOrEmpty(models.SlotCurrent)
	if err != nil {
		return result, err
	}
	result.NoBaseline = noBaseline
	result.Baseline = len(oldSeq)
	if noBaseline {
		e.logger.Info("no previous snapshot, starting from empty")
	}

	e.sendProgress(progress, compareUpdate(len(newSeq), len(oldSeq)))
	delta, diff, err := ComputeDiff(newSeq, oldSeq, e.newVideosLast)
	result.LengthDelta = delta
	if err != nil {
		var shrink *ShrinkageError
		if !errors.As(err, &shrink) {
			return result, err
		}

		result.Missing = FindMissing(oldSeq, newSeq)
		e.sendProgress(progress, missingUpdate(result.Missing))
		e.logger.Error("playlist shrank", "removed", shrink.Removed, "missing", len(result.Missing))
		if werr := e.store.WriteMissing(models.SlotMissing, result.Missing); werr != nil {
			return result, errors.Join(err, fmt.Errorf("failed to write missing report: %w", werr))
		}
		return result, err
	}
	result.Diff = diff

	e.sendProgress(progress, createBackupsUpdate())
	e.logger.Debug("creating backups")
	if err := e.store.Copy(models.SlotBaseline, models.SlotBaselineBackup); err != nil {
		return result, fmt.Errorf("failed to back up baseline: %w", err)
	}
	if err := e.store.Copy(models.SlotDiff, models.SlotDiffBackup); err != nil {
		return result, fmt.Errorf("failed to back up diff report: %w", err)
	}

	e.sendProgress(progress, promoteUpdate())
	if err := e.store.Copy(models.SlotCurrent, models.SlotBaseline); err != nil {
		return result, fmt.Errorf("failed to promote snapshot: %w", err)
	}

	e.sendProgress(progress, writeSnapshotUpdate(len(newSeq)))
	e.logger.Debug("writing snapshot", "slot", models.SlotCurrent, "count", len(newSeq))
	if err := e.store.Save(models.SlotCurrent, newSeq); err != nil {
		return result, fmt.Errorf("failed to write snapshot: %w", err)
	}

	e.sendProgress(progress, writeDiffUpdate(diff))
	e.logger.Debug("writing diff file", "slot", models.SlotDiff, "changes", len(diff))
	if err := e.store.WriteDiff(models.SlotDiff, diff); err != nil {
		return result, fmt.Errorf("failed to write diff report: %w", err)
	}

	result.Status = models.StatusUpdated
	e.logger.Info("backup complete", "added", delta, "changed", len(diff))
	return result, nil
}

// CheckMissing fetches the playlist, compares it with the snapshot stored in slot, and writes the missing report.
//
// Returns [shared.ErrNotFound] when slot holds no snapshot.
func (e *BackupEngine) CheckMissing(ctx context.Context, slot models.Slot) (models.MissingReport, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	oldSeq, err := e.store.Load(slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s snapshot: %w", slot, err)
	}

	newSeq, err := e.source.FetchAll(ctx, e.playlistID, e.credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist %s: %w", e.playlistID, err)
	}

	report := FindMissing(oldSeq, newSeq)
	e.logger.Info("missing check", "slot", slot, "stored", len(oldSeq), "fetched", len(newSeq), "missing", len(report))
	if err := e.store.WriteMissing(models.SlotMissing, report); err != nil {
		return report, fmt.Errorf("failed to write missing report: %w", err)
	}
	return report, nil
}

// loadOrEmpty loads slot, treating an absent snapshot as an empty one.
func (e *BackupEngine) loadOrEmpty(slot models.Slot) (models.TitleSequence, bool, error) {
	seq, err := e.store.Load(slot)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return models.TitleSequence{}, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to load %s snapshot: %w", slot, err)
	default:
		return seq, false, nil
	}
}

func (e *BackupEngine) record(run *models.CycleRun, result *models.CycleResult, err error) {
	if e.recorder == nil {
		return
	}
	run.Complete(result, err)
	if rerr := e.recorder.Record(run); rerr != nil {
		e.logger.Warn("failed to record run", "error", rerr)
	}
}

func (e *BackupEngine) validate() error {
	if e.source == nil {
		return fmt.Errorf("%w: title source not initialized", shared.ErrInvalidConfig)
	}
	if e.store == nil {
		return fmt.Errorf("%w: snapshot store not initialized", shared.ErrInvalidConfig)
	}
	if e.playlistID == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrInvalidConfig)
	}
	return nil
}
