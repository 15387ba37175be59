package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/repositories"
	"github.com/desertthunder/plbackup/internal/services"
	"github.com/desertthunder/plbackup/internal/shared"
	"github.com/desertthunder/plbackup/internal/tasks"
	"github.com/desertthunder/plbackup/internal/ui"
	"github.com/urfave/cli/v3"
)

// target is one playlist resolved from flags and config.
type target struct {
	id            string
	name          string
	newVideosLast bool
}

// cycleEnv is everything a cycle needs besides the playlist itself.
type cycleEnv struct {
	source      services.TitleSource
	outputDir   string
	credentials string
	recorder    tasks.RunRecorder
}

// Backup runs a backup cycle for --playlistId, or for every configured playlist with --all.
//
// Configuration problems are reported before any request is made or file is touched.
func (r *Runner) Backup(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	targets, err := r.resolveTargets(cmd)
	if err != nil {
		return err
	}

	env, err := r.newCycleEnv(cmd)
	if err != nil {
		return err
	}

	recorder, closeHistory := r.openRecorder()
	defer closeHistory()
	env.recorder = recorder

	for _, t := range targets {
		result, err := r.backupWithProgress(ctx, env, t)
		r.printSummary(t, result, err)
		if err != nil {
			return fmt.Errorf("backup of %s failed: %w", t.name, err)
		}
	}
	return nil
}

// resolveTargets returns the playlists to operate on. --all selects the [[playlists]] entries.
func (r *Runner) resolveTargets(cmd *cli.Command) ([]target, error) {
	if cmd.Bool("all") {
		if len(r.config.Playlists) == 0 {
			return nil, fmt.Errorf("%w: --all requires at least one [[playlists]] entry", shared.ErrInvalidConfig)
		}
		targets := make([]target, 0, len(r.config.Playlists))
		for _, p := range r.config.Playlists {
			t, err := r.newTarget(cmd, p)
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
		}
		return targets, nil
	}

	t, err := r.resolveTarget(cmd)
	if err != nil {
		return nil, err
	}
	return []target{t}, nil
}

// resolveTarget returns the playlist named by --playlistId, merged with its config entry if any.
func (r *Runner) resolveTarget(cmd *cli.Command) (target, error) {
	id := strings.TrimSpace(cmd.String("playlistId"))
	if id == "" {
		return target{}, fmt.Errorf("%w: --playlistId is required", shared.ErrInvalidConfig)
	}

	p, ok := r.config.Playlist(id)
	if !ok {
		p = shared.PlaylistConfig{ID: id}
	}
	if name := strings.TrimSpace(cmd.String("playlistName")); name != "" {
		p.Name = name
	}
	return r.newTarget(cmd, p)
}

func (r *Runner) newTarget(cmd *cli.Command, p shared.PlaylistConfig) (target, error) {
	t := target{
		id:            p.ID,
		name:          p.DisplayName(),
		newVideosLast: p.AppendsToEnd(r.config.Backup.NewVideosLast),
	}
	if cmd.IsSet("areNewVideosLast") {
		t.newVideosLast = cmd.Bool("areNewVideosLast")
	}
	if strings.ContainsAny(t.name, `/\`) || t.name == "." || t.name == ".." {
		return target{}, fmt.Errorf("%w: playlist name %q cannot be used in a file name", shared.ErrInvalidConfig, t.name)
	}
	return t, nil
}

func (r *Runner) outputDir(cmd *cli.Command) (string, error) {
	dir := cmd.String("outputDir")
	if strings.TrimSpace(dir) == "" {
		dir = r.config.Backup.OutputDir
	}
	return shared.ResolveOutputDir(dir)
}

// newCycleEnv resolves the output directory, credentials and title source.
func (r *Runner) newCycleEnv(cmd *cli.Command) (*cycleEnv, error) {
	outputDir, err := r.outputDir(cmd)
	if err != nil {
		return nil, err
	}

	credentials := strings.TrimSpace(cmd.String("youtubeAuthKey"))
	if credentials == "" {
		credentials = strings.TrimSpace(r.config.YouTube.APIKey)
	}
	if credentials == "" && r.config.YouTube.AccessToken == "" {
		return nil, fmt.Errorf("%w: --youtubeAuthKey or youtube.api_key is required", shared.ErrInvalidConfig)
	}

	source, err := r.titleSource()
	if err != nil {
		return nil, err
	}

	return &cycleEnv{source: source, outputDir: outputDir, credentials: credentials}, nil
}

// openRecorder opens the run history database. History is optional: failures are logged and
// the returned recorder is nil.
func (r *Runner) openRecorder() (tasks.RunRecorder, func()) {
	if strings.TrimSpace(r.config.Database.Path) == "" {
		return nil, func() {}
	}

	db, err := shared.OpenHistory(r.config.Database)
	if err != nil {
		r.logger.Warn("run history disabled", "path", r.config.Database.Path, "error", err)
		return nil, func() {}
	}

	return repositories.NewRunRepository(db), func() {
		if err := db.Close(); err != nil {
			r.logger.Warn("failed to close run history", "error", err)
		}
	}
}

func (r *Runner) newEngine(env *cycleEnv, t target) *tasks.BackupEngine {
	return tasks.NewBackupEngine(tasks.EngineOpts{
		Source:        env.source,
		Store:         repositories.NewFileSnapshotStore(env.outputDir, t.name),
		Recorder:      env.recorder,
		Logger:        r.logger,
		PlaylistID:    t.id,
		PlaylistName:  t.name,
		Credentials:   env.credentials,
		NewVideosLast: t.newVideosLast,
	})
}

// runCycle runs one cycle while holding the playlist's lock.
func (r *Runner) runCycle(ctx context.Context, env *cycleEnv, t target, progress chan<- tasks.ProgressUpdate) (*models.CycleResult, error) {
	lock, err := repositories.AcquireCycleLock(env.outputDir, t.name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.logger.Warn("failed to release lock", "playlist", t.name, "error", err)
		}
	}()

	return r.newEngine(env, t).RunCycle(ctx, progress)
}

// backupWithProgress runs a cycle and logs its progress updates as they arrive.
func (r *Runner) backupWithProgress(ctx context.Context, env *cycleEnv, t target) (*models.CycleResult, error) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	logger := shared.WithLogger(r.logger, "playlist", t.name)

	go func() {
		defer close(done)
		for update := range progress {
			logger.Info(update.Message, "step", fmt.Sprintf("%d/%d", update.Step, update.Total), "phase", update.Phase)
		}
	}()

	result, err := r.runCycle(ctx, env, t, progress)
	close(progress)
	<-done
	return result, err
}

func (r *Runner) printSummary(t target, result *models.CycleResult, err error) {
	styles := ui.Styles()
	r.writePlainHeader(fmt.Sprintf("%s (%s)", t.name, t.id))

	if err != nil {
		r.writePlain("%s\n", styles.Err("✗ "+err.Error()))

		var shrink *tasks.ShrinkageError
		if errors.As(err, &shrink) && result != nil {
			r.writePlain("%s\n", styles.Warn(fmt.Sprintf("%d title(s) no longer in the playlist:", len(result.Missing))))
			for _, rec := range result.Missing {
				r.writePlain("  %d. %s\n", rec.Position, rec.Title)
			}
		}
		return
	}

	if result.NoBaseline {
		r.writePlain("%s\n", styles.OK(fmt.Sprintf("✓ First snapshot saved: %d titles", result.Fetched)))
		return
	}

	r.writePlain("%s\n", styles.OK("✓ Backup complete"))
	r.writePlain("  Fetched:  %d\n", result.Fetched)
	r.writePlain("  Previous: %d\n", result.Baseline)
	r.writePlain("  Added:    %d\n", result.LengthDelta)
	r.writePlain("  Changed:  %d\n", len(result.Diff))
	if len(result.Diff) > 0 {
		r.writePlain("%s\n", styles.Help("Run 'plbackup diff --playlistId "+t.id+"' for details."))
	}
}
