package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/repositories"
	"github.com/desertthunder/plbackup/internal/shared"
	"github.com/desertthunder/plbackup/internal/tasks"
	"github.com/desertthunder/plbackup/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive report browser over the configured playlists and --playlistId.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/plbackup-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	playlists, closeHistory, history, err := r.tuiPlaylists(cmd)
	if err != nil {
		return err
	}
	defer closeHistory()

	p := tea.NewProgram(ui.NewModel(ctx, playlists, history), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiPlaylists builds the browser's playlist entries. Backups are offered only when credentials resolve.
func (r *Runner) tuiPlaylists(cmd *cli.Command) ([]ui.Playlist, func(), ui.HistoryLister, error) {
	var targets []target
	if cmd.String("playlistId") != "" {
		t, err := r.resolveTarget(cmd)
		if err != nil {
			return nil, nil, nil, err
		}
		targets = append(targets, t)
	}
	for _, p := range r.config.Playlists {
		if p.ID == cmd.String("playlistId") {
			continue
		}
		t, err := r.newTarget(cmd, p)
		if err != nil {
			return nil, nil, nil, err
		}
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: pass --playlistId or add [[playlists]] to the config", shared.ErrInvalidConfig)
	}

	outputDir, err := r.outputDir(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	env, envErr := r.newCycleEnv(cmd)
	if envErr != nil {
		r.logger.Warn("backups disabled in the TUI", "error", envErr)
	}

	recorder, closeHistory := r.openRecorder()
	var history ui.HistoryLister
	if repo, ok := recorder.(*repositories.RunRepository); ok {
		history = repo
	}
	if env != nil {
		env.recorder = recorder
	}

	playlists := make([]ui.Playlist, len(targets))
	for i, t := range targets {
		playlists[i] = ui.Playlist{
			ID:    t.id,
			Name:  t.name,
			Store: repositories.NewFileSnapshotStore(outputDir, t.name),
		}
		if env != nil {
			playlists[i].Backup = func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.CycleResult, error) {
				return r.runCycle(ctx, env, t, progress)
			}
		}
	}
	return playlists, closeHistory, history, nil
}
