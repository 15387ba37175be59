package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/repositories"
	"github.com/desertthunder/plbackup/internal/shared"
	"github.com/urfave/cli/v3"
)

// runView is the JSON shape of a recorded run.
type runView struct {
	ID           string             `json:"id"`
	Sequence     int                `json:"sequence"`
	PlaylistID   string             `json:"playlist_id"`
	PlaylistName string             `json:"playlist_name"`
	Status       models.CycleStatus `json:"status"`
	Fetched      int                `json:"fetched"`
	Baseline     int                `json:"baseline"`
	LengthDelta  int                `json:"length_delta"`
	Changed      int                `json:"changed"`
	Missing      int                `json:"missing"`
	Error        string             `json:"error,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
}

func newRunView(run *models.CycleRun) runView {
	return runView{
		ID:           run.ID(),
		Sequence:     run.Sequence(),
		PlaylistID:   run.PlaylistID(),
		PlaylistName: run.PlaylistName(),
		Status:       run.Status(),
		Fetched:      run.FetchedCount(),
		Baseline:     run.BaselineCount(),
		LengthDelta:  run.LengthDelta(),
		Changed:      run.DiffCount(),
		Missing:      run.MissingCount(),
		Error:        run.ErrorMessage(),
		StartedAt:    run.StartedAt(),
		CompletedAt:  run.CompletedAt(),
	}
}

// History lists recorded runs, newest first, optionally filtered by --playlistId.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	db, err := shared.OpenHistory(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer db.Close()

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if id := cmd.String("playlistId"); id != "" {
		criteria["playlist_id"] = id
	}

	runs, err := repositories.NewRunRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]runView, len(runs))
		for i, run := range runs {
			views[i] = newRunView(run)
		}
		return r.writeJSON(views, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded.\n")
	}

	r.writePlainHeader(fmt.Sprintf("%d run(s)", len(runs)))
	for _, run := range runs {
		r.writePlain("#%-4d %s  %-8s %-20s", run.Sequence(), run.StartedAt().Format("2006-01-02 15:04:05"), run.Status(), run.PlaylistName())
		if run.Status() == models.StatusFatal {
			r.writePlain(" %s\n", run.ErrorMessage())
			continue
		}
		r.writePlain(" %d titles (%+d), %d changed\n", run.FetchedCount(), run.LengthDelta(), run.DiffCount())
	}
	return nil
}
