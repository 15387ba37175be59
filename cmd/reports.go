package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/plbackup/internal/formatter"
	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/repositories"
	"github.com/desertthunder/plbackup/internal/shared"
	"github.com/desertthunder/plbackup/internal/ui"
	"github.com/urfave/cli/v3"
)

// Missing fetches the playlist and reports the stored titles it no longer contains.
func (r *Runner) Missing(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	format, err := reportFormat(cmd)
	if err != nil {
		return err
	}

	t, err := r.resolveTarget(cmd)
	if err != nil {
		return err
	}

	env, err := r.newCycleEnv(cmd)
	if err != nil {
		return err
	}

	slot := models.SlotCurrent
	if cmd.Bool("previous") {
		slot = models.SlotBaseline
	}

	lock, err := repositories.AcquireCycleLock(env.outputDir, t.name)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.logger.Warn("failed to release lock", "playlist", t.name, "error", err)
		}
	}()

	report, err := r.newEngine(env, t).CheckMissing(ctx, slot)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		if len(report) == 0 {
			return r.writePlain("%s\n", ui.Styles().OK("✓ No titles missing from "+t.name))
		}
		r.writePlain("%s\n", ui.Styles().Warn(fmt.Sprintf("%d title(s) missing from %s:", len(report), t.name)))
		return formatter.EncodeMissing(r.output, report)
	case "json":
		return r.writeJSON(report, cmd.Bool("pretty"))
	case "csv":
		data, err := formatter.MissingToCSV(report)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}
	return nil
}

// Diff prints the stored diff report of a playlist without contacting YouTube.
func (r *Runner) Diff(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	format, err := reportFormat(cmd)
	if err != nil {
		return err
	}

	t, err := r.resolveTarget(cmd)
	if err != nil {
		return err
	}

	outputDir, err := r.outputDir(cmd)
	if err != nil {
		return err
	}

	slot := models.SlotDiff
	if cmd.Bool("backup") {
		slot = models.SlotDiffBackup
	}

	report, err := repositories.NewFileSnapshotStore(outputDir, t.name).LoadDiff(slot)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		if len(report) == 0 {
			return r.writePlain("No changes recorded.\n")
		}
		return formatter.EncodeDiff(r.output, report)
	case "json":
		return r.writeJSON(report, cmd.Bool("pretty"))
	case "csv":
		data, err := formatter.DiffToCSV(report)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}
	return nil
}

// reportFormat returns the --format value, checked before any request or file read.
func reportFormat(cmd *cli.Command) (string, error) {
	switch format := strings.ToLower(strings.TrimSpace(cmd.String("format"))); format {
	case "", "text":
		return "text", nil
	case "json", "csv":
		return format, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (expected text, json or csv)", shared.ErrInvalidArgument, format)
	}
}
