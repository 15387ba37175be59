package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/shared"
)

// RunRepository implements models.Repository[*models.CycleRun] for the backup run history.
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.CycleRun] = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, sequence, playlist_id, playlist_name, status, new_videos_last, fetched_count, baseline_count,
	length_delta, diff_count, missing_count, error_message, started_at, completed_at, created_at, updated_at, deleted_at`

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.CycleRun) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetID(shared.GenerateID())
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, playlist_id, playlist_name, status, new_videos_last, fetched_count, baseline_count,
			length_delta, diff_count, missing_count, error_message, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID(),
		run.Sequence(),
		run.PlaylistID(),
		run.PlaylistName(),
		string(run.Status()),
		run.NewVideosLast(),
		run.FetchedCount(),
		run.BaselineCount(),
		run.LengthDelta(),
		run.DiffCount(),
		run.MissingCount(),
		run.ErrorMessage(),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Record stores a completed run. It satisfies tasks.RunRecorder.
func (r *RunRepository) Record(run *models.CycleRun) error {
	return r.Create(run)
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.CycleRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id))
}

// Latest retrieves the most recent run for a playlist
func (r *RunRepository) Latest(playlistID string) (*models.CycleRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs
		WHERE playlist_id = ? AND deleted_at IS NULL
		ORDER BY sequence DESC LIMIT 1`
	return r.scanOne(r.db.QueryRow(query, playlistID))
}

// Update modifies the outcome of an existing run
func (r *RunRepository) Update(run *models.CycleRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET status = ?, fetched_count = ?, baseline_count = ?, length_delta = ?, diff_count = ?, missing_count = ?,
			error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(run.Status()),
		run.FetchedCount(),
		run.BaselineCount(),
		run.LengthDelta(),
		run.DiffCount(),
		run.MissingCount(),
		run.ErrorMessage(),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return requireAffected(result, run.ID())
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return requireAffected(result, id)
}

// List retrieves runs matching the given criteria, newest first, excluding soft-deleted runs.
//
// Supported criteria: "playlist_id" (string), "status" (models.CycleStatus or string), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.CycleRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	args := []any{}

	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	switch status := criteria["status"].(type) {
	case models.CycleStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.CycleRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanOne scans a single row into a [models.CycleRun]
func (r *RunRepository) scanOne(row *sql.Row) (*models.CycleRun, error) {
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: run", shared.ErrNotFound)
	}
	return run, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.CycleRun, error) {
	var (
		id            string
		sequence      int
		playlistID    string
		playlistName  string
		status        string
		newVideosLast bool
		fetched       int
		baseline      int
		delta         int
		diff          int
		missing       int
		errorMessage  sql.NullString
		startedAt     time.Time
		completedAt   sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := row.Scan(&id, &sequence, &playlistID, &playlistName, &status, &newVideosLast, &fetched, &baseline,
		&delta, &diff, &missing, &errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewCycleRun(sequence, playlistID, playlistName, newVideosLast)
	run.SetID(id)
	run.SetStatus(models.CycleStatus(status))
	run.SetCounts(fetched, baseline, delta, diff, missing)
	run.SetErrorMessage(errorMessage.String)
	run.SetStartedAt(startedAt)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: run not found or already deleted: %s", shared.ErrNotFound, id)
	}
	return nil
}
