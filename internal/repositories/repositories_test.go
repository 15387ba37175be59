package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func completedRun(playlistID string, result *models.CycleResult, err error) *models.CycleRun {
	run := models.NewCycleRun(0, playlistID, playlistID+"-name", true)
	run.Complete(result, err)
	return run
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "nonexistent"); err == nil {
		t.Error("expected error for missing sequence table")
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := completedRun("PL1", &models.CycleResult{Status: models.StatusUpdated, Fetched: 5}, nil)

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		result := &models.CycleResult{
			Status:      models.StatusUpdated,
			Fetched:     12,
			Baseline:    10,
			LengthDelta: 2,
			Diff:        models.DiffReport{{Position: 3, Old: "a", New: "b"}},
		}
		run := completedRun("PL1", result, nil)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}

		if got.PlaylistID() != "PL1" || got.PlaylistName() != "PL1-name" {
			t.Errorf("unexpected playlist %s/%s", got.PlaylistID(), got.PlaylistName())
		}
		if got.Status() != models.StatusUpdated {
			t.Errorf("expected status updated, got %s", got.Status())
		}
		if got.FetchedCount() != 12 || got.BaselineCount() != 10 || got.LengthDelta() != 2 || got.DiffCount() != 1 {
			t.Errorf("unexpected counts: fetched=%d baseline=%d delta=%d diff=%d",
				got.FetchedCount(), got.BaselineCount(), got.LengthDelta(), got.DiffCount())
		}
		if got.CompletedAt() == nil {
			t.Error("expected completed_at to be set")
		}
		if !got.NewVideosLast() {
			t.Error("expected new_videos_last to round trip")
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewRunRepository(db).Get("nonexistent-id")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Record stores fatal runs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := completedRun("PL1", &models.CycleResult{Missing: models.MissingReport{{Position: 1, Title: "x"}}}, shared.ErrShrinkage)
		if err := repo.Record(run); err != nil {
			t.Fatalf("failed to record run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Status() != models.StatusFatal {
			t.Errorf("expected fatal status, got %s", got.Status())
		}
		if got.ErrorMessage() != shared.ErrShrinkage.Error() {
			t.Errorf("unexpected error message %q", got.ErrorMessage())
		}
		if got.MissingCount() != 1 {
			t.Errorf("expected missing count 1, got %d", got.MissingCount())
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for _, id := range []string{"PL1", "PL2", "PL1", "PL1"} {
			if err := repo.Create(completedRun(id, &models.CycleResult{Status: models.StatusUpdated}, nil)); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}
		if err := repo.Create(completedRun("PL1", nil, shared.ErrTransport)); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		tests := []struct {
			name     string
			criteria map[string]any
			want     int
		}{
			{name: "all", criteria: map[string]any{}, want: 5},
			{name: "by playlist", criteria: map[string]any{"playlist_id": "PL1"}, want: 4},
			{name: "by status", criteria: map[string]any{"status": models.StatusFatal}, want: 1},
			{name: "by status string", criteria: map[string]any{"status": "updated"}, want: 4},
			{name: "limit", criteria: map[string]any{"limit": 2}, want: 2},
			{name: "nil criteria", criteria: nil, want: 5},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				runs, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list runs: %v", err)
				}
				if len(runs) != tt.want {
					t.Errorf("expected %d runs, got %d", tt.want, len(runs))
				}
			})
		}

		runs, _ := repo.List(nil)
		if runs[0].Sequence() != 5 {
			t.Errorf("expected newest run first, got sequence %d", runs[0].Sequence())
		}
	})

	t.Run("Latest", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if _, err := repo.Latest("PL1"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound before any run, got %v", err)
		}

		first := completedRun("PL1", &models.CycleResult{Status: models.StatusUpdated}, nil)
		second := completedRun("PL1", &models.CycleResult{Status: models.StatusUpdated, Fetched: 9}, nil)
		for _, run := range []*models.CycleRun{first, second} {
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		latest, err := repo.Latest("PL1")
		if err != nil {
			t.Fatalf("failed to get latest run: %v", err)
		}
		if latest.ID() != second.ID() {
			t.Errorf("expected latest run %s, got %s", second.ID(), latest.ID())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := completedRun("PL1", &models.CycleResult{Status: models.StatusUpdated}, nil)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.SetStatus(models.StatusFatal)
		run.SetErrorMessage("interrupted")
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Status() != models.StatusFatal || got.ErrorMessage() != "interrupted" {
			t.Errorf("update not persisted: %s %q", got.Status(), got.ErrorMessage())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := completedRun("PL1", &models.CycleResult{Status: models.StatusUpdated}, nil)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected deleted run to be hidden, got %v", err)
		}
		if err := repo.Delete(run.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound deleting twice, got %v", err)
		}
	})
}
