package repositories

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/shared"
	th "github.com/desertthunder/plbackup/internal/testing"
)

func TestNewPaths(t *testing.T) {
	paths := NewPaths("/data", "favorites")

	tests := []struct {
		slot models.Slot
		want string
	}{
		{models.SlotCurrent, "/data/favorites-YoutubeBackupNew.txt"},
		{models.SlotBaseline, "/data/favorites-YoutubeBackup.txt"},
		{models.SlotDiff, "/data/favorites-YoutubeBackupDiff.txt"},
		{models.SlotDiffBackup, "/data/favorites-YoutubeBackupDiffOld.txt"},
		{models.SlotBaselineBackup, "/data/favorites-YoutubeBackupOld.txt"},
		{models.SlotMissing, "/data/favorites-MissingVideos.txt"},
	}

	for _, tt := range tests {
		t.Run(string(tt.slot), func(t *testing.T) {
			got, err := paths.Path(tt.slot)
			if err != nil {
				t.Fatalf("Path failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	t.Run("unknown slot", func(t *testing.T) {
		if _, err := paths.Path("bogus"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("does not touch disk", func(t *testing.T) {
		NewPaths(filepath.Join(t.TempDir(), "missing"), "x")
	})
}

func TestFileSnapshotStore(t *testing.T) {
	t.Run("Load absent slot", func(t *testing.T) {
		store := NewFileSnapshotStore(t.TempDir(), "pl")
		if _, err := store.Load(models.SlotCurrent); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if store.Exists(models.SlotCurrent) {
			t.Error("expected slot to be absent")
		}
	})

	t.Run("Save then Load", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSnapshotStore(dir, "pl")
		seq := models.TitleSequence{"a", "Mr. Blue Sky", "c"}

		if err := store.Save(models.SlotCurrent, seq); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		content := th.MustReadFile(t, filepath.Join(dir, "pl-YoutubeBackupNew.txt"))
		if content != "1. a\n2. Mr. Blue Sky\n3. c\n" {
			t.Errorf("unexpected file content %q", content)
		}

		got, err := store.Load(models.SlotCurrent)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !reflect.DeepEqual(got, seq) {
			t.Errorf("expected %v, got %v", seq, got)
		}
		if !store.Exists(models.SlotCurrent) {
			t.Error("expected slot to exist")
		}
	})

	t.Run("Save overwrites", func(t *testing.T) {
		store := NewFileSnapshotStore(t.TempDir(), "pl")
		_ = store.Save(models.SlotCurrent, models.TitleSequence{"a", "b", "c"})
		if err := store.Save(models.SlotCurrent, models.TitleSequence{"z"}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, _ := store.Load(models.SlotCurrent)
		if !reflect.DeepEqual(got, models.TitleSequence{"z"}) {
			t.Errorf("expected overwritten snapshot, got %v", got)
		}
	})

	t.Run("Load malformed file", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSnapshotStore(dir, "pl")
		path := filepath.Join(dir, "pl-YoutubeBackupNew.txt")
		if err := os.WriteFile(path, []byte("1. ok\nno separator\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := store.Load(models.SlotCurrent); !errors.Is(err, shared.ErrParse) {
			t.Errorf("expected ErrParse, got %v", err)
		}
	})

	t.Run("Copy absent source is a no-op", func(t *testing.T) {
		store := NewFileSnapshotStore(t.TempDir(), "pl")
		_ = store.Save(models.SlotBaselineBackup, models.TitleSequence{"keep"})

		if err := store.Copy(models.SlotBaseline, models.SlotBaselineBackup); err != nil {
			t.Fatalf("Copy failed: %v", err)
		}

		got, _ := store.Load(models.SlotBaselineBackup)
		if !reflect.DeepEqual(got, models.TitleSequence{"keep"}) {
			t.Errorf("destination changed: %v", got)
		}
	})

	t.Run("Copy overwrites destination byte for byte", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSnapshotStore(dir, "pl")
		_ = store.WriteDiff(models.SlotDiff, models.DiffReport{{Position: 1, Old: "a", New: "b"}})
		_ = store.WriteDiff(models.SlotDiffBackup, models.DiffReport{{Position: 9, Old: "x", New: "y"}})

		if err := store.Copy(models.SlotDiff, models.SlotDiffBackup); err != nil {
			t.Fatalf("Copy failed: %v", err)
		}

		src := th.MustReadFile(t, filepath.Join(dir, "pl-YoutubeBackupDiff.txt"))
		dst := th.MustReadFile(t, filepath.Join(dir, "pl-YoutubeBackupDiffOld.txt"))
		if src != dst {
			t.Errorf("expected %q, got %q", src, dst)
		}
	})

	t.Run("reports", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSnapshotStore(dir, "pl")

		diff := models.DiffReport{{Position: 4, Old: "d", New: "D"}}
		if err := store.WriteDiff(models.SlotDiff, diff); err != nil {
			t.Fatalf("WriteDiff failed: %v", err)
		}
		gotDiff, err := store.LoadDiff(models.SlotDiff)
		if err != nil {
			t.Fatalf("LoadDiff failed: %v", err)
		}
		if !reflect.DeepEqual(gotDiff, diff) {
			t.Errorf("expected %v, got %v", diff, gotDiff)
		}

		missing := models.MissingReport{{Position: 2, Title: "b"}}
		if err := store.WriteMissing(models.SlotMissing, missing); err != nil {
			t.Fatalf("WriteMissing failed: %v", err)
		}
		gotMissing, err := store.LoadMissing(models.SlotMissing)
		if err != nil {
			t.Fatalf("LoadMissing failed: %v", err)
		}
		if !reflect.DeepEqual(gotMissing, missing) {
			t.Errorf("expected %v, got %v", missing, gotMissing)
		}

		content := th.MustReadFile(t, filepath.Join(dir, "pl-MissingVideos.txt"))
		if content != "2. b\n" {
			t.Errorf("unexpected missing file %q", content)
		}
	})

	t.Run("empty diff writes an empty file", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSnapshotStore(dir, "pl")
		if err := store.WriteDiff(models.SlotDiff, models.DiffReport{}); err != nil {
			t.Fatalf("WriteDiff failed: %v", err)
		}
		th.AssertFileExists(t, filepath.Join(dir, "pl-YoutubeBackupDiff.txt"))

		lines, err := store.ReadLines(models.SlotDiff)
		if err != nil {
			t.Fatalf("ReadLines failed: %v", err)
		}
		if len(lines) != 0 {
			t.Errorf("expected no lines, got %v", lines)
		}
	})

	t.Run("ReadLines", func(t *testing.T) {
		store := NewFileSnapshotStore(t.TempDir(), "pl")
		_ = store.Save(models.SlotCurrent, models.TitleSequence{"a", "b"})

		lines, err := store.ReadLines(models.SlotCurrent)
		if err != nil {
			t.Fatalf("ReadLines failed: %v", err)
		}
		if !reflect.DeepEqual(lines, []string{"1. a", "2. b"}) {
			t.Errorf("unexpected lines %v", lines)
		}
	})

	t.Run("write into missing directory", func(t *testing.T) {
		store := NewFileSnapshotStore(filepath.Join(t.TempDir(), "gone"), "pl")
		if err := store.Save(models.SlotCurrent, models.TitleSequence{"a"}); !errors.Is(err, shared.ErrIO) {
			t.Errorf("expected ErrIO, got %v", err)
		}
	})

	t.Run("Paths", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSnapshotStore(dir, "pl")
		if store.Paths().Prefix != filepath.Join(dir, "pl-") {
			t.Errorf("unexpected prefix %s", store.Paths().Prefix)
		}
	})
}
