package repositories

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/plbackup/internal/formatter"
	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/shared"
)

// SnapshotStore persists snapshots and reports of one playlist by [models.Slot].
type SnapshotStore interface {
	Load(slot models.Slot) (models.TitleSequence, error)              // Load returns [shared.ErrNotFound] when slot is absent
	Save(slot models.Slot, seq models.TitleSequence) error            // Save overwrites slot with seq
	Copy(src, dst models.Slot) error                                  // Copy overwrites dst with src, doing nothing when src is absent
	WriteDiff(slot models.Slot, report models.DiffReport) error       // WriteDiff overwrites slot with report
	WriteMissing(slot models.Slot, report models.MissingReport) error // WriteMissing overwrites slot with report
	LoadDiff(slot models.Slot) (models.DiffReport, error)
	LoadMissing(slot models.Slot) (models.MissingReport, error)
	ReadLines(slot models.Slot) ([]string, error) // ReadLines returns the raw lines of slot
	Exists(slot models.Slot) bool
}

const (
	suffixCurrent        = "YoutubeBackupNew.txt"
	suffixBaseline       = "YoutubeBackup.txt"
	suffixDiff           = "YoutubeBackupDiff.txt"
	suffixDiffBackup     = "YoutubeBackupDiffOld.txt"
	suffixBaselineBackup = "YoutubeBackupOld.txt"
	suffixMissing        = "MissingVideos.txt"
)

// Paths resolves slots to files under "<dir>/<name>-".
type Paths struct {
	Dir    string
	Prefix string
	files  map[models.Slot]string
}

// NewPaths returns the file layout for playlistName in outputDir. It touches nothing on disk.
func NewPaths(outputDir, playlistName string) Paths {
	prefix := filepath.Join(outputDir, playlistName+"-")
	return Paths{
		Dir:    outputDir,
		Prefix: prefix,
		files: map[models.Slot]string{
			models.SlotCurrent:        prefix + suffixCurrent,
			models.SlotBaseline:       prefix + suffixBaseline,
			models.SlotDiff:           prefix + suffixDiff,
			models.SlotDiffBackup:     prefix + suffixDiffBackup,
			models.SlotBaselineBackup: prefix + suffixBaselineBackup,
			models.SlotMissing:        prefix + suffixMissing,
		},
	}
}

// Path returns the file backing slot.
func (p Paths) Path(slot models.Slot) (string, error) {
	path, ok := p.files[slot]
	if !ok {
		return "", fmt.Errorf("%w: unknown slot %q", shared.ErrInvalidArgument, slot)
	}
	return path, nil
}

// FileSnapshotStore implements [SnapshotStore] with one text file per slot.
type FileSnapshotStore struct {
	paths Paths
}

var _ SnapshotStore = (*FileSnapshotStore)(nil)

// NewFileSnapshotStore creates a store for playlistName inside outputDir.
func NewFileSnapshotStore(outputDir, playlistName string) *FileSnapshotStore {
	return &FileSnapshotStore{paths: NewPaths(outputDir, playlistName)}
}

// Paths returns the file layout of the store.
func (s *FileSnapshotStore) Paths() Paths {
	return s.paths
}

// Load reads the snapshot in slot.
func (s *FileSnapshotStore) Load(slot models.Slot) (models.TitleSequence, error) {
	var seq models.TitleSequence
	err := s.read(slot, func(r io.Reader) error {
		var err error
		seq, err = formatter.DecodeSnapshot(r)
		return err
	})
	return seq, err
}

// Save overwrites slot with seq.
func (s *FileSnapshotStore) Save(slot models.Slot, seq models.TitleSequence) error {
	return s.write(slot, func(w io.Writer) error {
		return formatter.EncodeSnapshot(w, seq)
	})
}

// Copy overwrites dst with the bytes of src. An absent src is not an error.
func (s *FileSnapshotStore) Copy(src, dst models.Slot) error {
	srcPath, err := s.paths.Path(src)
	if err != nil {
		return err
	}

	in, err := os.Open(srcPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", shared.ErrIO, srcPath, err)
	}
	defer in.Close()

	return s.write(dst, func(w io.Writer) error {
		if _, err := io.Copy(w, in); err != nil {
			return fmt.Errorf("failed to copy %s: %w", srcPath, err)
		}
		return nil
	})
}

// WriteDiff overwrites slot with report.
func (s *FileSnapshotStore) WriteDiff(slot models.Slot, report models.DiffReport) error {
	return s.write(slot, func(w io.Writer) error {
		return formatter.EncodeDiff(w, report)
	})
}

// WriteMissing overwrites slot with report.
func (s *FileSnapshotStore) WriteMissing(slot models.Slot, report models.MissingReport) error {
	return s.write(slot, func(w io.Writer) error {
		return formatter.EncodeMissing(w, report)
	})
}

// LoadDiff reads the diff report in slot.
func (s *FileSnapshotStore) LoadDiff(slot models.Slot) (models.DiffReport, error) {
	var report models.DiffReport
	err := s.read(slot, func(r io.Reader) error {
		var err error
		report, err = formatter.DecodeDiff(r)
		return err
	})
	return report, err
}

// LoadMissing reads the missing report in slot.
func (s *FileSnapshotStore) LoadMissing(slot models.Slot) (models.MissingReport, error) {
	var report models.MissingReport
	err := s.read(slot, func(r io.Reader) error {
		var err error
		report, err = formatter.DecodeMissing(r)
		return err
	})
	return report, err
}

// ReadLines returns the lines of slot without interpreting them.
func (s *FileSnapshotStore) ReadLines(slot models.Slot) ([]string, error) {
	var lines []string
	err := s.read(slot, func(r io.Reader) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrIO, err)
		}
		text := strings.TrimSuffix(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		if text == "" {
			lines = []string{}
			return nil
		}
		lines = strings.Split(text, "\n")
		return nil
	})
	return lines, err
}

// Exists reports whether slot has a file.
func (s *FileSnapshotStore) Exists(slot models.Slot) bool {
	path, err := s.paths.Path(slot)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *FileSnapshotStore) read(slot models.Slot, fn func(r io.Reader) error) error {
	path, err := s.paths.Path(slot)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", shared.ErrIO, path, err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

func (s *FileSnapshotStore) write(slot models.Slot, fn func(w io.Writer) error) (err error) {
	path, err := s.paths.Path(slot)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", shared.ErrIO, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close %s: %v", shared.ErrIO, path, cerr)
		}
	}()

	if err := fn(f); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrIO, path, err)
	}
	return nil
}
