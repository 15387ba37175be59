package testing

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/shared"
)

// Store operation names used by [MemoryStore.Fail] and recorded in [MemoryStore.Ops].
const (
	OpLoad         = "load"
	OpSave         = "save"
	OpCopy         = "copy"
	OpWriteDiff    = "write_diff"
	OpWriteMissing = "write_missing"
)

// MemoryStore is an in-memory snapshot store keyed by slot, with per-operation failure injection.
type MemoryStore struct {
	mu       sync.Mutex
	snaps    map[models.Slot]models.TitleSequence
	diffs    map[models.Slot]models.DiffReport
	missing  map[models.Slot]models.MissingReport
	failures map[string]error
	Ops      []string // "<op>:<slot>" for every mutating call that succeeded; copies record the destination
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snaps:    map[models.Slot]models.TitleSequence{},
		diffs:    map[models.Slot]models.DiffReport{},
		missing:  map[models.Slot]models.MissingReport{},
		failures: map[string]error{},
	}
}

// Fail makes op on slot return err. For copies slot is the destination.
func (m *MemoryStore) Fail(op string, slot models.Slot, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op+":"+string(slot)] = err
}

// Seed stores seq in slot without recording an operation.
func (m *MemoryStore) Seed(slot models.Slot, seq models.TitleSequence) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[slot] = slices.Clone(seq)
}

// SeedDiff stores report in slot without recording an operation.
func (m *MemoryStore) SeedDiff(slot models.Slot, report models.DiffReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diffs[slot] = slices.Clone(report)
}

func (m *MemoryStore) failure(op string, slot models.Slot) error {
	return m.failures[op+":"+string(slot)]
}

func (m *MemoryStore) Load(slot models.Slot) (models.TitleSequence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpLoad, slot); err != nil {
		return nil, err
	}
	seq, ok := m.snaps[slot]
	if !ok {
		return nil, fmt.Errorf("%w: slot %s", shared.ErrNotFound, slot)
	}
	return slices.Clone(seq), nil
}

func (m *MemoryStore) Save(slot models.Slot, seq models.TitleSequence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpSave, slot); err != nil {
		return err
	}
	m.snaps[slot] = slices.Clone(seq)
	m.Ops = append(m.Ops, OpSave+":"+string(slot))
	return nil
}

// Copy copies whatever src holds into dst and is a no-op when src is empty.
func (m *MemoryStore) Copy(src, dst models.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpCopy, dst); err != nil {
		return err
	}

	copied := false
	if seq, ok := m.snaps[src]; ok {
		m.snaps[dst] = slices.Clone(seq)
		copied = true
	}
	if report, ok := m.diffs[src]; ok {
		m.diffs[dst] = slices.Clone(report)
		copied = true
	}
	if report, ok := m.missing[src]; ok {
		m.missing[dst] = slices.Clone(report)
		copied = true
	}
	if copied {
		m.Ops = append(m.Ops, OpCopy+":"+string(dst))
	}
	return nil
}

func (m *MemoryStore) WriteDiff(slot models.Slot, report models.DiffReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpWriteDiff, slot); err != nil {
		return err
	}
	m.diffs[slot] = slices.Clone(report)
	m.Ops = append(m.Ops, OpWriteDiff+":"+string(slot))
	return nil
}

func (m *MemoryStore) WriteMissing(slot models.Slot, report models.MissingReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(OpWriteMissing, slot); err != nil {
		return err
	}
	m.missing[slot] = slices.Clone(report)
	m.Ops = append(m.Ops, OpWriteMissing+":"+string(slot))
	return nil
}

func (m *MemoryStore) LoadDiff(slot models.Slot) (models.DiffReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	report, ok := m.diffs[slot]
	if !ok {
		return nil, fmt.Errorf("%w: slot %s", shared.ErrNotFound, slot)
	}
	return slices.Clone(report), nil
}

func (m *MemoryStore) LoadMissing(slot models.Slot) (models.MissingReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	report, ok := m.missing[slot]
	if !ok {
		return nil, fmt.Errorf("%w: slot %s", shared.ErrNotFound, slot)
	}
	return slices.Clone(report), nil
}

// ReadLines renders slot the way the file store lays it out on disk.
func (m *MemoryStore) ReadLines(slot models.Slot) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure(OpLoad, slot); err != nil {
		return nil, err
	}
	lines := []string{}
	if seq, ok := m.snaps[slot]; ok {
		for i, title := range seq {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, title))
		}
		return lines, nil
	}
	if report, ok := m.diffs[slot]; ok {
		for _, rec := range report {
			lines = append(lines, fmt.Sprintf("%d. Old: %s. New: %s", rec.Position, rec.Old, rec.New))
		}
		return lines, nil
	}
	if report, ok := m.missing[slot]; ok {
		for _, rec := range report {
			lines = append(lines, fmt.Sprintf("%d. %s", rec.Position, rec.Title))
		}
		return lines, nil
	}
	return nil, fmt.Errorf("%w: slot %s", shared.ErrNotFound, slot)
}

func (m *MemoryStore) Exists(slot models.Slot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, a := m.snaps[slot]
	_, b := m.diffs[slot]
	_, c := m.missing[slot]
	return a || b || c
}

// FakeSource is a test double for services.TitleSource returning fixed titles.
type FakeSource struct {
	Titles models.TitleSequence
	Err    error
	Calls  int
	LastID string
}

func (f *FakeSource) FetchAll(ctx context.Context, collectionID, credentials string) (models.TitleSequence, error) {
	f.Calls++
	f.LastID = collectionID
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return slices.Clone(f.Titles), nil
}

// FakeRecorder collects recorded runs and optionally fails.
type FakeRecorder struct {
	Runs []*models.CycleRun
	Err  error
}

func (f *FakeRecorder) Record(run *models.CycleRun) error {
	if f.Err != nil {
		return f.Err
	}
	f.Runs = append(f.Runs, run)
	return nil
}
