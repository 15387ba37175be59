package tasks

import (
	"errors"
	"reflect"
	"testing"

	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/shared"
)

func TestComputeDiff(t *testing.T) {
	tests := []struct {
		name          string
		newSeq        models.TitleSequence
		oldSeq        models.TitleSequence
		newVideosLast bool
		wantDelta     int
		want          models.DiffReport
	}{
		{
			name:          "appended, unchanged prefix",
			newSeq:        models.TitleSequence{"a", "b", "c", "d"},
			oldSeq:        models.TitleSequence{"a", "b", "c"},
			newVideosLast: true,
			wantDelta:     1,
			want:          models.DiffReport{},
		},
		{
			name:          "appended with a renamed item",
			newSeq:        models.TitleSequence{"a", "x", "c", "d"},
			oldSeq:        models.TitleSequence{"a", "b", "c"},
			newVideosLast: true,
			wantDelta:     1,
			want:          models.DiffReport{{Position: 2, Old: "b", New: "x"}},
		},
		{
			name:          "prepended, unchanged suffix",
			newSeq:        models.TitleSequence{"z", "a", "b", "c"},
			oldSeq:        models.TitleSequence{"a", "b", "c"},
			newVideosLast: false,
			wantDelta:     1,
			want:          models.DiffReport{},
		},
		{
			name:          "prepended with a renamed item",
			newSeq:        models.TitleSequence{"z", "a", "x", "c"},
			oldSeq:        models.TitleSequence{"a", "b", "c"},
			newVideosLast: false,
			wantDelta:     1,
			want:          models.DiffReport{{Position: 3, Old: "b", New: "x"}},
		},
		{
			name:          "prepended renames are reported last to first",
			newSeq:        models.TitleSequence{"y", "z", "A", "b", "C"},
			oldSeq:        models.TitleSequence{"a", "b", "c"},
			newVideosLast: false,
			wantDelta:     2,
			want: models.DiffReport{
				{Position: 5, Old: "c", New: "C"},
				{Position: 3, Old: "a", New: "A"},
			},
		},
		{
			name:          "prepend misread as append shifts every position",
			newSeq:        models.TitleSequence{"z", "a", "b"},
			oldSeq:        models.TitleSequence{"a", "b"},
			newVideosLast: true,
			wantDelta:     1,
			want: models.DiffReport{
				{Position: 1, Old: "a", New: "z"},
				{Position: 2, Old: "b", New: "a"},
			},
		},
		{
			name:          "no baseline",
			newSeq:        models.TitleSequence{"a", "b"},
			oldSeq:        models.TitleSequence{},
			newVideosLast: false,
			wantDelta:     2,
			want:          models.DiffReport{},
		},
		{
			name:          "both empty",
			newSeq:        models.TitleSequence{},
			oldSeq:        models.TitleSequence{},
			newVideosLast: true,
			want:          models.DiffReport{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, report, err := ComputeDiff(tt.newSeq, tt.oldSeq, tt.newVideosLast)
			if err != nil {
				t.Fatalf("ComputeDiff failed: %v", err)
			}
			if delta != tt.wantDelta {
				t.Errorf("expected delta %d, got %d", tt.wantDelta, delta)
			}
			if !reflect.DeepEqual(report, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, report)
			}
		})
	}

	t.Run("equal lengths give the same report for both directions", func(t *testing.T) {
		newSeq := models.TitleSequence{"a", "X", "c", "Y"}
		oldSeq := models.TitleSequence{"a", "b", "c", "d"}

		_, appended, _ := ComputeDiff(newSeq, oldSeq, true)
		_, prepended, _ := ComputeDiff(newSeq, oldSeq, false)

		if len(appended) != 2 || len(prepended) != 2 {
			t.Fatalf("expected 2 records each, got %v and %v", appended, prepended)
		}
		if !reflect.DeepEqual(appended[0], prepended[1]) || !reflect.DeepEqual(appended[1], prepended[0]) {
			t.Errorf("expected same records in reverse order, got %v and %v", appended, prepended)
		}
	})

	t.Run("growth is never reported", func(t *testing.T) {
		oldSeq := models.TitleSequence{"a", "b"}
		newSeq := models.TitleSequence{"a", "b", "new1", "new2", "new3"}

		_, report, err := ComputeDiff(newSeq, oldSeq, true)
		if err != nil {
			t.Fatalf("ComputeDiff failed: %v", err)
		}
		for _, rec := range report {
			if rec.Position > len(oldSeq) {
				t.Errorf("growth position %d reported", rec.Position)
			}
		}
	})

	t.Run("shrinkage", func(t *testing.T) {
		delta, report, err := ComputeDiff(models.TitleSequence{"a", "c"}, models.TitleSequence{"a", "b", "c"}, true)
		if delta != -1 {
			t.Errorf("expected delta -1, got %d", delta)
		}
		if report != nil {
			t.Errorf("expected no report, got %v", report)
		}
		if !errors.Is(err, shared.ErrShrinkage) || !errors.Is(err, shared.ErrUpstreamAnomaly) {
			t.Fatalf("expected shrinkage anomaly, got %v", err)
		}

		var shrink *ShrinkageError
		if !errors.As(err, &shrink) {
			t.Fatalf("expected *ShrinkageError, got %T", err)
		}
		if shrink.Removed != 1 || shrink.NewLength != 2 || shrink.OldLength != 3 {
			t.Errorf("unexpected shrinkage %+v", shrink)
		}
		if errors.Is(err, shared.ErrTransport) {
			t.Error("shrinkage must not match unrelated sentinels")
		}
	})
}

func TestAlignmentFor(t *testing.T) {
	if got := AlignmentFor(true, 4); got != (Alignment{}) {
		t.Errorf("expected zero alignment for appends, got %+v", got)
	}
	if got := AlignmentFor(false, 4); got != (Alignment{Offset: 4, Descending: true}) {
		t.Errorf("expected offset alignment for prepends, got %+v", got)
	}
}

func TestDiffAligned(t *testing.T) {
	t.Run("offset outside the new sequence is skipped", func(t *testing.T) {
		report := DiffAligned(models.TitleSequence{"a"}, models.TitleSequence{"a", "b"}, Alignment{Offset: 0})
		if len(report) != 0 {
			t.Errorf("expected no records, got %v", report)
		}
	})

	t.Run("ascending", func(t *testing.T) {
		report := DiffAligned(models.TitleSequence{"1", "2", "3"}, models.TitleSequence{"x", "2", "y"}, Alignment{})
		want := models.DiffReport{{Position: 1, Old: "x", New: "1"}, {Position: 3, Old: "y", New: "3"}}
		if !reflect.DeepEqual(report, want) {
			t.Errorf("expected %v, got %v", want, report)
		}
	})
}
