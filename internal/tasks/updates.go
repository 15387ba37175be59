package tasks

import (
	"fmt"

	"github.com/desertthunder/plbackup/internal/models"
)

// ProgressUpdate represents a progress event during a backup cycle.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within the cycle
	Total   int    // Total steps in the cycle
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchTitles Phase = iota
	LoadBaseline
	Compare
	ReportMissing
	CreateBackups
	PromoteSnapshot
	WriteSnapshot
	WriteDiff
)

func (p Phase) String() string {
	switch p {
	case FetchTitles:
		return "fetch_titles"
	case LoadBaseline:
		return "load_baseline"
	case Compare:
		return "compare"
	case ReportMissing:
		return "report_missing"
	case CreateBackups:
		return "create_backups"
	case PromoteSnapshot:
		return "promote_snapshot"
	case WriteSnapshot:
		return "write_snapshot"
	case WriteDiff:
		return "write_diff"
	default:
		return ""
	}
}

// cycleSteps is the number of steps a successful cycle reports.
const cycleSteps = 7

func fetchTitlesUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTitles,
		Step:    1,
		Total:   cycleSteps,
		Message: fmt.Sprintf("Fetching playlist titles (%s)...", playlistID),
	}
}

func fetchedTitlesUpdate(seq models.TitleSequence) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTitles,
		Step:    1,
		Total:   cycleSteps,
		Message: fmt.Sprintf("Retrieved %d titles", len(seq)),
		Data:    len(seq),
	}
}

func loadBaselineUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadBaseline,
		Step:    2,
		Total:   cycleSteps,
		Message: "Loading previous snapshot...",
	}
}

func compareUpdate(fetched, baseline int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    3,
		Total:   cycleSteps,
		Message: fmt.Sprintf("Comparing %d titles against %d stored titles...", fetched, baseline),
	}
}

func missingUpdate(report models.MissingReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReportMissing,
		Step:    3,
		Total:   cycleSteps,
		Message: fmt.Sprintf("✗ %d title(s) missing, writing report", len(report)),
		Data:    report,
	}
}

func createBackupsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateBackups,
		Step:    4,
		Total:   cycleSteps,
		Message: "Creating backups...",
	}
}

func promoteUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   PromoteSnapshot,
		Step:    5,
		Total:   cycleSteps,
		Message: "Promoting previous snapshot...",
	}
}

func writeSnapshotUpdate(n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteSnapshot,
		Step:    6,
		Total:   cycleSteps,
		Message: fmt.Sprintf("Writing snapshot (%d titles)...", n),
	}
}

func writeDiffUpdate(report models.DiffReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteDiff,
		Step:    7,
		Total:   cycleSteps,
		Message: fmt.Sprintf("✓ Writing diff file (%d change(s))", len(report)),
		Data:    report,
	}
}
