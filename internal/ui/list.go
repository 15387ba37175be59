package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/plbackup/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = lineItem{}
	_ list.Item = runItem{}
)

// playlistItem wraps [Playlist] to implement [list.Item].
type playlistItem struct {
	playlist Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := i.playlist.ID
	if i.playlist.Store != nil && i.playlist.Store.Exists(models.SlotCurrent) {
		desc += " • snapshot stored"
	} else {
		desc += " • never backed up"
	}
	return desc
}

// lineItem is one line of a stored snapshot or report.
type lineItem struct {
	line string
}

func (i lineItem) FilterValue() string { return i.line }
func (i lineItem) Title() string       { return i.line }
func (i lineItem) Description() string { return "" }

// runItem wraps [models.CycleRun] to implement [list.Item].
type runItem struct {
	run *models.CycleRun
}

func (i runItem) FilterValue() string { return string(i.run.Status()) }
func (i runItem) Title() string {
	return fmt.Sprintf("#%d %s • %s", i.run.Sequence(), i.run.StartedAt().Format("2006-01-02 15:04:05"), i.run.Status())
}
func (i runItem) Description() string {
	if i.run.Status() == models.StatusFatal {
		return i.run.ErrorMessage()
	}
	return fmt.Sprintf("%d titles (%+d) • %d change(s)", i.run.FetchedCount(), i.run.LengthDelta(), i.run.DiffCount())
}
