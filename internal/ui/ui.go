package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/repositories"
	"github.com/desertthunder/plbackup/internal/shared"
	"github.com/desertthunder/plbackup/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	ReportView
	ConfirmView
	BackupView
	ResultView
)

// Tab is one page of the report view.
type Tab int

const (
	SnapshotTab Tab = iota
	DiffTab
	MissingTab
	HistoryTab
)

var tabs = []Tab{SnapshotTab, DiffTab, MissingTab, HistoryTab}

func (t Tab) String() string {
	switch t {
	case SnapshotTab:
		return "Snapshot"
	case DiffTab:
		return "Diff"
	case MissingTab:
		return "Missing"
	case HistoryTab:
		return "History"
	default:
		return ""
	}
}

// BackupFunc runs one backup cycle for a playlist.
type BackupFunc func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.CycleResult, error)

// HistoryLister lists recorded runs (repositories.RunRepository).
type HistoryLister interface {
	List(criteria map[string]any) ([]*models.CycleRun, error)
}

// Playlist is a tracked playlist the browser can open.
type Playlist struct {
	ID     string
	Name   string
	Store  repositories.SnapshotStore
	Backup BackupFunc // optional; nil disables backups from the UI
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	playlists    []Playlist
	history      HistoryLister
	width        int
	height       int
	playlistList list.Model
	reportList   list.Model
	selected     *Playlist
	tab          Tab
	progressChan chan tasks.ProgressUpdate
	waitDone     chan backupComplete
	progress     tasks.ProgressUpdate
	result       *models.CycleResult
	resultErr    error
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model over the given playlists. history may be nil.
func NewModel(ctx context.Context, playlists []Playlist, history HistoryLister) *Model {
	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		items[i] = playlistItem{playlist: pl}
	}
	playlistList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	playlistList.Title = "Tracked Playlists"

	reportList := list.New(nil, compactDelegate(), 0, 0)
	reportList.SetShowStatusBar(false)

	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		playlists:    playlists,
		history:      history,
		playlistList: playlistList,
		reportList:   reportList,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func compactDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetSpacing(0)
	return d
}

// Init has nothing to load up front; reports are read when a playlist is opened.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.reportList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case ReportView:
			return m.handleReportKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case BackupView:
			if key.Matches(msg, m.keys.quit) && msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgReportLoaded:
		data := msg.data.(reportLoaded)
		if data.tab != m.tab {
			return m, nil
		}
		m.err = nil
		items := []list.Item{}
		switch {
		case errors.Is(data.err, shared.ErrNotFound):
			m.reportList.Title = fmt.Sprintf("%s • nothing stored yet", data.tab)
		case data.err != nil:
			m.err = data.err
		case data.tab == HistoryTab:
			for _, run := range data.runs {
				items = append(items, runItem{run: run})
			}
			m.reportList.Title = fmt.Sprintf("%s • %d run(s)", data.tab, len(data.runs))
		default:
			for _, line := range data.lines {
				items = append(items, lineItem{line: line})
			}
			m.reportList.Title = fmt.Sprintf("%s • %d line(s)", data.tab, len(data.lines))
		}
		m.reportList.SetDelegate(m.delegateFor(data.tab))
		return m, m.reportList.SetItems(items)

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgBackupComplete:
		data := msg.data.(backupComplete)
		m.result = data.result
		m.resultErr = data.err
		m.progressChan = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

func (m *Model) delegateFor(tab Tab) list.DefaultDelegate {
	if tab == HistoryTab {
		return list.NewDefaultDelegate()
	}
	return compactDelegate()
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case ReportView:
		return m.renderReport()
	case ConfirmView:
		return m.renderConfirm()
	case BackupView:
		return m.renderBackup()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.selectedPlaylist(); ok {
			m.selected = &pl
			m.view = ReportView
			return m, m.openTab(SnapshotTab)
		}
	case key.Matches(msg, m.keys.backup):
		if pl, ok := m.selectedPlaylist(); ok && pl.Backup != nil {
			m.selected = &pl
			m.view = ConfirmView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleReportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.next):
		return m, m.openTab(tabs[(int(m.tab)+1)%len(tabs)])
	case key.Matches(msg, m.keys.prev):
		return m, m.openTab(tabs[(int(m.tab)+len(tabs)-1)%len(tabs)])
	case key.Matches(msg, m.keys.backup):
		if m.selected != nil && m.selected.Backup != nil {
			m.view = ConfirmView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.reportList, cmd = m.reportList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = BackupView
		return m, m.startBackup()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = PlaylistListView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		m.view = ReportView
		return m, m.openTab(DiffTab)
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		m.result = nil
		m.resultErr = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case ReportView:
		m.reportList, cmd = m.reportList.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectedPlaylist() (Playlist, bool) {
	item, ok := m.playlistList.SelectedItem().(playlistItem)
	if !ok {
		return Playlist{}, false
	}
	return item.playlist, true
}

// openTab switches to tab and loads its content.
func (m *Model) openTab(tab Tab) tea.Cmd {
	m.tab = tab
	m.reportList.Title = fmt.Sprintf("%s • loading...", tab)
	pl := m.selected
	history := m.history

	return func() tea.Msg {
		if pl == nil {
			return reportLoadedMsg(tab, nil, nil, fmt.Errorf("%w: no playlist selected", shared.ErrMissingArgument))
		}

		switch tab {
		case HistoryTab:
			if history == nil {
				return reportLoadedMsg(tab, nil, nil, fmt.Errorf("%w: run history is disabled", shared.ErrNotFound))
			}
			runs, err := history.List(map[string]any{"playlist_id": pl.ID, "limit": 100})
			return reportLoadedMsg(tab, nil, runs, err)
		default:
			lines, err := pl.Store.ReadLines(slotFor(tab))
			return reportLoadedMsg(tab, lines, nil, err)
		}
	}
}

func slotFor(tab Tab) models.Slot {
	switch tab {
	case DiffTab:
		return models.SlotDiff
	case MissingTab:
		return models.SlotMissing
	default:
		return models.SlotCurrent
	}
}

func (m *Model) startBackup() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.progress = tasks.ProgressUpdate{Message: "Starting backup..."}
	progress := m.progressChan
	backup := m.selected.Backup
	ctx := m.ctx

	done := make(chan backupComplete, 1)
	go func() {
		result, err := backup(ctx, progress)
		done <- backupComplete{result: result, err: err}
		close(progress)
	}()

	m.waitDone = done
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	done := m.waitDone
	return func() tea.Msg {
		if progress != nil {
			if update, ok := <-progress; ok {
				return progressUpdateMsg(update)
			}
		}
		outcome := <-done
		return backupCompleteMsg(outcome.result, outcome.err)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.backup, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTabs() string {
	rendered := make([]string, len(tabs))
	for i, tab := range tabs {
		if tab == m.tab {
			rendered[i] = styles.activeTab.Render(tab.String())
		} else {
			rendered[i] = styles.tab.Render(tab.String())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderReport() string {
	name := ""
	if m.selected != nil {
		name = m.selected.Name
	}
	header := styles.Title(name)

	body := m.reportList.View()
	if m.err != nil {
		body = styles.Err(fmt.Sprintf("Error: %v", m.err))
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.prev, m.keys.back, m.keys.quit}
	if m.selected != nil && m.selected.Backup != nil {
		helpKeys = append(helpKeys, m.keys.backup)
	}
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, m.renderTabs(), body, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := styles.Title(fmt.Sprintf("Back up '%s' now?", m.selected.Name))
	info := fmt.Sprintf("\nPlaylist: %s\nThe stored snapshot, diff and backups will be rotated.\n", m.selected.ID)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderBackup() string {
	title := styles.Title(fmt.Sprintf("Backing up '%s'", m.selected.Name))

	step := "Starting..."
	if m.progress.Total > 0 {
		step = fmt.Sprintf("Step %d/%d • %s", m.progress.Step, m.progress.Total, m.progress.Phase)
	}
	return fmt.Sprintf("%s\n\n%s\n%s", title, step, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.resultErr != nil {
		var b strings.Builder
		b.WriteString(styles.Err(fmt.Sprintf("✗ Backup failed: %v", m.resultErr)))
		if m.result != nil && len(m.result.Missing) > 0 {
			b.WriteString("\n\n" + styles.Warn(fmt.Sprintf("%d title(s) missing:", len(m.result.Missing))))
			for _, rec := range m.result.Missing {
				fmt.Fprintf(&b, "\n  • %d. %s", rec.Position, rec.Title)
			}
		}
		return fmt.Sprintf("%s\n\n%s", b.String(), helpView)
	}

	if m.result == nil {
		return styles.Err("No result available") + "\n\n" + helpView
	}

	title := styles.OK("✓ Backup Complete!")
	info := fmt.Sprintf("\nFetched: %d titles\nStored: %d titles\nAdded: %d\nChanged: %d",
		m.result.Fetched, m.result.Baseline, m.result.LengthDelta, len(m.result.Diff))
	if m.result.NoBaseline {
		info += "\n" + styles.Help("First snapshot for this playlist.")
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
