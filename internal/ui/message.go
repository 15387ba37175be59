package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgReportLoaded MsgKind = iota
	MsgProgressUpdate
	MsgBackupComplete
)

type reportLoaded struct {
	tab   Tab
	lines []string
	runs  []*models.CycleRun
	err   error
}

type backupComplete struct {
	result *models.CycleResult
	err    error
}

// reportLoadedMsg is the constructor for [MsgReportLoaded]
func reportLoadedMsg(tab Tab, lines []string, runs []*models.CycleRun, err error) Msg {
	return Msg{kind: MsgReportLoaded, data: reportLoaded{tab: tab, lines: lines, runs: runs, err: err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// backupCompleteMsg is the constructor for [MsgBackupComplete]
func backupCompleteMsg(result *models.CycleResult, err error) Msg {
	return Msg{kind: MsgBackupComplete, data: backupComplete{result: result, err: err}}
}
