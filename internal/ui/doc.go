// Package ui implements an interactive terminal report browser using bubbletea's Elm architecture.
//
// The TUI provides a small workflow over the tracked playlists:
//  1. [PlaylistListView] : Browse tracked playlists
//  2. [ReportView] : Page through the stored snapshot, diff, missing and history tabs of one playlist
//  3. [ConfirmView] : Confirm a backup cycle
//  4. [BackupView] : Monitor real-time progress updates
//  5. [ResultView] : Display the cycle outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the backup engine, providing non-blocking status reporting during cycles.
//
// Keyboard navigation uses vim-style bindings (j/k, h/l, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
