// Package ui implements an interactive terminal browser using bubbletea's Elm architecture.
//
// The TUI walks through the tracking database in a few views:
//  1. [UserListView] : Browse users
//  2. [ActivityListView] : Inspect a user's activity log
//  3. [ConfirmView] : Confirm exporting that history
//  4. [ExportView] : Monitor progress of the export
//  5. [ResultView] : Show the written files
//
// The [Model] implements bubbletea's Init/Update/View pattern. Exports run through the tasks package
// and report progress over a channel, so the UI never blocks on disk writes.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, e, y/n, q) with contextual help from charmbracelet/bubbles/help.
package ui
