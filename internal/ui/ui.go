package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	UserListView ViewState = iota
	ActivityListView
	ConfirmView
	ExportView
	ResultView
)

// Source supplies the data shown in the browser. Implemented by repositories.Store.
type Source interface {
	tasks.HistorySource
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Options configures exports started from the browser.
type Options struct {
	Format    string
	OutputDir string
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	source       Source
	exporter     *tasks.Exporter
	opts         Options
	width        int
	height       int
	userList     list.Model
	activityList list.Model
	usersReady   bool
	history      *models.ActivityHistory
	progressChan chan tasks.ProgressUpdate
	doneChan     chan exportCompleteMsg
	progress     tasks.ProgressUpdate
	result       *tasks.BulkExportResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model reading from source.
func NewModel(ctx context.Context, source Source, opts Options) *Model {
	if opts.Format == "" {
		opts.Format = "markdown"
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "exports"
	}
	return &Model{
		ctx:      ctx,
		view:     UserListView,
		source:   source,
		exporter: tasks.NewExporter(source),
		opts:     opts,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by loading users.
func (m *Model) Init() tea.Cmd {
	return m.fetchUsers()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.usersReady {
			m.userList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.history != nil {
			m.activityList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case UserListView:
			return m.handleUserListKeys(msg)
		case ActivityListView:
			return m.handleActivityListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ExportView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case usersFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, len(msg.users))
		for i, u := range msg.users {
			items[i] = userItem{user: u}
		}
		m.userList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.userList.Title = "Users"
		m.userList.SetSize(m.width-4, m.height-8)
		m.usersReady = true
		return m, nil

	case historyFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = UserListView
			return m, nil
		}
		m.history = msg.history
		items := make([]list.Item, len(msg.history.Activities))
		for i, a := range msg.history.Activities {
			items[i] = activityItem{entry: a}
		}
		m.activityList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.activityList.Title = fmt.Sprintf("Activities of %s", msg.history.User.Name)
		m.activityList.SetSize(m.width-4, m.height-8)
		m.view = ActivityListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, waitForExport(m.progressChan, m.doneChan)

	case exportCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		m.doneChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.error.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case UserListView:
		return m.renderUserList()
	case ActivityListView:
		return m.renderActivityList()
	case ConfirmView:
		return m.renderConfirm()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleUserListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.usersReady {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.userList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.userList, cmd = m.userList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if u, ok := m.userList.SelectedItem().(userItem); ok {
			return m, m.fetchHistory(u.user.UserID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.userList, cmd = m.userList.Update(msg)
	return m, cmd
}

func (m *Model) handleActivityListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = UserListView
		m.history = nil
		return m, nil
	case key.Matches(msg, m.keys.export):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.activityList, cmd = m.activityList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = ActivityListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = ExportView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startExport()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = UserListView
		m.history = nil
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == UserListView && m.usersReady:
		m.userList, cmd = m.userList.Update(msg)
	case m.view == ActivityListView && m.history != nil:
		m.activityList, cmd = m.activityList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchUsers() tea.Cmd {
	return func() tea.Msg {
		users, err := m.source.ListUsers(m.ctx)
		return usersFetchedMsg{users: users, err: err}
	}
}

func (m *Model) fetchHistory(userID string) tea.Cmd {
	return func() tea.Msg {
		history, err := m.source.History(m.ctx, userID)
		return historyFetchedMsg{history: history, err: err}
	}
}

// startExport runs the export in the background. The result arrives on doneChan.
func (m *Model) startExport() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.doneChan = make(chan exportCompleteMsg, 1)

	prog, done := m.progressChan, m.doneChan
	userID := m.history.User.UserID
	opts := tasks.BulkExportOpts{Format: m.opts.Format, OutputDir: m.opts.OutputDir, NumWorkers: 1}

	go func() {
		result, err := m.exporter.BulkExport(m.ctx, prog, []string{userID}, opts)
		done <- exportCompleteMsg{result: result, err: err}
	}()

	return waitForExport(prog, done)
}

func waitForExport(prog <-chan tasks.ProgressUpdate, done <-chan exportCompleteMsg) tea.Cmd {
	return func() tea.Msg {
		select {
		case update := <-prog:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) renderUserList() string {
	if !m.usersReady {
		return styles.muted.Render("Loading users...")
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.userList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderActivityList() string {
	helpKeys := []key.Binding{m.keys.export, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	if len(m.history.Activities) == 0 {
		return fmt.Sprintf("%s\n\n%s\n\n%s",
			styles.title.Render(m.activityList.Title), styles.muted.Render("No activities recorded."), helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.activityList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Export history of '%s'?", m.history.User.Name))
	info := fmt.Sprintf("\nActivities: %d\nRatings: %d\nFormat: %s\nDirectory: %s\n",
		len(m.history.Activities), len(m.history.Ratings), m.opts.Format, m.opts.OutputDir)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting History")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchHistory:
		phase = "Loading history..."
	case tasks.ExportHistory:
		phase = fmt.Sprintf("Writing files (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return styles.error.Render(fmt.Sprintf("Export failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil || len(m.result.Results) == 0 {
		return styles.error.Render("No result available") + "\n\n" + helpView
	}

	res := m.result.Results[0]
	if !res.Success {
		return styles.warning.Render(fmt.Sprintf("Export of %s failed: %v", res.UserName, res.Error)) + "\n\n" + helpView
	}

	out := styles.success.Render(fmt.Sprintf("✓ Exported %s", res.UserName)) + "\n"
	for _, f := range res.Files {
		out += fmt.Sprintf("\n  • %s", f)
	}
	out += fmt.Sprintf("\n  • %s", m.result.ManifestPath)
	return fmt.Sprintf("%s\n\n%s", out, helpView)
}
