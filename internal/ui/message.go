package ui

import (
	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/tasks"
)

type usersFetchedMsg struct {
	users []models.User
	err   error
}

type historyFetchedMsg struct {
	history *models.ActivityHistory
	err     error
}

type progressUpdateMsg tasks.ProgressUpdate

type exportCompleteMsg struct {
	result *tasks.BulkExportResult
	err    error
}
