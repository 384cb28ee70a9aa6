package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mediatrack/internal/models"
)

var (
	_ list.Item = userItem{}
	_ list.Item = activityItem{}
)

// userItem wraps [models.User] to implement [list.Item].
type userItem struct {
	user models.User
}

func (i userItem) FilterValue() string { return i.user.Name }
func (i userItem) Title() string       { return i.user.Name }
func (i userItem) Description() string { return i.user.Email }

// activityItem wraps [models.ActivityEntry] to implement [list.Item].
type activityItem struct {
	entry models.ActivityEntry
}

func (i activityItem) FilterValue() string { return i.entry.MediaTitle }
func (i activityItem) Title() string       { return i.entry.MediaTitle }
func (i activityItem) Description() string {
	desc := i.entry.StatusName
	if i.entry.Rating != nil {
		desc = fmt.Sprintf("%s • %s/5", desc, strconv.FormatFloat(*i.entry.Rating, 'f', -1, 64))
	}
	if i.entry.FinishedAt != nil {
		desc = fmt.Sprintf("%s • finished %s", desc, *i.entry.FinishedAt)
	}
	return desc
}
