package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchHistory Phase = iota
	ExportHistory
)

func (p Phase) String() string {
	switch p {
	case FetchHistory:
		return "fetch_history"
	case ExportHistory:
		return "export_history"
	default:
		return ""
	}
}

// sendProgress delivers update without blocking. Updates are dropped when nobody is listening.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchingHistoryUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading %d user histories...", total),
	}
}

func exportingHistoryUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportHistory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportHistory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
