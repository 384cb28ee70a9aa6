package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/mediatrack/internal/formatter"
	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/shared"
	"golang.org/x/time/rate"
)

// Formats lists the export formats accepted by [Exporter.BulkExport].
var Formats = []string{"json", "csv", "markdown", "txt"}

// HistorySource loads a user's full activity history. Implemented by repositories.Store.
type HistorySource interface {
	History(ctx context.Context, userID string) (*models.ActivityHistory, error)
}

// BulkExportOpts contains configuration for bulk history exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: mediatrack_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // History loads per second (default: 20)
}

// ExportJob is one loaded history waiting to be written.
type ExportJob struct {
	Index   int
	UserID  string
	History *models.ActivityHistory
}

// UserExportResult is the outcome of exporting one user.
type UserExportResult struct {
	Index    int
	UserID   string
	UserName string
	Success  bool
	Files    []string
	Error    error
}

// BulkExportResult summarizes a [Exporter.BulkExport] run. Results keep the order of the requested IDs.
type BulkExportResult struct {
	Format            string
	TotalUsers        int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []UserExportResult
}

// Exporter writes user activity histories to disk.
type Exporter struct {
	source HistorySource
}

func NewExporter(source HistorySource) *Exporter {
	return &Exporter{source: source}
}

// BulkExport exports multiple user histories concurrently with rate limiting and progress tracking.
//
// A single producer loads histories through the rate limiter and feeds a pool of writer goroutines.
// A user that fails to load or write is recorded as a failure without stopping the others.
// Cancelling ctx stops scheduling new users; the manifest still describes whatever finished.
func (e *Exporter) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: history source not initialized", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = "json"
	}
	if !slices.Contains(Formats, opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("mediatrack_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		TotalUsers:      len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]UserExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan ExportJob, len(ids))
	results := make(chan UserExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		sendProgress(prog, fetchingHistoryUpdate(0, len(ids)))

		for i, userID := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			history, err := e.source.History(ctx, userID)
			if err != nil {
				results <- UserExportResult{
					Index:    i,
					UserID:   userID,
					UserName: fmt.Sprintf("Unknown (%s)", userID),
					Error:    fmt.Errorf("failed to load history: %w", err),
				}
				continue
			}

			jobs <- ExportJob{Index: i, UserID: userID, History: history}
			sendProgress(prog, exportingHistoryUpdate(i+1, len(ids), history.User.Name))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.UserName, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.UserName, res.Error))
		}
	}

	slices.SortFunc(result.Results, func(a, b UserExportResult) int { return a.Index - b.Index })

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result.Manifest(), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes histories from the jobs channel until it is closed or ctx is cancelled.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan ExportJob,
	results chan<- UserExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- exportSingleHistory(job, opts)
	}
}

// exportSingleHistory writes one history in the requested format.
func exportSingleHistory(j ExportJob, opts BulkExportOpts) UserExportResult {
	result := UserExportResult{
		Index:    j.Index,
		UserID:   j.UserID,
		UserName: j.History.User.Name,
		Files:    []string{},
	}

	switch opts.Format {
	case "csv":
		csvRes, err := formatter.WriteCSVExport(j.History, filepath.Join(opts.OutputDir, j.UserID))
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.ActivitiesFile, csvRes.MetadataFile}

	case "markdown":
		path, err := formatter.WriteMarkdownExport(j.History, filepath.Join(opts.OutputDir, j.UserID))
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	case "txt":
		path, err := formatter.WriteTextExport(j.History, filepath.Join(opts.OutputDir, j.UserID+"_activities.txt"))
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	default:
		path, err := formatter.WriteJSONExport(j.History, filepath.Join(opts.OutputDir, j.UserID+".json"))
		if err != nil {
			result.Error = err
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}

// Manifest converts the result to its serializable summary.
func (r *BulkExportResult) Manifest() *formatter.Manifest {
	m := &formatter.Manifest{
		Format:     r.Format,
		Total:      r.TotalUsers,
		Successful: r.SuccessfulExports,
		Failed:     r.FailedExports,
		Entries:    make([]formatter.ManifestEntry, 0, len(r.Results)),
	}

	for _, res := range r.Results {
		entry := formatter.ManifestEntry{
			UserID:   res.UserID,
			UserName: res.UserName,
			Success:  res.Success,
			Files:    res.Files,
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Entries = append(m.Entries, entry)
	}
	return m
}
