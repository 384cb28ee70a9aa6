// package formatter renders user activity histories to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/mediatrack/internal/models"
	"github.com/desertthunder/mediatrack/internal/shared"
)

// ExportToCSV converts an activity history to CSV with columns: Activity ID, Media, Status, Rating, Review, Started, Finished
func ExportToCSV(history *models.ActivityHistory) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Activity ID", "Media", "Status", "Rating", "Review", "Started", "Finished"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range history.Activities {
		record := []string{
			a.ActivityID,
			a.MediaTitle,
			a.StatusName,
			formatScore(a.Rating),
			deref(a.Review),
			deref(a.StartedAt),
			deref(a.FinishedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an activity history to a Markdown document with activity and rating sections
func ExportToMarkdown(history *models.ActivityHistory) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", history.User.Name)
	fmt.Fprintf(&buf, "**Email**: %s\n", history.User.Email)
	fmt.Fprintf(&buf, "**Activities**: %d\n", len(history.Activities))
	fmt.Fprintf(&buf, "**Ratings**: %d\n\n", len(history.Ratings))

	buf.WriteString("## Activities\n\n")
	for i, a := range history.Activities {
		fmt.Fprintf(&buf, "%d. %s - %s%s%s\n", i+1, a.MediaTitle, a.StatusName, ratingPart(a.Rating), datePart(a.StartedAt, a.FinishedAt))
		if a.Review != nil && *a.Review != "" {
			fmt.Fprintf(&buf, "   > %s\n", *a.Review)
		}
	}

	if len(history.Ratings) > 0 {
		titles := mediaTitles(history)

		buf.WriteString("\n## Ratings\n\n")
		for _, r := range history.Ratings {
			fmt.Fprintf(&buf, "- %s: %s (%s)\n", titleOr(titles, r.MediaID), strconv.FormatFloat(r.Score, 'f', -1, 64), r.RatedAt)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts an activity history to plain text
func ExportToText(history *models.ActivityHistory) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "User: %s <%s>\n", history.User.Name, history.User.Email)
	fmt.Fprintf(&buf, "Activities: %d\n\n", len(history.Activities))

	for i, a := range history.Activities {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, a.MediaTitle, a.StatusName)
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of the user and summary counts (without activities)
func ToMetadataJSON(history *models.ActivityHistory) ([]byte, error) {
	return shared.MarshalJSON(struct {
		User       models.User `json:"user"`
		Activities int         `json:"activities"`
		Ratings    int         `json:"ratings"`
	}{history.User, len(history.Activities), len(history.Ratings)}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ActivitiesFile string
	MetadataFile   string
}

// WriteCSVExport exports a history to CSV format with accompanying metadata JSON file.
//
// Defaults to the user ID as the base filename & creates {base}_activities.csv and {base}_metadata.json
func WriteCSVExport(history *models.ActivityHistory, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = history.User.UserID
	}

	csvData, err := ExportToCSV(history)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	activitiesFile := baseFilepath + "_activities.csv"
	if err := os.WriteFile(activitiesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(history)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ActivitiesFile: activitiesFile,
		MetadataFile:   metadataFile,
	}, nil
}

// WriteMarkdownExport exports a history to {dir}/README.md, creating the directory.
//
// Directory name defaults to the user ID.
func WriteMarkdownExport(history *models.ActivityHistory, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = history.User.UserID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(history)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports a history to plain text format.
//
// Defaults to {user_id}_activities.txt as the filename.
func WriteTextExport(history *models.ActivityHistory, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_activities.txt", history.User.UserID)
	}

	textData, err := ExportToText(history)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes the full history as indented JSON.
func WriteJSONExport(history *models.ActivityHistory, path string) (string, error) {
	if path == "" {
		path = history.User.UserID + ".json"
	}

	data, err := shared.MarshalJSON(history, true)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}

// ManifestEntry is one exported user in a [Manifest].
type ManifestEntry struct {
	UserID   string   `json:"user_id"`
	UserName string   `json:"user_name"`
	Success  bool     `json:"success"`
	Files    []string `json:"files"`
	Error    string   `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	Format      string          `json:"format"`
	GeneratedAt string          `json:"generated_at"`
	Total       int             `json:"total"`
	Successful  int             `json:"successful"`
	Failed      int             `json:"failed"`
	Entries     []ManifestEntry `json:"entries"`
}

// WriteManifest stamps m with the current time and writes it as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	m.GeneratedAt = shared.FormatTimestamp(time.Now())

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatScore(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func ratingPart(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf(" (%s/5)", formatScore(f))
}

func datePart(started, finished *string) string {
	switch {
	case started != nil && finished != nil:
		return fmt.Sprintf(" [%s → %s]", *started, *finished)
	case started != nil:
		return fmt.Sprintf(" [since %s]", *started)
	case finished != nil:
		return fmt.Sprintf(" [finished %s]", *finished)
	default:
		return ""
	}
}

// mediaTitles maps media IDs to the titles known from the activity log.
func mediaTitles(history *models.ActivityHistory) map[string]string {
	titles := make(map[string]string, len(history.Activities))
	for _, a := range history.Activities {
		titles[a.MediaID] = a.MediaTitle
	}
	return titles
}

func titleOr(titles map[string]string, id string) string {
	if t, ok := titles[id]; ok {
		return t
	}
	return id
}
