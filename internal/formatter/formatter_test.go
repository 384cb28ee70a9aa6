package formatter

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/mediatrack/internal/models"
	th "github.com/desertthunder/mediatrack/internal/testing"
	"github.com/goccy/go-json"
)

func sampleHistory() *models.ActivityHistory {
	return &models.ActivityHistory{
		User: models.User{UserID: "user123", Name: "Jane Smith", Email: "jane@example.com"},
		Activities: []models.ActivityEntry{
			{
				UserActivity: models.UserActivity{
					ActivityID: "act1",
					UserID:     "user123",
					MediaID:    "media1",
					StatusID:   3,
					Rating:     th.Ptr(4.5),
					Review:     th.Ptr("Great, with a comma"),
					StartedAt:  th.Ptr("2024-01-01"),
					FinishedAt: th.Ptr("2024-01-09"),
				},
				MediaTitle: "Dune",
				StatusName: "Completed",
			},
			{
				UserActivity: models.UserActivity{
					ActivityID: "act2",
					UserID:     "user123",
					MediaID:    "media2",
					StatusID:   1,
				},
				MediaTitle: "Hades",
				StatusName: "Want to Watch/Read/Play",
			},
		},
		Ratings: []models.Rating{
			{UserID: "user123", MediaID: "media1", Score: 4.5, RatedAt: "2024-01-10 12:00:00"},
			{UserID: "user123", MediaID: "unknown", Score: 2, RatedAt: "2024-01-11 12:00:00"},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleHistory())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Activity ID,Media,Status,Rating,Review,Started,Finished") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `act1,Dune,Completed,4.5,"Great, with a comma",2024-01-01,2024-01-09`) {
			t.Errorf("CSV missing or misquoted act1, got: %s", output)
		}
		if !strings.Contains(output, "act2,Hades,Want to Watch/Read/Play,,,,") {
			t.Errorf("CSV should leave empty cells for nil fields, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleHistory())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		for _, want := range []string{
			"# Jane Smith",
			"**Email**: jane@example.com",
			"**Activities**: 2",
			"## Activities",
			"1. Dune - Completed (4.5/5) [2024-01-01 → 2024-01-09]",
			"   > Great, with a comma",
			"2. Hades - Want to Watch/Read/Play\n",
			"## Ratings",
			"- Dune: 4.5 (2024-01-10 12:00:00)",
			"- unknown: 2 (2024-01-11 12:00:00)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without ratings", func(t *testing.T) {
		history := sampleHistory()
		history.Ratings = nil

		data, err := ExportToMarkdown(history)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if strings.Contains(string(data), "## Ratings") {
			t.Errorf("Markdown should omit empty ratings section")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleHistory())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "User: Jane Smith <jane@example.com>") {
			t.Errorf("Text missing user")
		}
		if !strings.Contains(output, "Activities: 2") {
			t.Errorf("Text missing activity count")
		}
		if !strings.Contains(output, "1. Dune - Completed") {
			t.Errorf("Text missing act1")
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(sampleHistory())
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var meta struct {
			User       models.User `json:"user"`
			Activities int         `json:"activities"`
			Ratings    int         `json:"ratings"`
		}
		if err := json.Unmarshal(data, &meta); err != nil {
			t.Fatalf("metadata is not valid JSON: %v", err)
		}
		if meta.User.UserID != "user123" || meta.Activities != 2 || meta.Ratings != 2 {
			t.Errorf("unexpected metadata: %+v", meta)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			t.Chdir(t.TempDir())

			result, err := WriteCSVExport(sampleHistory(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.ActivitiesFile != "user123_activities.csv" {
				t.Errorf("Expected 'user123_activities.csv', got '%s'", result.ActivitiesFile)
			}
			if result.MetadataFile != "user123_metadata.json" {
				t.Errorf("Expected 'user123_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.ActivitiesFile)
			th.AssertFileExists(t, result.MetadataFile)

			if !strings.Contains(th.MustReadFile(t, result.MetadataFile), "Jane Smith") {
				t.Errorf("Metadata JSON missing user name")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			dir := t.TempDir()
			base := filepath.Join(dir, "custom")

			result, err := WriteCSVExport(sampleHistory(), base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.ActivitiesFile != base+"_activities.csv" {
				t.Errorf("unexpected activities file %s", result.ActivitiesFile)
			}
			th.AssertFileExists(t, result.ActivitiesFile)
		})

		t.Run("UnwritableDirectory", func(t *testing.T) {
			_, err := WriteCSVExport(sampleHistory(), filepath.Join(t.TempDir(), "missing", "base"))
			if err == nil {
				t.Error("expected error writing into a missing directory")
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "jane")

		path, err := WriteMarkdownExport(sampleHistory(), dir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		if path != filepath.Join(dir, "README.md") {
			t.Errorf("unexpected path %s", path)
		}
		if !strings.HasPrefix(th.MustReadFile(t, path), "# Jane Smith") {
			t.Errorf("README should start with the user name")
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		t.Chdir(t.TempDir())

		path, err := WriteTextExport(sampleHistory(), "")
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if path != "user123_activities.txt" {
			t.Errorf("unexpected default path %s", path)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")

		if _, err := WriteJSONExport(sampleHistory(), path); err != nil {
			t.Fatalf("WriteJSONExport failed: %v", err)
		}

		var got models.ActivityHistory
		if err := json.Unmarshal([]byte(th.MustReadFile(t, path)), &got); err != nil {
			t.Fatalf("export is not valid JSON: %v", err)
		}
		if len(got.Activities) != 2 || got.Activities[0].MediaTitle != "Dune" {
			t.Errorf("unexpected activities: %+v", got.Activities)
		}
	})

	t.Run("WriteManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export_manifest.json")
		m := &Manifest{
			Format:     "csv",
			Total:      2,
			Successful: 1,
			Failed:     1,
			Entries: []ManifestEntry{
				{UserID: "a", UserName: "A", Success: true, Files: []string{"a.csv"}},
				{UserID: "b", Error: "boom", Files: []string{}},
			},
		}

		if err := WriteManifest(m, path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}
		if m.GeneratedAt == "" {
			t.Error("expected GeneratedAt to be stamped")
		}

		content := th.MustReadFile(t, path)
		if !strings.Contains(content, `"error": "boom"`) {
			t.Errorf("manifest missing entry error, got: %s", content)
		}
	})

	t.Run("WriteManifest to missing directory", func(t *testing.T) {
		err := WriteManifest(&Manifest{}, filepath.Join(t.TempDir(), "nope", "m.json"))
		if err == nil {
			t.Error("expected error")
		}
	})
}
