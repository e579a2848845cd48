package diagnostics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	ReportFile       = "diagnostics.json"
	MissingImageFile = "missing-images.csv"
)

// Report is the serialized outcome of one run.
type Report struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Submissions int       `json:"submissions"`
	Entries     []Entry   `json:"entries"`
}

// WriteReport writes diagnostics.json and missing-images.csv into dir,
// replacing the previous run's files.
func WriteReport(dir string, report Report) error {
	const op = "diagnostics.WriteReport"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if report.Entries == nil {
		report.Entries = []Entry{}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(filepath.Join(dir, ReportFile), data, 0o644); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writeMissingImages(filepath.Join(dir, MissingImageFile), report.Entries); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadReport loads the report written by WriteReport.
func ReadReport(dir string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, ReportFile))
	if err != nil {
		return nil, err
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("diagnostics.ReadReport: %w", err)
	}
	return &report, nil
}

func writeMissingImages(path string, entries []Entry) error {
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SubmissionID < sorted[j].SubmissionID })

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "name", "reason", "extension", "link"}); err != nil {
		return err
	}
	for _, e := range sorted {
		if err := w.Write([]string{e.SubmissionID, e.Name, e.Reason, e.Extension, e.Link}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
