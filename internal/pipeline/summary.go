package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/surveyforge/surveyforge/internal/fingerprint"
)

// DatasetStatus is the terminal state of one dataset in a run.
type DatasetStatus string

const (
	// StatusUploaded means the dataset was published and verified.
	StatusUploaded DatasetStatus = "uploaded"
	// StatusUnchanged means the content matched the stored fingerprint.
	StatusUnchanged DatasetStatus = "unchanged"
	// StatusSkipped means a dry run detected a change but did not publish.
	StatusSkipped DatasetStatus = "skipped"
	// StatusFailed means the dataset could not be fully merged and was not
	// published.
	StatusFailed DatasetStatus = "failed"
)

// DatasetOutcome records how one dataset fared.
type DatasetOutcome struct {
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Status      DatasetStatus      `json:"status"`
	Detection   fingerprint.Status `json:"detection,omitempty"`
	Rows        int                `json:"rows"`
	Fingerprint string             `json:"fingerprint,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	Diagnostics []string           `json:"diagnostics,omitempty"`
}

// Summary is the machine-consumable record of a whole run. The orchestrator
// renders a parallel human-readable view from the same data.
type Summary struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	DurationMS int64            `json:"duration_ms"`
	DryRun     bool             `json:"dry_run"`
	Processed  int              `json:"processed"`
	Changed    int              `json:"changed"`
	Unchanged  int              `json:"unchanged"`
	Failed     int              `json:"failed"`
	Uploaded   int              `json:"uploaded"`
	Halted     string           `json:"halted,omitempty"`
	Datasets   []DatasetOutcome `json:"datasets"`
}

func (s *Summary) record(o DatasetOutcome) {
	s.Datasets = append(s.Datasets, o)
	s.Processed++
	switch o.Status {
	case StatusFailed:
		s.Failed++
	case StatusUnchanged:
		s.Unchanged++
	case StatusUploaded:
		s.Changed++
		s.Uploaded++
	case StatusSkipped:
		s.Changed++
	}
}

// WriteJSON writes the summary artifact to path.
func (s *Summary) WriteJSON(path string) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}

// Render writes the human-readable run summary.
func (s *Summary) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Dataset", "Category", "Status", "Detection", "Rows", "Reason"})
	for _, d := range s.Datasets {
		t.AppendRow(table.Row{d.Name, d.Category, d.Status, d.Detection, d.Rows, d.Reason})
	}
	t.Render()

	fmt.Fprintf(w, "\nRun %s: %d processed, %d changed, %d unchanged, %d failed, %d uploaded (%.1fs)\n",
		s.RunID, s.Processed, s.Changed, s.Unchanged, s.Failed, s.Uploaded,
		float64(s.DurationMS)/1000.0)
	if s.Halted != "" {
		fmt.Fprintf(w, "Run halted early: %s\n", s.Halted)
	}
}
