// Package report tracks what happened during an import run: how many files
// of each kind were processed, which files matched no extractor, and which
// files failed. The loader fills one Run in; the import command prints its
// summary and can save it as JSON for later inspection.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// Run is the record of one import invocation.
type Run struct {
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Processed  map[string]int    `json:"processed"`
	Skipped    []string          `json:"skipped,omitempty"`
	Failed     map[string]string `json:"failed,omitempty"`
}

// NewRun starts a report for an import beginning now.
func NewRun() *Run {
	return &Run{
		StartedAt: time.Now(),
		Processed: make(map[string]int),
		Failed:    make(map[string]string),
	}
}

// AddProcessed counts one successfully handled file of the given kind.
func (r *Run) AddProcessed(kind string) {
	r.Processed[kind]++
}

// AddSkipped records a file no extractor handles.
func (r *Run) AddSkipped(filename string) {
	r.Skipped = append(r.Skipped, filename)
}

// AddFailure records a file that was classified but failed to load.
func (r *Run) AddFailure(filename string, err error) {
	r.Failed[filename] = err.Error()
}

// Finish stamps the end of the run.
func (r *Run) Finish() {
	r.FinishedAt = time.Now()
}

// Save writes the report as indented JSON.
func (r *Run) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// Summarize prints a human-readable recap of the run.
func (r *Run) Summarize(w io.Writer) {
	fmt.Fprintf(w, "\nImport finished in %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))

	kinds := make([]string, 0, len(r.Processed))
	for kind := range r.Processed {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "  %-14s %d files\n", kind, r.Processed[kind])
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped %d files with no processor:\n", len(r.Skipped))
		for _, name := range r.Skipped {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	if len(r.Failed) > 0 {
		fmt.Fprintf(w, "Failed %d files:\n", len(r.Failed))
		names := make([]string, 0, len(r.Failed))
		for name := range r.Failed {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %s\n", name, r.Failed[name])
		}
	}
}
