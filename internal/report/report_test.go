package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunSaveRoundTrip(t *testing.T) {
	run := NewRun()
	run.AddProcessed("topic")
	run.AddProcessed("topic")
	run.AddProcessed("user")
	run.AddSkipped("style.css")
	run.AddFailure("index.cfm?page=forum&forumID=77", errors.New("bad topic table"))
	run.Finish()

	path := filepath.Join(t.TempDir(), "report.json")
	if err := run.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	var loaded Run
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Failed to unmarshal report: %v", err)
	}

	if loaded.Processed["topic"] != 2 || loaded.Processed["user"] != 1 {
		t.Errorf("Processed = %v, want topic=2 user=1", loaded.Processed)
	}
	if len(loaded.Skipped) != 1 || loaded.Skipped[0] != "style.css" {
		t.Errorf("Skipped = %v, want [style.css]", loaded.Skipped)
	}
	if loaded.Failed["index.cfm?page=forum&forumID=77"] != "bad topic table" {
		t.Errorf("Failed = %v, want the recorded message", loaded.Failed)
	}
	if loaded.FinishedAt.Before(loaded.StartedAt) {
		t.Error("FinishedAt is before StartedAt")
	}
}

func TestSummarize(t *testing.T) {
	run := NewRun()
	run.AddProcessed("forum")
	run.AddSkipped("banner.gif")
	run.AddFailure("index.cfm?page=topic&topicID=5", errors.New("unparseable"))
	run.Finish()

	var buf bytes.Buffer
	run.Summarize(&buf)
	out := buf.String()

	for _, want := range []string{
		"forum",
		"1 files",
		"banner.gif",
		"index.cfm?page=topic&topicID=5: unparseable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
