package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidydir/tidydir/internal/execute"
	"github.com/tidydir/tidydir/internal/extract"
	"github.com/tidydir/tidydir/internal/plan"
	"github.com/tidydir/tidydir/internal/review"
)

func sampleRecord() Record {
	return Record{
		Time:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Root:  "/tmp/docs",
		Query: "group invoices",
		Depth: 1,
		Entries: []extract.FileEntry{
			{Path: "invoice.txt", Kind: extract.KindText, Size: 10, Preview: "invoice #1"},
		},
		Warnings:    []string{"bad.pdf: corrupt PDF"},
		Prompt:      "Query: group invoices",
		RawResponse: `{"commands": []}`,
		Commands: []plan.Command{
			{Program: "mkdir", Args: []string{"invoices"}},
			{Program: "mv", Args: []string{"invoice.txt", "invoices/"}},
		},
		Review: review.StateApproved,
		Results: []execute.Result{
			{Command: plan.Command{Program: "mkdir", Args: []string{"invoices"}}, ExitCode: 0},
			{Command: plan.Command{Program: "mv", Args: []string{"invoice.txt", "invoices/"}}, ExitCode: 0, Stderr: ""},
		},
	}
}

func TestAppendWritesFullRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidydir.log")
	logger := New(path)

	logger.Append(sampleRecord())

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"==== tidydir run 2025-06-01T12:00:00Z ====",
		"directory: /tmp/docs",
		"query: group invoices",
		"depth: 1",
		"invoice.txt (txt, 10 bytes)",
		"warning: bad.pdf: corrupt PDF",
		"Query: group invoices",
		`{"commands": []}`,
		"plan (2 commands)",
		"review: approved",
		"result 1: mkdir invoices (exit 0)",
		"result 2: mv invoice.txt invoices/ (exit 0)",
		"==== end ====",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q\nlog:\n%s", want, content)
		}
	}
}

func TestAppendIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidydir.log")
	logger := New(path)

	logger.Append(sampleRecord())
	logger.Append(sampleRecord())

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "==== end ===="); got != 2 {
		t.Errorf("found %d records, want 2", got)
	}
}

func TestAppendSwallowsWriteFailure(t *testing.T) {
	logger := New(filepath.Join(t.TempDir(), "no-such-dir", "tidydir.log"))
	// Must not panic or return; failure is a warning only.
	logger.Append(sampleRecord())
}
