// Package runlog appends one human-readable record per run to a plain
// text file. Logging is a side effect only: write failures are warned
// about and swallowed, never surfaced to the pipeline.
package runlog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tidydir/tidydir/internal/execute"
	"github.com/tidydir/tidydir/internal/extract"
	"github.com/tidydir/tidydir/internal/plan"
	"github.com/tidydir/tidydir/internal/review"
)

// Record is everything worth keeping about one run.
type Record struct {
	Time        time.Time
	Root        string
	Query       string
	Depth       int
	Entries     []extract.FileEntry
	Warnings    []string
	Prompt      string
	RawResponse string
	Commands    []plan.Command
	Review      review.State
	Results     []execute.Result
	Err         string
}

type Logger struct {
	Path string
}

func New(path string) *Logger {
	return &Logger{Path: path}
}

// Append formats the record and appends it to the log file.
func (l *Logger) Append(rec Record) {
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		log.Warn("could not open run log", "path", l.Path, "err", err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(format(rec)); err != nil {
		log.Warn("could not write run log", "path", l.Path, "err", err)
	}
}

func format(rec Record) string {
	var sb strings.Builder

	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	fmt.Fprintf(&sb, "==== tidydir run %s ====\n", ts.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "directory: %s\n", rec.Root)
	fmt.Fprintf(&sb, "query: %s\n", rec.Query)
	fmt.Fprintf(&sb, "depth: %d\n", rec.Depth)

	fmt.Fprintf(&sb, "files (%d):\n", len(rec.Entries))
	for _, entry := range rec.Entries {
		fmt.Fprintf(&sb, "  %s (%s, %d bytes)\n", entry.Path, entry.Kind, entry.Size)
	}
	for _, w := range rec.Warnings {
		fmt.Fprintf(&sb, "warning: %s\n", w)
	}

	if rec.Prompt != "" {
		sb.WriteString("prompt:\n")
		writeIndented(&sb, rec.Prompt)
	}
	if rec.RawResponse != "" {
		sb.WriteString("response:\n")
		writeIndented(&sb, rec.RawResponse)
	}

	if len(rec.Commands) > 0 {
		fmt.Fprintf(&sb, "plan (%d commands):\n", len(rec.Commands))
		for i, cmd := range rec.Commands {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, cmd)
		}
	}
	if rec.Review != "" {
		fmt.Fprintf(&sb, "review: %s\n", rec.Review)
	}

	for i, res := range rec.Results {
		fmt.Fprintf(&sb, "result %d: %s (exit %d)\n", i+1, res.Command, res.ExitCode)
		if res.Stdout != "" {
			sb.WriteString("  stdout:\n")
			writeIndented(&sb, res.Stdout)
		}
		if res.Stderr != "" {
			sb.WriteString("  stderr:\n")
			writeIndented(&sb, res.Stderr)
		}
		if res.Err != nil {
			fmt.Fprintf(&sb, "  error: %v\n", res.Err)
		}
	}

	if rec.Err != "" {
		fmt.Fprintf(&sb, "error: %s\n", rec.Err)
	}
	sb.WriteString("==== end ====\n\n")
	return sb.String()
}

func writeIndented(sb *strings.Builder, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}
