// Package organize wires the run pipeline: extract previews, build the
// prompt, ask the model for a plan, gate it on user review, execute the
// approved commands. The run log observes every stage.
package organize

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tidydir/tidydir/internal/config"
	"github.com/tidydir/tidydir/internal/execute"
	"github.com/tidydir/tidydir/internal/extract"
	"github.com/tidydir/tidydir/internal/generate"
	"github.com/tidydir/tidydir/internal/index"
	"github.com/tidydir/tidydir/internal/plan"
	"github.com/tidydir/tidydir/internal/prompt"
	"github.com/tidydir/tidydir/internal/review"
	"github.com/tidydir/tidydir/internal/runlog"
)

type Options struct {
	Root      string
	Query     string
	Depth     int
	DryRun    bool
	KeepGoing bool
}

// Outcome describes how the run ended. A rejected review is a normal
// outcome, not an error.
type Outcome struct {
	Plan    *plan.Plan
	State   review.State
	Results []execute.Result
}

// Run executes one organize pipeline. The planner and prompter are
// injected so tests can fake the model and the user.
func Run(ctx context.Context, cfg *config.Config, opts Options, planner generate.Planner, prompter review.Prompter, logger *runlog.Logger) (*Outcome, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid directory %s: %w", opts.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid directory %s: not a directory", opts.Root)
	}

	depth := opts.Depth
	if depth < 1 {
		depth = cfg.Depth
	}

	rec := runlog.Record{
		Time:  time.Now(),
		Root:  opts.Root,
		Query: opts.Query,
		Depth: depth,
	}
	defer func() { logger.Append(rec) }()

	extractor := extract.New(os.DirFS(opts.Root), cfg.PreviewBytes)
	res, err := extractor.Extract(depth)
	if err != nil {
		rec.Err = err.Error()
		return nil, err
	}
	rec.Entries = res.Entries
	if res.Warnings != nil {
		for _, w := range res.Warnings.Errors {
			rec.Warnings = append(rec.Warnings, w.Error())
			log.Warn("extraction", "err", w)
		}
	}

	// A dry run promises to leave the root untouched, index included.
	if !opts.DryRun {
		refreshIndex(opts.Root, res.Entries)
	}

	promptText := prompt.Build(opts.Query, opts.Root, res.Entries)
	rec.Prompt = promptText

	p, err := planner.Plan(ctx, promptText)
	if err != nil {
		rec.Err = err.Error()
		return nil, err
	}
	rec.RawResponse = p.RawResponse
	rec.Commands = p.Commands

	if err := p.Validate(cfg.AllowedPrograms); err != nil {
		genErr := &generate.GenerationError{Reason: "plan violates the command contract", Err: err}
		rec.Err = genErr.Error()
		return nil, genErr
	}

	outcome := &Outcome{Plan: p}
	if p.Empty() {
		log.Info("model proposed no changes")
		return outcome, nil
	}

	state, err := review.Review(p, prompter)
	if err != nil {
		rec.Err = err.Error()
		return nil, fmt.Errorf("review: %w", err)
	}
	rec.Review = state
	outcome.State = state

	if state != review.StateApproved {
		log.Info("plan rejected, nothing executed")
		return outcome, nil
	}

	policy := cfg.FailurePolicy
	if opts.KeepGoing {
		policy = config.PolicyContinue
	}
	executor := &execute.Executor{
		Dir:    opts.Root,
		Policy: policy,
		DryRun: opts.DryRun,
		Out:    os.Stdout,
	}

	results, execErr := executor.Run(ctx, p)
	rec.Results = results
	outcome.Results = results
	if execErr != nil {
		rec.Err = execErr.Error()
		return outcome, execErr
	}
	return outcome, nil
}

// refreshIndex keeps the offline content index current as a side
// effect of organizing. Index problems never fail the run.
func refreshIndex(root string, entries []extract.FileEntry) {
	store, err := index.Open(root)
	if err != nil {
		log.Warn("content index unavailable", "err", err)
		return
	}
	defer store.Close()

	if err := store.Put(entries); err != nil {
		log.Warn("content index refresh failed", "err", err)
	}
}
