// Package execute runs an approved plan. Commands are argv vectors
// passed straight to the OS. No shell is involved, so nothing in the
// model's output can be interpolated or expanded.
package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/tidydir/tidydir/internal/config"
	"github.com/tidydir/tidydir/internal/plan"
)

// Result is the outcome of one command.
type Result struct {
	Command  plan.Command
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (r Result) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// ExecutionError reports which commands ran and which never did. Under
// the stop policy everything after the first failure is skipped.
type ExecutionError struct {
	Failed  []plan.Command
	Skipped []plan.Command
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%d command(s) failed", len(e.Failed))
	if len(e.Failed) > 0 {
		msg += fmt.Sprintf(" (first: %s)", e.Failed[0])
	}
	if len(e.Skipped) > 0 {
		msg += fmt.Sprintf("; %d command(s) were not run", len(e.Skipped))
	}
	return msg
}

type Executor struct {
	// Dir is the working directory for every command: the organize
	// root, so the plan's relative paths resolve inside it.
	Dir string
	// Policy is config.PolicyStop or config.PolicyContinue.
	Policy string
	// DryRun prints each command to Out instead of executing it.
	DryRun bool
	Out    io.Writer
}

// Run executes the plan in order. It returns the results of every
// command that was attempted, plus an *ExecutionError when any failed.
func (e *Executor) Run(ctx context.Context, p *plan.Plan) ([]Result, error) {
	var results []Result
	var failed []plan.Command

	for i, cmd := range p.Commands {
		if e.DryRun {
			fmt.Fprintf(e.Out, "dry-run: %s\n", cmd)
			continue
		}

		res := e.runOne(ctx, cmd)
		results = append(results, res)

		if res.Failed() {
			failed = append(failed, cmd)
			if e.Policy == config.PolicyStop {
				return results, &ExecutionError{
					Failed:  failed,
					Skipped: append([]plan.Command(nil), p.Commands[i+1:]...),
				}
			}
		}
	}

	if len(failed) > 0 {
		return results, &ExecutionError{Failed: failed}
	}
	return results, nil
}

func (e *Executor) runOne(ctx context.Context, c plan.Command) Result {
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = e.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := Result{Command: c}
	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// Start failure: program missing, permission denied.
			res.ExitCode = -1
			res.Err = err
		}
		return res
	}

	res.ExitCode = cmd.ProcessState.ExitCode()
	return res
}
