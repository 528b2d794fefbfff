// Package review is the single safety checkpoint between the model's
// proposed plan and real filesystem mutation.
package review

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/tidydir/tidydir/internal/plan"
)

type State string

const (
	StateAwaiting State = "awaiting_confirmation"
	StateApproved State = "approved"
	StateRejected State = "rejected"
)

// Transition resolves a user reply from the awaiting state. Exactly the
// word "yes" (case-insensitive, surrounding whitespace ignored)
// approves; every other input rejects.
func Transition(input string) State {
	if strings.EqualFold(strings.TrimSpace(input), "yes") {
		return StateApproved
	}
	return StateRejected
}

// Prompter presents a plan and collects the user's raw reply.
type Prompter interface {
	Confirm(p *plan.Plan) (string, error)
}

// Review presents the plan through the prompter and resolves the final
// state. A prompter error rejects: no reply, no execution.
func Review(p *plan.Plan, prompter Prompter) (State, error) {
	input, err := prompter.Confirm(p)
	if err != nil {
		return StateRejected, err
	}
	return Transition(input), nil
}

// ReaderPrompter lists the plan on out and reads one reply line from
// in. Used for piped stdin and in tests.
type ReaderPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (r *ReaderPrompter) Confirm(p *plan.Plan) (string, error) {
	fmt.Fprintln(r.Out, "Proposed commands:")
	for i, cmd := range p.Commands {
		fmt.Fprintf(r.Out, "  %d. %s\n", i+1, cmd)
	}
	fmt.Fprint(r.Out, "Run these commands? (yes/no): ")

	scanner := bufio.NewScanner(r.In)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return scanner.Text(), nil
}

// HuhPrompter shows an interactive confirmation form.
type HuhPrompter struct{}

func (HuhPrompter) Confirm(p *plan.Plan) (string, error) {
	var lines []string
	for i, cmd := range p.Commands {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, cmd))
	}

	approved := false
	form := huh.NewConfirm().
		Title("Run these commands?").
		Description(strings.Join(lines, "\n")).
		Affirmative("Run").
		Negative("Cancel").
		Value(&approved)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "no", nil
		}
		return "", err
	}
	if approved {
		return "yes", nil
	}
	return "no", nil
}

// StaticPrompter always answers with a fixed reply. Backs the --yes
// flag.
type StaticPrompter struct {
	Reply string
}

func (s StaticPrompter) Confirm(*plan.Plan) (string, error) {
	return s.Reply, nil
}
