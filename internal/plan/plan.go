// Package plan defines the organization plan proposed by the model and
// the contract it must satisfy before it reaches the review gate.
package plan

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Command is a single argv vector. Commands are never joined into a
// shell string; the executor passes Program and Args to exec directly.
type Command struct {
	Program string   `json:"program"`
	Args    []string `json:"args"`
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Program
	}
	return c.Program + " " + strings.Join(c.Args, " ")
}

// Plan is the ordered command list proposed by the model for one run,
// together with the raw response it was parsed from (kept for the run
// log).
type Plan struct {
	Commands    []Command
	RawResponse string
}

func (p *Plan) Empty() bool {
	return len(p.Commands) == 0
}

var shortFlag = regexp.MustCompile(`^-[a-zA-Z]+$`)

// Validate checks every command against the allowed program list and
// confines every path argument to the organize root. Arguments are
// interpreted relative to the root, which is also the executor's
// working directory. An empty plan is valid.
func (p *Plan) Validate(allowedPrograms []string) error {
	allowed := make(map[string]bool, len(allowedPrograms))
	for _, prog := range allowedPrograms {
		allowed[prog] = true
	}

	for i, cmd := range p.Commands {
		if cmd.Program == "" {
			return fmt.Errorf("command %d: empty program", i+1)
		}
		if !allowed[cmd.Program] {
			return fmt.Errorf("command %d: program %q is not allowed (allowed: %s)",
				i+1, cmd.Program, strings.Join(allowedPrograms, ", "))
		}
		for _, arg := range cmd.Args {
			if shortFlag.MatchString(arg) {
				continue
			}
			if err := validatePath(arg); err != nil {
				return fmt.Errorf("command %d (%s): %w", i+1, cmd, err)
			}
		}
	}
	return nil
}

// validatePath rejects absolute paths and anything that escapes the
// root after cleaning.
func validatePath(arg string) error {
	if arg == "" {
		return fmt.Errorf("empty argument")
	}
	if filepath.IsAbs(arg) {
		return fmt.Errorf("absolute path %q is not allowed", arg)
	}
	clean := filepath.ToSlash(filepath.Clean(arg))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path %q escapes the target directory", arg)
	}
	return nil
}
