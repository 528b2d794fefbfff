package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidydir/tidydir/internal/plan"
)

// ParseResponse isolates the plan JSON from a model reply that may be
// wrapped in commentary or markdown fences. The canonical shape is
// {"commands": [{"program": ..., "args": [...]}]}; an array of plain
// command strings is also accepted and tokenized, since models fall
// back to it despite the schema.
func ParseResponse(raw string) (*plan.Plan, error) {
	// Commentary before the payload can contain braces of its own, so
	// each candidate object is tried in turn until one decodes to a
	// commands envelope.
	rest := raw
	var firstErr error
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			break
		}
		rest = rest[start:]

		var envelope struct {
			Commands json.RawMessage `json:"commands"`
		}
		// A Decoder stops after the first complete value, so trailing
		// commentary after the JSON object is ignored.
		err := json.NewDecoder(strings.NewReader(rest)).Decode(&envelope)
		if err == nil && len(envelope.Commands) > 0 {
			commands, err := decodeCommands(envelope.Commands)
			if err != nil {
				return nil, err
			}
			return &plan.Plan{Commands: commands, RawResponse: raw}, nil
		}
		if err == nil {
			err = fmt.Errorf(`object has no "commands" field`)
		}
		if firstErr == nil {
			firstErr = err
		}
		rest = rest[1:]
	}

	if firstErr == nil {
		return nil, &GenerationError{Reason: "no JSON object in model response"}
	}
	return nil, &GenerationError{Reason: "model response has no command list", Err: firstErr}
}

func decodeCommands(raw json.RawMessage) ([]plan.Command, error) {
	var structured []plan.Command
	if err := json.Unmarshal(raw, &structured); err == nil {
		for i, cmd := range structured {
			if cmd.Program == "" {
				return nil, &GenerationError{Reason: fmt.Sprintf("command %d has no program", i+1)}
			}
		}
		return structured, nil
	}

	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, &GenerationError{Reason: `"commands" is neither a command list nor a string list`, Err: err}
	}

	var commands []plan.Command
	for _, line := range lines {
		parsed, err := parseCommandLine(line)
		if err != nil {
			return nil, &GenerationError{Reason: fmt.Sprintf("cannot parse command %q", line), Err: err}
		}
		commands = append(commands, parsed...)
	}
	return commands, nil
}

// parseCommandLine tokenizes one shell-style command string into argv
// vectors. "&&" chains split into separate commands; no other shell
// syntax is honored.
func parseCommandLine(line string) ([]plan.Command, error) {
	tokens, err := tokenize(line)
	if err != nil {
		return nil, err
	}

	var commands []plan.Command
	var current []string
	flush := func() error {
		if len(current) == 0 {
			return fmt.Errorf("empty command segment")
		}
		commands = append(commands, plan.Command{Program: current[0], Args: current[1:]})
		current = nil
		return nil
	}

	for _, tok := range tokens {
		if tok == "&&" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		current = append(current, tok)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return commands, nil
}

// tokenize splits a command line on whitespace, honoring single and
// double quotes and backslash escapes outside single quotes.
func tokenize(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false
	var quote byte

	flush := func() {
		if inToken {
			tokens = append(tokens, current.String())
			current.Reset()
			inToken = false
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == '\'':
			if c == '\'' {
				quote = 0
			} else {
				current.WriteByte(c)
			}
		case quote == '"':
			if c == '"' {
				quote = 0
			} else if c == '\\' && i+1 < len(line) {
				i++
				current.WriteByte(line[i])
			} else {
				current.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
			inToken = true
		case c == '\\' && i+1 < len(line):
			i++
			current.WriteByte(line[i])
			inToken = true
		case c == ' ' || c == '\t' || c == '\n':
			flush()
		default:
			current.WriteByte(c)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	flush()

	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return tokens, nil
}
