// Package prompt assembles the planning prompt sent to the model. The
// builder is pure: identical inputs always produce byte-identical text.
package prompt

import (
	"fmt"
	"strings"

	"github.com/tidydir/tidydir/internal/extract"
)

const instructions = `You are a file organization assistant. Based on the query and the file
previews above, propose filesystem commands that organize these files.

Respond with JSON of the form
{"commands": [{"program": "mkdir", "args": ["invoices"]}, ...]}.
Only use the programs mkdir, mv, cp and rmdir. All paths must be
relative to the directory above. Propose an empty command list if
nothing needs to change.`

// Build produces the documented prompt layout:
//
//	Query: <query>
//	Directory: <root>
//	Files:
//	- <path> (<kind>, <size> bytes): <preview>
//
// followed by the fixed response instructions. Previews are flattened
// to single lines so each file occupies exactly one line.
func Build(query string, root string, entries []extract.FileEntry) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Query: %s\n", query)
	fmt.Fprintf(&sb, "Directory: %s\n", root)

	if len(entries) == 0 {
		sb.WriteString("Files: none\n")
	} else {
		sb.WriteString("Files:\n")
		for _, entry := range entries {
			fmt.Fprintf(&sb, "- %s (%s, %d bytes): %s\n",
				entry.Path, entry.Kind, entry.Size, flatten(entry.Preview))
		}
	}

	sb.WriteByte('\n')
	sb.WriteString(instructions)
	return sb.String()
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
