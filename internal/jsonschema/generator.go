// Package jsonschema provides JSON Schema generation for tidydir
// configuration files.
package jsonschema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/tidydir/tidydir/internal/config"
)

// Generate creates a JSON Schema from the Config type for editor
// autocomplete and validation of tidydir.yml files.
func Generate() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Use yaml struct tags for property names instead of Go field names.
		FieldNameTag: "yaml",
	}

	s := r.Reflect(&config.Config{})

	s.ID = "https://raw.githubusercontent.com/tidydir/tidydir/main/schema.json"
	s.Title = "tidydir"
	s.Description = "Schema for tidydir YAML configuration files (tidydir.yml)"

	return json.MarshalIndent(s, "", "  ")
}
