package generate

import (
	"errors"
	"testing"

	"github.com/tidydir/tidydir/internal/plan"
)

func TestParseResponseStructured(t *testing.T) {
	raw := `{"commands": [{"program": "mkdir", "args": ["invoices"]}, {"program": "mv", "args": ["invoice.txt", "invoices/"]}]}`

	p, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse() error: %v", err)
	}
	if len(p.Commands) != 2 {
		t.Fatalf("got %d commands, want 2", len(p.Commands))
	}
	want := plan.Command{Program: "mkdir", Args: []string{"invoices"}}
	if p.Commands[0].Program != want.Program || p.Commands[0].Args[0] != want.Args[0] {
		t.Errorf("first command = %+v", p.Commands[0])
	}
	if p.RawResponse != raw {
		t.Error("raw response not preserved")
	}
}

func TestParseResponseToleratesCommentary(t *testing.T) {
	raw := "Sure! Here is the plan you asked for:\n```json\n" +
		`{"commands": [{"program": "mkdir", "args": ["sorted"]}]}` +
		"\n```\nLet me know if you need anything else."

	p, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse() error: %v", err)
	}
	if len(p.Commands) != 1 || p.Commands[0].Program != "mkdir" {
		t.Errorf("commands = %+v", p.Commands)
	}
}

func TestParseResponseBraceBeforePayload(t *testing.T) {
	raw := `Use {this} plan: {"commands": [{"program": "mkdir", "args": ["invoices"]}]}`

	p, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse() error: %v", err)
	}
	if len(p.Commands) != 1 || p.Commands[0].Program != "mkdir" {
		t.Errorf("commands = %+v", p.Commands)
	}
}

func TestParseResponseStringCommands(t *testing.T) {
	raw := `{"commands": ["mkdir invoices && mv invoice.txt invoices/", "mv 'my file.txt' archive/"]}`

	p, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse() error: %v", err)
	}
	if len(p.Commands) != 3 {
		t.Fatalf("got %d commands, want 3: %+v", len(p.Commands), p.Commands)
	}
	if p.Commands[0].Program != "mkdir" || p.Commands[0].Args[0] != "invoices" {
		t.Errorf("command 1 = %+v", p.Commands[0])
	}
	if p.Commands[1].Program != "mv" || len(p.Commands[1].Args) != 2 {
		t.Errorf("command 2 = %+v", p.Commands[1])
	}
	if p.Commands[2].Args[0] != "my file.txt" {
		t.Errorf("quoted argument = %q, want \"my file.txt\"", p.Commands[2].Args[0])
	}
}

func TestParseResponseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no json", "I cannot help with that."},
		{"broken json", `{"commands": [truncat`},
		{"no commands field", `{"plan": []}`},
		{"wrong commands type", `{"commands": 42}`},
		{"command without program", `{"commands": [{"args": ["x"]}]}`},
		{"empty command string", `{"commands": [""]}`},
		{"unterminated quote", `{"commands": ["mv 'oops"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.raw)
			if err == nil {
				t.Fatal("ParseResponse() should fail")
			}
			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Errorf("error %T is not a GenerationError", err)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{`mv a b`, []string{"mv", "a", "b"}},
		{`mv "a b" c`, []string{"mv", "a b", "c"}},
		{`mv 'a b' c`, []string{"mv", "a b", "c"}},
		{`mv a\ b c`, []string{"mv", "a b", "c"}},
		{`mkdir   spaced`, []string{"mkdir", "spaced"}},
	}

	for _, tt := range tests {
		got, err := tokenize(tt.line)
		if err != nil {
			t.Errorf("tokenize(%q) error: %v", tt.line, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("tokenize(%q) = %v, want %v", tt.line, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("tokenize(%q)[%d] = %q, want %q", tt.line, i, got[i], tt.want[i])
			}
		}
	}
}
