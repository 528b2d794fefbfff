// Package generate turns a planning prompt into an organization plan by
// calling the Gemini API. Every failure mode of the remote call, from a
// transport error to an unparseable reply, surfaces as a GenerationError
// and no commands are proposed.
package generate

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/tidydir/tidydir/internal/config"
	"github.com/tidydir/tidydir/internal/plan"
)

// GenerationError is fatal to a run: the pipeline ends without touching
// the filesystem.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Planner abstracts plan generation so the pipeline and its tests can
// inject fakes.
type Planner interface {
	Plan(ctx context.Context, prompt string) (*plan.Plan, error)
}

// Gemini is the production Planner backed by google.golang.org/genai.
type Gemini struct {
	cfg *config.Config
}

func NewGemini(cfg *config.Config) *Gemini {
	return &Gemini{cfg: cfg}
}

// planSchema constrains the model to the exact JSON shape ParseResponse
// expects, instead of scraping commands out of free text.
var planSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"commands": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"program": {Type: genai.TypeString},
					"args": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"program"},
			},
		},
	},
	Required: []string{"commands"},
}

func (g *Gemini) Plan(ctx context.Context, promptText string) (*plan.Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &GenerationError{Reason: "create client", Err: err}
	}

	resp, err := client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(promptText), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   planSchema,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &GenerationError{Reason: fmt.Sprintf("remote call timed out after %s", g.cfg.Timeout), Err: err}
		}
		return nil, &GenerationError{Reason: "remote call", Err: err}
	}

	raw := resp.Text()
	if raw == "" {
		return nil, &GenerationError{Reason: "empty model response"}
	}

	return ParseResponse(raw)
}
