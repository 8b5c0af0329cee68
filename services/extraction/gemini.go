package extraction

import (
	"context"
	"fmt"
)

// TextGenerator is the text-generation service the model-backed extractor
// delegates to.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GeminiExtractor asks a language model for a tagged line and parses it.
type GeminiExtractor struct {
	gen TextGenerator
}

func NewGeminiExtractor(gen TextGenerator) *GeminiExtractor {
	return &GeminiExtractor{gen: gen}
}

// Extract returns an empty result with a non-nil error when the model call
// fails; unparseable replies give an empty result and no error.
func (g *GeminiExtractor) Extract(ctx context.Context, req Request) (Result, error) {
	field := FieldFor(req.State.Step)
	res := Result{Field: field}
	tag, ok := TagFor(field)
	if !ok {
		return res, nil
	}

	reply, err := g.gen.GenerateContent(ctx, buildPrompt(req, tag))
	if err != nil {
		return res, fmt.Errorf("extract %s: %w", field, err)
	}

	parsed := ParseTagged(reply)
	res.Raw = parsed.Text
	if v, ok := parsed.Get(tag); ok {
		res.Value = normalize(field, v)
	}
	return res, nil
}
