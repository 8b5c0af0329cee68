package extraction

import "context"

// PatternExtractor extracts fields with keyword and regex heuristics. It never
// calls out and never fails.
type PatternExtractor struct{}

func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

func (p *PatternExtractor) Extract(_ context.Context, req Request) (Result, error) {
	field := FieldFor(req.State.Step)
	return Result{Field: field, Value: normalize(field, req.Text)}, nil
}
