package domain

import (
	"context"
	"iter"
)

// Summarizer turns a prompt into natural-language text.
// Implemented by the LLM client; consumers fall back to templates on error.
type Summarizer interface {
	// Complete returns the whole response text
	Complete(ctx context.Context, prompt, system string) (string, error)

	// Stream yields text fragments in order. The sequence ends after the
	// last fragment or after the first error.
	Stream(ctx context.Context, prompt, system string) iter.Seq2[string, error]
}
