// Package llm abstracts the external language-model services the pipeline
// calls for financial-statement field extraction and narrative rewriting.
// Calls are synchronous; callers decide how a failure degrades.
package llm

import "context"

// Provider is the interface all model backends implement. Options carry
// backend-specific knobs (model override, JSON mode, api key).
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}
