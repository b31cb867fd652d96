package tone

import (
	"context"
	"fmt"

	"shoryoku/pkg/core/llm"
	"shoryoku/pkg/core/prompt"
	"shoryoku/pkg/core/utils"
)

// ProviderRewriter rewrites the narrative through an LLM provider using the
// registered tone prompt. It satisfies TextRewriter for any backend.
type ProviderRewriter struct {
	provider llm.Provider
}

var _ TextRewriter = (*ProviderRewriter)(nil)

// NewProviderRewriter wraps a provider. Returns nil for a nil provider so the
// phase's skip logic applies.
func NewProviderRewriter(provider llm.Provider) *ProviderRewriter {
	if provider == nil {
		return nil
	}
	return &ProviderRewriter{provider: provider}
}

// Rewrite sends the narrative with the tone system prompt and cleans the
// response of markdown wrapping.
func (r *ProviderRewriter) Rewrite(ctx context.Context, text string) (string, error) {
	systemPrompt, err := prompt.Get().GetSystemPrompt(prompt.IDToneRewrite)
	if err != nil {
		return "", fmt.Errorf("tone prompt: %w", err)
	}
	out, err := r.provider.GenerateResponse(ctx, text, systemPrompt, map[string]interface{}{
		"temperature": 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("rewrite call: %w", err)
	}
	cleaned := utils.CleanText(out)
	if cleaned == "" {
		return "", fmt.Errorf("rewrite returned empty text")
	}
	return cleaned, nil
}
