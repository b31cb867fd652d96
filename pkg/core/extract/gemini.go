package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultExtractionModel = "gemini-2.0-flash"

// GeminiClient is the extraction-dedicated Gemini caller. It forces JSON
// output and zero temperature; the client is created per call because
// extraction runs at most once per pipeline run.
type GeminiClient struct {
	modelName string
}

var _ Caller = (*GeminiClient)(nil)

// NewGeminiClient returns a caller for the given model, or the extraction
// default when empty.
func NewGeminiClient(modelName string) *GeminiClient {
	if modelName == "" {
		modelName = defaultExtractionModel
	}
	return &GeminiClient{modelName: modelName}
}

// Call implements Caller.
func (c *GeminiClient) Call(ctx context.Context, userPrompt, systemPrompt string) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %v", err)
	}
	defer client.Close()

	m := client.GenerativeModel(c.modelName)
	m.SetTemperature(0.0)
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx, genai.Text(systemPrompt+"\n\n"+userPrompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in Gemini response")
	}
	return sb.String(), nil
}
