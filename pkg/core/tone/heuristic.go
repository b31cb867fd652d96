package tone

import (
	"context"
	"math"
	"strings"
)

// HeuristicScorer judges naturalness without a model call. It targets the
// tells of machine-written Japanese business prose: connector stuffing,
// metronome sentence lengths, symbol-heavy layout and stock filler phrases.
type HeuristicScorer struct{}

var _ NaturalnessScorer = (*HeuristicScorer)(nil)

// Connectors that read fine in isolation but mechanical in bulk.
var connectors = []string{
	"さらに", "また、", "加えて", "一方で", "これにより", "そのため", "したがって", "なお、",
}

// Filler the rewrite should eliminate entirely.
var stockPhrases = []string{
	"言うまでもなく", "と言えるでしょう", "ではないでしょうか", "に他なりません",
	"重要なのは", "鍵となります", "革新的な", "シームレスな",
}

// ScoreNaturalness returns 0..100 and a letter grade. It never fails.
func (s *HeuristicScorer) ScoreNaturalness(_ context.Context, text string) (float64, string, error) {
	sentences := splitSentences(text)
	score := 100.0

	if len(sentences) > 0 {
		hits := 0
		for _, c := range connectors {
			hits += strings.Count(text, c)
		}
		density := float64(hits) / float64(len(sentences))
		if density > 0.3 {
			score -= math.Min(25, (density-0.3)*60)
		}
	}

	if cv := lengthVariation(sentences); len(sentences) >= 5 && cv < 0.25 {
		// Human prose varies; near-constant sentence length reads generated.
		score -= (0.25 - cv) * 80
	}

	if n := len(text); n > 0 {
		symbols := strings.Count(text, "・") + strings.Count(text, "■") + strings.Count(text, "●") + strings.Count(text, "※")
		density := float64(symbols) / float64(len([]rune(text))) * 100
		if density > 1.0 {
			score -= math.Min(15, (density-1.0)*10)
		}
	}

	for _, p := range stockPhrases {
		score -= float64(strings.Count(text, p)) * 3
	}

	score = math.Max(0, math.Min(100, score))
	return score, gradeOf(score), nil
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range strings.Split(text, "。") {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// lengthVariation is the coefficient of variation of sentence lengths.
func lengthVariation(sentences []string) float64 {
	if len(sentences) < 2 {
		return 1
	}
	mean := 0.0
	for _, s := range sentences {
		mean += float64(len([]rune(s)))
	}
	mean /= float64(len(sentences))
	if mean == 0 {
		return 1
	}
	variance := 0.0
	for _, s := range sentences {
		d := float64(len([]rune(s))) - mean
		variance += d * d
	}
	variance /= float64(len(sentences))
	return math.Sqrt(variance) / mean
}

func gradeOf(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 75:
		return "B"
	case score >= 60:
		return "C"
	default:
		return "D"
	}
}
