// Package tone is the optional post-quality phase that rewrites the narrative
// into natural prose. Both capabilities are injected: a run without a scorer
// or rewriter configured skips the phase instead of failing it.
package tone

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/docmodel"
)

// writeBackMinChars is the cell size floor for header write-back. Only
// substantial narrative cells are candidates; labels and short table cells
// are never overwritten.
const writeBackMinChars = 200

// NaturalnessScorer judges how natural a text reads, 0..100 with a letter
// grade.
type NaturalnessScorer interface {
	ScoreNaturalness(ctx context.Context, text string) (float64, string, error)
}

// TextRewriter rewrites text while preserving factual content and the
// bracketed section headers.
type TextRewriter interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

// ToneRound is one scoring attempt in the round loop.
type ToneRound struct {
	Round int     `json:"round"`
	Score float64 `json:"score"`
	Grade string  `json:"grade"`
}

// Result is the phase outcome.
type Result struct {
	Skipped    bool        `json:"skipped"`
	FinalScore float64     `json:"final_score"`
	FinalGrade string      `json:"final_grade"`
	Rounds     []ToneRound `json:"rounds,omitempty"`
	Rewritten  bool        `json:"rewritten"`
}

// Phase runs the tone loop over a generated output directory.
type Phase struct {
	scorer   NaturalnessScorer
	rewriter TextRewriter
	target   float64
	maxRound int
}

// NewPhase builds the phase. Either capability may be nil, which turns Run
// into a recorded skip.
func NewPhase(scorer NaturalnessScorer, rewriter TextRewriter, settings config.Settings) *Phase {
	return &Phase{
		scorer:   scorer,
		rewriter: rewriter,
		target:   settings.ToneTargetScore,
		maxRound: settings.MaxToneRounds,
	}
}

// Run scores, rewrites and re-scores the narrative until the target is
// reached, the round budget runs out, or a rewrite stops improving the score.
// The best text wins: a rewrite that scores worse is discarded.
func (p *Phase) Run(ctx context.Context, outputDir string) (*Result, error) {
	if p.scorer == nil || p.rewriter == nil {
		fmt.Println("ℹ️ 文体調整フェーズは未設定のためスキップ")
		return &Result{Skipped: true}, nil
	}

	planPath := filepath.Join(outputDir, config.ArtifactBusinessPlan)
	doc, err := docmodel.LoadDocument(planPath)
	if err != nil {
		return nil, fmt.Errorf("load narrative for tone phase: %w", err)
	}

	text := collectNarrative(doc)
	if strings.TrimSpace(text) == "" {
		fmt.Println("⚠️ 文体調整の対象となる本文が見つからない。スキップ。")
		return &Result{Skipped: true}, nil
	}

	result := &Result{}
	best := text
	bestScore, bestGrade, err := p.scorer.ScoreNaturalness(ctx, best)
	if err != nil {
		return nil, fmt.Errorf("naturalness scoring: %w", err)
	}

	for round := 1; round <= p.maxRound; round++ {
		result.Rounds = append(result.Rounds, ToneRound{Round: round, Score: bestScore, Grade: bestGrade})
		fmt.Printf("🖋️ 文体ラウンド %d/%d: %.1f点 (%s)\n", round, p.maxRound, bestScore, bestGrade)
		if bestScore >= p.target {
			break
		}

		rewritten, err := p.rewriter.Rewrite(ctx, best)
		if err != nil {
			fmt.Printf("⚠️ リライト失敗、現状の本文を維持: %v\n", err)
			break
		}
		score, grade, err := p.scorer.ScoreNaturalness(ctx, rewritten)
		if err != nil {
			fmt.Printf("⚠️ リライト後の採点に失敗、現状の本文を維持: %v\n", err)
			break
		}
		if score <= bestScore {
			fmt.Printf("⚠️ リライトで改善せず (%.1f → %.1f)、打ち切り\n", bestScore, score)
			break
		}
		best, bestScore, bestGrade = rewritten, score, grade
		result.Rewritten = true
	}

	result.FinalScore = bestScore
	result.FinalGrade = bestGrade

	if result.Rewritten {
		if n := writeBack(doc, best); n == 0 {
			fmt.Println("⚠️ リライト結果を書き戻すセルが見つからない")
		} else if err := doc.Save(planPath); err != nil {
			return result, fmt.Errorf("save rewritten narrative: %w", err)
		}
		txtPath := filepath.Join(outputDir, config.ArtifactRewrittenText)
		if err := os.WriteFile(txtPath, []byte(best), 0o644); err != nil {
			return result, fmt.Errorf("save %s: %w", config.ArtifactRewrittenText, err)
		}
	}
	return result, nil
}

// collectNarrative joins the substantial cells, headers included, in document
// order.
func collectNarrative(doc *docmodel.Document) string {
	var parts []string
	doc.VisitCells(func(c *docmodel.Cell) {
		if len(c.Text) >= writeBackMinChars {
			parts = append(parts, c.Text)
		}
	})
	return strings.Join(parts, "\n\n")
}

// reHeader matches the bracketed section headers the narrative carries.
var reHeader = regexp.MustCompile(`【[^】]+】`)

// writeBack splits the rewritten text on its bracketed headers and replaces
// the matching cells whole. Without any headers the single largest cell takes
// the full text. Returns the number of cells replaced.
func writeBack(doc *docmodel.Document, text string) int {
	headers := reHeader.FindAllStringIndex(text, -1)
	if len(headers) == 0 {
		if cell := doc.LargestCell(); cell != nil {
			cell.Text = text
			return 1
		}
		return 0
	}

	replaced := 0
	for i, span := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		segment := strings.TrimSpace(text[span[0]:end])
		header := text[span[0]:span[1]]
		if doc.ReplaceMatchingCell(header, writeBackMinChars, segment) {
			replaced++
		}
	}
	return replaced
}
