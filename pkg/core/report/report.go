// Package report renders the run outcome for humans (console, Markdown) and
// machines (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shoryoku/pkg/core/autofix"
	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/score"
	"shoryoku/pkg/core/tone"
	"shoryoku/pkg/core/utils"
)

const banner = "============================================================"

// Summary bundles everything one run produced.
type Summary struct {
	Applicant string          `json:"applicant"`
	Run       *autofix.Result `json:"run"`
	Tone      *tone.Result    `json:"tone,omitempty"`
}

// PrintConsole writes the score breakdown to stdout.
func PrintConsole(s *Summary) {
	fmt.Println("\n" + banner)
	fmt.Printf("📊 採点結果: %s\n", s.Applicant)
	fmt.Println(banner)
	fmt.Printf("総合スコア: %.1f / 100  (終了理由: %s)\n", s.Run.FinalScore, reasonLabel(s.Run.Reason))

	if r := s.Run.Report; r != nil {
		fmt.Println(strings.Repeat("-", 60))
		for _, c := range r.Categories {
			fmt.Printf("%-14s %6.1f / %4.0f\n", c.Name, c.Score, c.Max)
		}
		if len(r.Issues) > 0 {
			fmt.Println(strings.Repeat("-", 60))
			for _, is := range r.Issues {
				fmt.Printf("⚠️ [%s] %s\n", is.Category, is.Detail)
			}
		}
	}

	req := s.Run.Requirements
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("付加価値額CAGR:     %5.2f%%  %s\n", req.AddedValueCAGR*100, okMark(req.AddedValueOK))
	fmt.Printf("一人当たり給与CAGR: %5.2f%%  %s\n", req.SalaryPerCapitaCAGR*100, okMark(req.SalaryPerCapitaOK))
	for _, w := range s.Run.Warnings {
		fmt.Printf("⚠️ %s\n", w)
	}

	if s.Tone != nil && !s.Tone.Skipped {
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("🖋️ 文体スコア: %.1f (%s評価、%dラウンド)\n", s.Tone.FinalScore, s.Tone.FinalGrade, len(s.Tone.Rounds))
	}
	fmt.Println(banner)
}

// WriteMarkdownReport renders the summary as score_report.md in the output
// directory.
func WriteMarkdownReport(outputDir string, s *Summary) error {
	md := renderMarkdown(s)
	if !utils.ValidateMarkdown(md) {
		return fmt.Errorf("score report failed markdown validation")
	}
	return os.WriteFile(filepath.Join(outputDir, config.ArtifactScoreReport), []byte(md), 0o644)
}

// RenderJSON serializes the summary for machine consumption.
func RenderJSON(s *Summary) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func renderMarkdown(s *Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 採点レポート: %s\n\n", s.Applicant)
	fmt.Fprintf(&b, "作成日: %s\n\n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(&b, "**総合スコア: %.1f / 100**（終了理由: %s、%d回反復）\n\n",
		s.Run.FinalScore, reasonLabel(s.Run.Reason), len(s.Run.Iterations))

	if r := s.Run.Report; r != nil {
		b.WriteString("## カテゴリ別スコア\n\n")
		b.WriteString("| カテゴリ | スコア | 満点 |\n|---|---|---|\n")
		for _, c := range r.Categories {
			fmt.Fprintf(&b, "| %s | %.1f | %.0f |\n", c.Name, c.Score, c.Max)
		}
		b.WriteString("\n")
		writeIssues(&b, r.Issues)
	}

	b.WriteString("## 補助金要件\n\n")
	req := s.Run.Requirements
	fmt.Fprintf(&b, "- 付加価値額CAGR: %.2f%% %s\n", req.AddedValueCAGR*100, okMark(req.AddedValueOK))
	fmt.Fprintf(&b, "- 一人当たり給与CAGR: %.2f%% %s\n", req.SalaryPerCapitaCAGR*100, okMark(req.SalaryPerCapitaOK))
	for _, w := range append(req.Warnings, s.Run.Warnings...) {
		fmt.Fprintf(&b, "- ⚠️ %s\n", w)
	}
	b.WriteString("\n")

	if len(s.Run.Iterations) > 0 {
		b.WriteString("## 反復履歴\n\n")
		b.WriteString("| 回 | スコア | 補正数 |\n|---|---|---|\n")
		for _, it := range s.Run.Iterations {
			fmt.Fprintf(&b, "| %d | %.1f | %d |\n", it.Iteration, it.Score, it.Patches)
		}
		b.WriteString("\n")
	}

	if s.Tone != nil && !s.Tone.Skipped {
		b.WriteString("## 文体改善\n\n")
		fmt.Fprintf(&b, "最終スコア %.1f（%s評価）", s.Tone.FinalScore, s.Tone.FinalGrade)
		if s.Tone.Rewritten {
			b.WriteString("、書き戻し済み")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeIssues(b *strings.Builder, issues []score.Issue) {
	if len(issues) == 0 {
		return
	}
	b.WriteString("## 検出された課題\n\n")
	for _, is := range issues {
		fmt.Fprintf(b, "- [%s] %s\n", is.Category, is.Detail)
	}
	b.WriteString("\n")
}

func reasonLabel(r autofix.StopReason) string {
	switch r {
	case autofix.StopTargetReached:
		return "目標達成"
	case autofix.StopBudgetExhausted:
		return "反復上限"
	case autofix.StopStagnation:
		return "改善停滞"
	case autofix.StopNoActionableFix:
		return "自動修正余地なし"
	}
	return string(r)
}

func okMark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}
