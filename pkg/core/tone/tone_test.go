package tone

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/docmodel"
)

// =============================================================================
// STUBS AND FIXTURES
// =============================================================================

type scriptScorer struct {
	scores []float64
	next   int
}

func (s *scriptScorer) ScoreNaturalness(_ context.Context, _ string) (float64, string, error) {
	i := s.next
	if i >= len(s.scores) {
		i = len(s.scores) - 1
	}
	s.next++
	v := s.scores[i]
	return v, gradeOf(v), nil
}

type suffixRewriter struct {
	suffix string
	calls  int
}

func (r *suffixRewriter) Rewrite(_ context.Context, text string) (string, error) {
	r.calls++
	return text + r.suffix, nil
}

func sectionCell(header, filler string) string {
	return header + "\n" + strings.Repeat(filler, 40)
}

// writeFixturePlan puts a two-section narrative into dir and returns the doc.
func writeFixturePlan(t *testing.T, dir string) *docmodel.Document {
	t.Helper()
	doc := &docmodel.Document{
		Title: "事業計画書",
		Blocks: []docmodel.Block{{
			Type: docmodel.BlockTable,
			Rows: [][]docmodel.Cell{
				{{SectionID: "1-1", Text: sectionCell("【1-1 現状分析】", "当社の現状を記載する。")}},
				{{SectionID: "1-2", Text: sectionCell("【1-2 経営課題】", "人手不足の課題を記載する。")}},
			},
		}},
	}
	if err := doc.Save(filepath.Join(dir, config.ArtifactBusinessPlan)); err != nil {
		t.Fatal(err)
	}
	return doc
}

func settings(target float64, rounds int) config.Settings {
	s := config.DefaultSettings()
	s.ToneTargetScore = target
	s.MaxToneRounds = rounds
	return s
}

// =============================================================================
// PHASE TESTS
// =============================================================================

func TestPhaseSkippedWhenUnconfigured(t *testing.T) {
	res, err := NewPhase(nil, nil, config.DefaultSettings()).Run(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Skipped {
		t.Error("phase without capabilities should be a recorded skip")
	}
}

func TestPhaseStopsAtTargetWithoutRewriting(t *testing.T) {
	dir := t.TempDir()
	writeFixturePlan(t, dir)
	rw := &suffixRewriter{suffix: "改"}
	res, err := NewPhase(&scriptScorer{scores: []float64{92}}, rw, settings(85, 3)).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Rewritten {
		t.Error("text above target should not be rewritten")
	}
	if rw.calls != 0 {
		t.Errorf("rewriter called %d times, want 0", rw.calls)
	}
	if len(res.Rounds) != 1 || res.FinalScore != 92 {
		t.Errorf("rounds = %d, final = %.1f; want 1 round at 92", len(res.Rounds), res.FinalScore)
	}
}

func TestPhaseStopsWhenRewriteStopsImproving(t *testing.T) {
	dir := t.TempDir()
	writeFixturePlan(t, dir)
	// 60 before any rewrite, 70 after the first, 65 after the second: the
	// second rewrite is discarded and the loop ends.
	sc := &scriptScorer{scores: []float64{60, 70, 65}}
	res, err := NewPhase(sc, &suffixRewriter{suffix: "(推敲済)"}, settings(85, 3)).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Rewritten {
		t.Fatal("the improving first rewrite should be kept")
	}
	if res.FinalScore != 70 {
		t.Errorf("final score = %.1f, want the best 70", res.FinalScore)
	}
	if len(res.Rounds) != 2 {
		t.Errorf("rounds = %d, want 2", len(res.Rounds))
	}

	// The kept rewrite must land in both the document and the text artifact.
	doc, err := docmodel.LoadDocument(filepath.Join(dir, config.ArtifactBusinessPlan))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.AllText(), "(推敲済)") {
		t.Error("rewritten text not written back into the document")
	}
	raw, err := os.ReadFile(filepath.Join(dir, config.ArtifactRewrittenText))
	if err != nil {
		t.Fatalf("rewritten text artifact missing: %v", err)
	}
	if !strings.Contains(string(raw), "【1-1 現状分析】") {
		t.Error("text artifact should carry the full rewritten narrative")
	}
}

func TestPhaseExhaustsRoundBudget(t *testing.T) {
	dir := t.TempDir()
	writeFixturePlan(t, dir)
	sc := &scriptScorer{scores: []float64{50, 55, 60, 65, 70}}
	rw := &suffixRewriter{suffix: "改"}
	res, err := NewPhase(sc, rw, settings(99, 3)).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Rounds) != 3 {
		t.Errorf("rounds = %d, want the full budget of 3", len(res.Rounds))
	}
	if rw.calls != 3 {
		t.Errorf("rewriter calls = %d, want 3", rw.calls)
	}
}

// =============================================================================
// WRITE-BACK TESTS
// =============================================================================

func TestWriteBackMatchesHeadersToCells(t *testing.T) {
	doc := &docmodel.Document{Blocks: []docmodel.Block{{
		Type: docmodel.BlockTable,
		Rows: [][]docmodel.Cell{
			{{Text: sectionCell("【1-1 現状分析】", "旧本文。")}},
			{{Text: sectionCell("【1-2 経営課題】", "旧本文。")}},
			{{Text: "短いラベル"}},
		},
	}}}

	text := "【1-1 現状分析】\n現状の新しい本文。\n\n【1-2 経営課題】\n課題の新しい本文。"
	if got := writeBack(doc, text); got != 2 {
		t.Fatalf("replaced %d cells, want 2", got)
	}
	all := doc.AllText()
	if !strings.Contains(all, "現状の新しい本文") || !strings.Contains(all, "課題の新しい本文") {
		t.Errorf("segments not written back: %s", all)
	}
	if !strings.Contains(all, "短いラベル") {
		t.Error("small cells must never be overwritten")
	}
}

func TestWriteBackFallsBackToLargestCell(t *testing.T) {
	doc := &docmodel.Document{Blocks: []docmodel.Block{{
		Type: docmodel.BlockTable,
		Rows: [][]docmodel.Cell{
			{{Text: "小さいセル"}},
			{{Text: strings.Repeat("大きな本文。", 50)}},
		},
	}}}

	if got := writeBack(doc, "見出しのない書き直し本文。"); got != 1 {
		t.Fatalf("replaced %d cells, want 1", got)
	}
	if cell := doc.LargestCell(); !strings.Contains(cell.Text, "見出しのない書き直し本文") {
		t.Error("headerless text should land in the largest cell")
	}
}

// =============================================================================
// HEURISTIC SCORER TESTS
// =============================================================================

func TestHeuristicScorerPrefersVariedProse(t *testing.T) {
	ctx := context.Background()
	s := &HeuristicScorer{}

	natural := "当社は仙台市で金属部品の加工を手がけている。創業から四十年、取引先の注文に合わせて少しずつ設備を増やしてきた。" +
		"いま一番困っているのは検品の人手だ。求人を出しても応募がない。" +
		"そこで測定機を入れ、検品にかかる時間を一日四時間半減らす。浮いた時間は営業と若手の教育に回すつもりである。"

	mechanical := "さらに、生産性が向上します。さらに、品質が安定します。さらに、コストが低減します。" +
		"さらに、売上が拡大します。さらに、満足度が向上します。さらに、定着率が改善します。" +
		"これにより、革新的な成長が鍵となります。言うまでもなく、シームレスな連携が重要なのは明らかです。"

	nScore, nGrade, err := s.ScoreNaturalness(ctx, natural)
	if err != nil {
		t.Fatal(err)
	}
	mScore, _, err := s.ScoreNaturalness(ctx, mechanical)
	if err != nil {
		t.Fatal(err)
	}
	if nScore <= mScore {
		t.Errorf("natural prose %.1f should outscore mechanical prose %.1f", nScore, mScore)
	}
	if nScore < 0 || nScore > 100 || mScore < 0 || mScore > 100 {
		t.Errorf("scores out of range: %.1f, %.1f", nScore, mScore)
	}
	if nGrade == "" {
		t.Error("grade must not be empty")
	}
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{95, "A"},
		{90, "A"},
		{75, "B"},
		{60, "C"},
		{59.9, "D"},
	}
	for _, tc := range cases {
		if got := gradeOf(tc.score); got != tc.want {
			t.Errorf("gradeOf(%.1f) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
