package score

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/docmodel"
)

// =============================================================================
// FIXTURES
// =============================================================================

const baselineAddedValue = 14_458_083

// writePlan writes a narrative plan whose six sections clear their minimums
// and whose first added-value figure matches the workbook baseline.
func writePlan(t *testing.T, dir string, mutate func(*docmodel.Document)) {
	t.Helper()
	m := config.DefaultManifest()
	doc := &docmodel.Document{Title: "事業計画書"}
	var rows [][]docmodel.Cell
	for _, sec := range m.Sections {
		text := "付加価値額は14,458,083円を基準とする。" + strings.Repeat("省力化投資の計画内容を記載する。", sec.MinChars/15+10)
		rows = append(rows, []docmodel.Cell{{SectionID: sec.ID, Text: text}})
	}
	doc.Blocks = append(doc.Blocks, docmodel.Block{Type: docmodel.BlockTable, Rows: rows})
	if mutate != nil {
		mutate(doc)
	}
	if err := doc.Save(filepath.Join(dir, config.ArtifactBusinessPlan)); err != nil {
		t.Fatal(err)
	}
}

// writeWorkbook writes a projection workbook with a 5%/4% growth curve, which
// clears both regulatory minimums.
func writeWorkbook(t *testing.T, dir string, mutate func(*docmodel.Workbook)) {
	t.Helper()
	series := func(base, rate float64) []float64 {
		out := make([]float64, config.ProjectionYears+1)
		v := base
		for y := range out {
			out[y] = math.Round(v)
			v *= rate
		}
		return out
	}
	wb := &docmodel.Workbook{Title: "事業計画書（その3）"}
	official := wb.EnsureSheet("指定様式")
	official.SetRow("売上高", series(19_180_852, 1.05))
	official.SetRow("営業利益", series(2_275_980, 1.05))
	official.SetRow("給与支給総額", series(5_980_000, 1.04))
	official.SetRow("付加価値額", series(baselineAddedValue, 1.05))
	reference := wb.EnsureSheet("参考書式")
	reference.SetRow("付加価値額", series(baselineAddedValue, 1.05))
	if mutate != nil {
		mutate(wb)
	}
	if err := wb.Save(filepath.Join(dir, config.ArtifactProjectionWB)); err != nil {
		t.Fatal(err)
	}
}

// writeFullSet lays down all eleven artifacts (forms as empty workbooks).
func writeFullSet(t *testing.T, dir string) {
	t.Helper()
	writePlan(t, dir, nil)
	writeWorkbook(t, dir, nil)
	for _, artifact := range config.DefaultManifest().Artifacts {
		if artifact == config.ArtifactBusinessPlan || artifact == config.ArtifactProjectionWB {
			continue
		}
		wb := &docmodel.Workbook{Title: artifact}
		if err := wb.Save(filepath.Join(dir, artifact)); err != nil {
			t.Fatal(err)
		}
	}
}

func scoreDir(t *testing.T, dir string) *Report {
	t.Helper()
	return NewScorer(config.DefaultManifest(), true).Score(dir)
}

// =============================================================================
// TESTS
// =============================================================================

func TestEmptyDirectoryScoresLow(t *testing.T) {
	r := NewScorer(config.DefaultManifest(), false).Score(t.TempDir())
	if r.Total >= 50 {
		t.Errorf("empty directory scored %.1f, want < 50", r.Total)
	}
	if !r.HasAction(ActionRetryGeneration) {
		t.Error("empty directory should request regeneration")
	}
}

func TestFilesRequireContent(t *testing.T) {
	dir := t.TempDir()
	for _, artifact := range config.DefaultManifest().Artifacts {
		if err := os.WriteFile(filepath.Join(dir, artifact), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	r := scoreDir(t, dir)
	if c := r.Category("files"); c.Score != 0 {
		t.Errorf("zero-byte artifacts scored %.1f, want 0", c.Score)
	}
	if !r.HasAction(ActionRetryGeneration) {
		t.Error("empty artifacts should request regeneration")
	}
}

func TestFullSetScoresHigh(t *testing.T) {
	dir := t.TempDir()
	writeFullSet(t, dir)
	r := scoreDir(t, dir)
	if r.Total < 95 {
		t.Errorf("clean artifact set scored %.1f, want >= 95", r.Total)
		for _, is := range r.Issues {
			t.Logf("issue: %s/%s %s", is.Category, is.Action, is.Detail)
		}
	}
}

func TestReportInvariants(t *testing.T) {
	dirs := map[string]func(t *testing.T) string{
		"empty": func(t *testing.T) string { return t.TempDir() },
		"full": func(t *testing.T) string {
			dir := t.TempDir()
			writeFullSet(t, dir)
			return dir
		},
		"plan_only": func(t *testing.T) string {
			dir := t.TempDir()
			writePlan(t, dir, nil)
			return dir
		},
	}
	for name, mk := range dirs {
		t.Run(name, func(t *testing.T) {
			r := scoreDir(t, mk(t))
			sum := 0.0
			for _, c := range r.Categories {
				if c.Score < 0 || c.Score > c.Max {
					t.Errorf("category %s score %.1f outside [0, %.0f]", c.Name, c.Score, c.Max)
				}
				sum += c.Score
			}
			if math.Abs(sum-r.Total) > 1e-9 {
				t.Errorf("Total %.2f != category sum %.2f", r.Total, sum)
			}
			if len(r.Categories) != 7 {
				t.Errorf("got %d categories, want 7", len(r.Categories))
			}
		})
	}
}

func TestConsistencyFlagsDivergentAddedValue(t *testing.T) {
	dir := t.TempDir()
	writeFullSet(t, dir)
	// Push the official sheet's baseline 30% above the narrative figure.
	writeWorkbook(t, dir, func(wb *docmodel.Workbook) {
		row := wb.FindSheet("指定様式").FindRow("付加価値額")
		for i := range row.Values {
			row.Values[i] *= 1.30
		}
	})

	r := scoreDir(t, dir)
	if !r.HasAction(ActionFixValueInconsistency) {
		t.Fatal("30% divergence should flag an inconsistency")
	}
	c := r.Category("consistency")
	if want := round1((1 - penaltyInconsistency) * MaxConsistency); c.Score != want {
		t.Errorf("consistency score = %.1f, want %.1f", c.Score, want)
	}
}

func TestConsistencyToleratesSmallSpread(t *testing.T) {
	dir := t.TempDir()
	writeFullSet(t, dir)
	// 10% spread stays inside the tolerance.
	writeWorkbook(t, dir, func(wb *docmodel.Workbook) {
		row := wb.FindSheet("指定様式").FindRow("付加価値額")
		for i := range row.Values {
			row.Values[i] *= 1.10
		}
	})

	r := scoreDir(t, dir)
	if r.HasAction(ActionFixValueInconsistency) {
		t.Error("10% spread should stay within tolerance")
	}
}

func TestConsistencyFlagsNegativeProfit(t *testing.T) {
	dir := t.TempDir()
	writeFullSet(t, dir)
	writeWorkbook(t, dir, func(wb *docmodel.Workbook) {
		row := wb.FindSheet("指定様式").FindRow("営業利益")
		row.Values[3] = -120_000
	})

	r := scoreDir(t, dir)
	if !r.HasAction(ActionFixNegativeProfit) {
		t.Fatal("negative projected profit should be flagged")
	}
	c := r.Category("consistency")
	if want := round1((1 - penaltyNegProfit) * MaxConsistency); c.Score != want {
		t.Errorf("consistency score = %.1f, want %.1f", c.Score, want)
	}
}

func TestValuesPartialCredit(t *testing.T) {
	dir := t.TempDir()
	writeFullSet(t, dir)
	// A 2% added-value CAGR is half the 4% requirement: half credit on that
	// half of the category.
	writeWorkbook(t, dir, func(wb *docmodel.Workbook) {
		series := make([]float64, config.ProjectionYears+1)
		v := float64(baselineAddedValue)
		for y := range series {
			series[y] = v
			v *= 1.02
		}
		wb.FindSheet("指定様式").SetRow("付加価値額", series)
	})

	r := scoreDir(t, dir)
	if !r.HasAction(ActionIncreaseGrowthRate) {
		t.Fatal("sub-minimum added-value CAGR should request a growth-rate raise")
	}
	c := r.Category("values")
	if c.Score < 14 || c.Score > 16 {
		t.Errorf("values score = %.1f, want about 15 (half credit + full salary credit)", c.Score)
	}
}

func TestTextQualityCountsHoles(t *testing.T) {
	dir := t.TempDir()
	writeFullSet(t, dir)
	writePlan(t, dir, func(doc *docmodel.Document) {
		doc.Blocks = append(doc.Blocks, docmodel.Block{
			Type: docmodel.BlockParagraph,
			Text: "本設備の主要機能として、が挙げられる。成長率は1.0512345678とする。",
		})
	})

	r := scoreDir(t, dir)
	if !r.HasAction(ActionFixTextHoles) {
		t.Fatal("dangling span and unrounded decimal should be flagged")
	}
	c := r.Category("text_quality")
	if want := round1((1 - 2*penaltyHole) * MaxTextQuality); c.Score != want {
		t.Errorf("text_quality score = %.1f, want %.1f", c.Score, want)
	}
}

func TestSectionsFlagShortAndEmpty(t *testing.T) {
	dir := t.TempDir()
	m := config.DefaultManifest()
	doc := &docmodel.Document{Title: "事業計画書"}
	var rows [][]docmodel.Cell
	for _, sec := range m.Sections {
		if sec.ID == "3-1" {
			continue // omitted entirely
		}
		n := sec.MinChars
		if sec.ID == "1-2" {
			n = sec.MinChars / 2 // present but short
		}
		rows = append(rows, []docmodel.Cell{{SectionID: sec.ID, Text: strings.Repeat("あ", n)}})
	}
	doc.Blocks = append(doc.Blocks, docmodel.Block{Type: docmodel.BlockTable, Rows: rows})
	if err := doc.Save(filepath.Join(dir, config.ArtifactBusinessPlan)); err != nil {
		t.Fatal(err)
	}

	r := scoreDir(t, dir)
	if !r.HasAction(ActionFixEmptySection) {
		t.Error("missing section should request an empty-section fix")
	}
	if !r.HasAction(ActionIncreaseSectionText) {
		t.Error("short section should request more text")
	}
}

func TestDiagramsSkippedGetsFullCredit(t *testing.T) {
	dir := t.TempDir()
	writeFullSet(t, dir)
	r := NewScorer(config.DefaultManifest(), true).Score(dir)
	if c := r.Category("diagrams"); c.Score != MaxDiagrams {
		t.Errorf("skipped diagrams scored %.1f, want full %.0f", c.Score, MaxDiagrams)
	}
}

func TestDiagramsCountedWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	writeFullSet(t, dir)
	diagDir := filepath.Join(dir, config.DiagramDirName)
	if err := os.MkdirAll(diagDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"flow_before.png", "flow_after.png"} {
		if err := os.WriteFile(filepath.Join(diagDir, name), []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	r := NewScorer(config.DefaultManifest(), false).Score(dir)
	c := r.Category("diagrams")
	want := round1(2.0 / 13.0 * MaxDiagrams)
	if c.Score != want {
		t.Errorf("diagrams score = %.2f, want %.2f", c.Score, want)
	}
	if !r.HasAction(ActionRetryDiagrams) {
		t.Error("incomplete diagram set should request a retry")
	}
}
