package patch

import (
	"strings"
	"testing"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/docmodel"
	"shoryoku/pkg/core/finance"
	"shoryoku/pkg/core/model"
)

func docWith(texts ...string) *docmodel.Document {
	doc := &docmodel.Document{Title: "事業計画書"}
	var rows [][]docmodel.Cell
	for _, t := range texts {
		rows = append(rows, []docmodel.Cell{{Text: t}})
	}
	doc.Blocks = []docmodel.Block{{Type: docmodel.BlockTable, Rows: rows}}
	return doc
}

func testBaseline() finance.BaselineFinancials {
	return finance.BaselineFinancials{
		LaborCost:       6_713_298,
		Depreciation:    5_645_870,
		Salary:          5_980_000,
		OperatingProfit: 2_275_980,
		AddedValue:      14_458_083,
		Revenue:         19_180_852,
	}
}

func TestFillTextHolesFillsDanglingSpan(t *testing.T) {
	doc := docWith("本設備の主要機能として、が挙げられる。")
	eq := &model.EquipmentRecord{Name: "画像寸法測定機", Features: "最大99箇所の一括自動測定機能"}

	if got := FillTextHoles(doc, eq); got != 1 {
		t.Fatalf("repairs = %d, want 1", got)
	}
	text := doc.AllText()
	if !strings.Contains(text, "として、最大99箇所の一括自動測定機能が挙げられる") {
		t.Errorf("hole not filled with equipment features: %s", text)
	}
}

func TestFillTextHolesFallsBackWithoutFeatures(t *testing.T) {
	doc := docWith("本設備の主要機能として、が挙げられる。")
	eq := &model.EquipmentRecord{Name: "画像寸法測定機"}

	FillTextHoles(doc, eq)
	if !strings.Contains(doc.AllText(), "画像寸法測定機による対象業務の自動処理機能") {
		t.Errorf("expected equipment-derived fallback phrase, got %s", doc.AllText())
	}
}

func TestFillTextHolesRoundsRawDecimals(t *testing.T) {
	doc := docWith("削減率は75.0000000001%であり、成長率は1.0512345678とする。")

	if got := FillTextHoles(doc, &model.EquipmentRecord{}); got != 2 {
		t.Fatalf("repairs = %d, want 2", got)
	}
	text := doc.AllText()
	if !strings.Contains(text, "75.0%") {
		t.Errorf("75.0000000001 not rounded: %s", text)
	}
	if !strings.Contains(text, "1.1") {
		t.Errorf("1.0512345678 not rounded: %s", text)
	}
}

func TestFillTextHolesLeavesCleanTextAlone(t *testing.T) {
	clean := "削減率は75.0%に達する。主要機能として、自動記録機能が挙げられる。"
	doc := docWith(clean)

	if got := FillTextHoles(doc, &model.EquipmentRecord{}); got != 0 {
		t.Fatalf("repairs = %d, want 0", got)
	}
	if doc.AllText() != clean+"\n" {
		t.Errorf("clean text was modified: %s", doc.AllText())
	}
}

func TestReconcileRewritesDriftedFigure(t *testing.T) {
	base := testBaseline()
	params := config.DefaultParameters()
	doc := docWith("5年目の付加価値額は20,000,000円を見込む。")

	if got := ReconcileAddedValue(doc, base, params); got != 1 {
		t.Fatalf("rewrites = %d, want 1", got)
	}
	want := group(finance.ProjectAddedValue(base, params, config.ProjectionYears))
	if !strings.Contains(doc.AllText(), "付加価値額は"+want+"円") {
		t.Errorf("figure not pulled to canonical %s: %s", want, doc.AllText())
	}
}

func TestReconcileLeavesFigureWithinTolerance(t *testing.T) {
	doc := docWith("基準年度の付加価値額は14,500,000円である。")

	if got := ReconcileAddedValue(doc, testBaseline(), config.DefaultParameters()); got != 0 {
		t.Fatalf("rewrites = %d, want 0 for a figure within tolerance", got)
	}
	if !strings.Contains(doc.AllText(), "14,500,000円") {
		t.Error("in-tolerance figure should be untouched")
	}
}

func TestReconcileHandlesMultipleFigures(t *testing.T) {
	base := testBaseline()
	params := config.DefaultParameters()
	text := "基準年度の付加価値額は14,458,083円であり、1年目の付加価値額は99,999,999円を見込む。"
	doc := docWith(text)

	if got := ReconcileAddedValue(doc, base, params); got != 1 {
		t.Fatalf("rewrites = %d, want 1", got)
	}
	out := doc.AllText()
	if !strings.Contains(out, "14,458,083円") {
		t.Error("exact baseline figure should survive")
	}
	if strings.Contains(out, "99,999,999円") {
		t.Error("wildly drifted figure should be rewritten")
	}
}

func TestReconcilePreservesUnrelatedFullwidthDigits(t *testing.T) {
	base := testBaseline()
	params := config.DefaultParameters()
	doc := docWith("従業員４名体制である。5年目の付加価値額は99,999,999円を見込む。設備は１２台稼働中。")

	if got := ReconcileAddedValue(doc, base, params); got != 1 {
		t.Fatalf("rewrites = %d, want 1", got)
	}
	out := doc.AllText()
	if !strings.Contains(out, "従業員４名") || !strings.Contains(out, "１２台") {
		t.Errorf("full-width digits outside the rewritten figure must stay as written: %s", out)
	}
	want := group(finance.ProjectAddedValue(base, params, config.ProjectionYears))
	if !strings.Contains(out, "付加価値額は"+want+"円") {
		t.Errorf("drifted figure not rewritten to %s: %s", want, out)
	}
}

func TestGroupFormatting(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{532, "532"},
		{14_458_083, "14,458,083"},
		{-1_000_000, "-1,000,000"},
	}
	for _, tc := range cases {
		if got := group(tc.in); got != tc.want {
			t.Errorf("group(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
