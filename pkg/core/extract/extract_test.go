package extract

import (
	"context"
	"testing"

	"shoryoku/pkg/core/model"
)

type stubCaller struct {
	response string
	lastUser string
	lastSys  string
}

func (s *stubCaller) Call(_ context.Context, userPrompt, systemPrompt string) (string, error) {
	s.lastUser = userPrompt
	s.lastSys = systemPrompt
	return s.response, nil
}

func TestExtractFromTextParsesCleanJSON(t *testing.T) {
	caller := &stubCaller{response: `{
		"revenue": [17800000, 18400000, 19180852],
		"operating_profit": [1900000, 2100000, 2275980],
		"labor_cost": 6713298,
		"depreciation": 3395870,
		"total_salary": 5980000
	}`}

	fields, err := NewStatementExtractor(caller).ExtractFromText(context.Background(), "売上高 19,180,852円 ...")
	if err != nil {
		t.Fatalf("ExtractFromText: %v", err)
	}
	if fields.Revenue[2] != 19_180_852 {
		t.Errorf("revenue[2] = %d, want 19180852", fields.Revenue[2])
	}
	if fields.LaborCost != 6_713_298 {
		t.Errorf("labor cost = %d, want 6713298", fields.LaborCost)
	}
	if caller.lastSys == "" || caller.lastUser == "" {
		t.Error("extraction must send both system and user prompts")
	}
}

func TestExtractFromTextRepairsSloppyJSON(t *testing.T) {
	// Single quotes, unquoted keys, trailing comma, fenced output: all the
	// usual model sins at once.
	caller := &stubCaller{response: "```json\n{revenue: [19180852], 'labor_cost': 6713298,}\n```"}

	fields, err := NewStatementExtractor(caller).ExtractFromText(context.Background(), "text")
	if err != nil {
		t.Fatalf("ExtractFromText: %v", err)
	}
	if len(fields.Revenue) != 1 || fields.Revenue[0] != 19_180_852 {
		t.Errorf("revenue = %v, want [19180852]", fields.Revenue)
	}
	if fields.LaborCost != 6_713_298 {
		t.Errorf("labor cost = %d, want 6713298", fields.LaborCost)
	}
}

func TestOverlayStatementWinsOverSurvey(t *testing.T) {
	a := &model.ApplicantRecord{
		Revenue:     [3]int64{17_000_000, 18_000_000, 19_000_000},
		LaborCost:   6_000_000,
		TotalSalary: 5_500_000,
	}
	fields := &StatementFields{
		Revenue:   []int64{17_800_000, 18_400_000, 19_180_852},
		LaborCost: 6_713_298,
	}

	if got := fields.Overlay(a); got != 4 {
		t.Errorf("overlaid %d fields, want 4", got)
	}
	if a.Revenue[2] != 19_180_852 {
		t.Errorf("revenue[2] = %d, want statement figure", a.Revenue[2])
	}
	if a.LaborCost != 6_713_298 {
		t.Errorf("labor cost = %d, want statement figure", a.LaborCost)
	}
	if a.TotalSalary != 5_500_000 {
		t.Error("zero-valued extraction must not clobber the survey figure")
	}
}

func TestOverlayAlignsShortSeriesToBaseline(t *testing.T) {
	a := &model.ApplicantRecord{Revenue: [3]int64{17_000_000, 18_000_000, 19_000_000}}
	fields := &StatementFields{Revenue: []int64{19_180_852}}

	fields.Overlay(a)
	if a.Revenue[2] != 19_180_852 {
		t.Errorf("single-year statement should land in the baseline slot, got %v", a.Revenue)
	}
	if a.Revenue[0] != 17_000_000 || a.Revenue[1] != 18_000_000 {
		t.Errorf("earlier years must survive, got %v", a.Revenue)
	}
}

func TestOverlayIgnoresZeroEntries(t *testing.T) {
	a := &model.ApplicantRecord{Revenue: [3]int64{17_000_000, 18_000_000, 19_000_000}}
	fields := &StatementFields{Revenue: []int64{0, 18_400_000, 0}}

	fields.Overlay(a)
	if a.Revenue[0] != 17_000_000 || a.Revenue[2] != 19_000_000 {
		t.Errorf("zero entries must not clobber survey years, got %v", a.Revenue)
	}
	if a.Revenue[1] != 18_400_000 {
		t.Errorf("non-zero entry should overlay, got %v", a.Revenue)
	}
}
