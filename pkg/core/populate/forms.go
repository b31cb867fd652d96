package populate

import (
	"fmt"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/docmodel"
	"shoryoku/pkg/core/finance"
)

// writeProjectionWorkbook fills the five-year financial plan. The official
// sheet (指定様式) carries the figures the reviewer checks; the reference
// sheet (参考書式) repeats them with derivation notes.
func (p *Populator) writeProjectionWorkbook(in Inputs, templateDir, outPath string) error {
	wb, err := loadWorkbookTemplate(templateDir, config.ArtifactProjectionWB)
	if err != nil {
		return err
	}

	base := in.Baseline
	params := in.Params
	years := config.ProjectionYears + 1 // baseline plus five plan years

	addedValue := make([]float64, years)
	salary := make([]float64, years)
	profit := make([]float64, years)
	revenue := make([]float64, years)
	for y := 0; y < years; y++ {
		addedValue[y] = float64(finance.ProjectAddedValue(base, params, y))
		salary[y] = float64(finance.ProjectSalary(base, params, y))
		profit[y] = float64(finance.ProjectOperatingProfit(base, params, y))
		revenue[y] = float64(base.Revenue) * growthCurve(params.GrowthRate, y)
	}

	official := wb.FindSheet("指定様式")
	if official == nil {
		official = wb.EnsureSheet("指定様式")
	}
	official.SetRow("売上高", revenue)
	official.SetRow("営業利益", profit)
	official.SetRow("給与支給総額", salary)
	official.SetRow("付加価値額", addedValue)

	reference := wb.FindSheet("参考書式")
	if reference == nil {
		reference = wb.EnsureSheet("参考書式")
	}
	reference.SetRow("人件費", projectSeries(float64(base.LaborCost), params.SalaryGrowthRate, years))
	reference.SetRow("減価償却費", flatSeries(float64(base.Depreciation), years))
	reference.SetRow("営業利益", profit)
	reference.SetRow("付加価値額", addedValue)
	reference.SetRow("給与支給総額", salary)
	if row := reference.FindRow("付加価値額"); row != nil {
		row.Note = fmt.Sprintf("基準年度 %s円、成長率 年%.1f%%", yen(base.AddedValue), (params.GrowthRate-1)*100)
	}
	if row := reference.FindRow("給与支給総額"); row != nil {
		row.Note = fmt.Sprintf("基準年度 %s円、引上げ率 年%.1f%%", yen(base.Salary), (params.SalaryGrowthRate-1)*100)
	}

	return wb.Save(outPath)
}

func growthCurve(rate float64, year int) float64 {
	out := 1.0
	for i := 0; i < year; i++ {
		out *= rate
	}
	return out
}

func projectSeries(baseValue, rate float64, years int) []float64 {
	out := make([]float64, years)
	for y := 0; y < years; y++ {
		out[y] = baseValue * growthCurve(rate, y)
	}
	return out
}

func flatSeries(value float64, years int) []float64 {
	out := make([]float64, years)
	for y := range out {
		out[y] = value
	}
	return out
}

// writeForm fills one of the registry or confirmation artifacts. Each is a
// small workbook: a header sheet of label/note pairs plus a listing sheet
// where the artifact is a registry.
func (p *Populator) writeForm(in Inputs, artifact, templateDir, outPath string) error {
	wb, err := loadWorkbookTemplate(templateDir, artifact)
	if err != nil {
		return err
	}

	a := in.Applicant
	head := wb.EnsureSheet("基本情報")
	setNote(head, "事業者名", a.Name)
	setNote(head, "代表者名", a.Representative)
	setNote(head, "所在地", a.Address)

	switch artifact {
	case "officer_registry.json":
		s := wb.EnsureSheet("役員名簿")
		s.Rows = s.Rows[:0]
		for _, o := range a.Officers {
			s.Rows = append(s.Rows, docmodel.WBRow{
				Label: o.Name,
				Note:  fmt.Sprintf("%s / 生年月日 %s", o.Position, o.BirthDate),
			})
		}
	case "employee_registry.json":
		s := wb.EnsureSheet("従業員名簿")
		s.Rows = s.Rows[:0]
		for _, e := range a.Employees {
			s.Rows = append(s.Rows, docmodel.WBRow{
				Label: e.Name,
				Note:  fmt.Sprintf("生年月日 %s / 入社日 %s", e.BirthDate, e.HireDate),
			})
		}
		setNote(head, "従業員数", fmt.Sprintf("%d名", a.EmployeeCount))
	case "shareholder_registry.json":
		s := wb.EnsureSheet("株主名簿")
		s.Rows = s.Rows[:0]
		for _, sh := range a.Shareholders {
			s.Rows = append(s.Rows, docmodel.WBRow{
				Label:  sh.Name,
				Values: []float64{float64(sh.Shares)},
				Note:   "保有株式数",
			})
		}
	case "site_list.json":
		s := wb.EnsureSheet("事業実施場所")
		setNote(s, "実施場所", a.Address)
		setNote(s, "導入設備", in.Equipment.Name)
		setNote(s, "設置台数", fmt.Sprintf("%d台", in.Equipment.Quantity))
	case "subsidy_history.json":
		s := wb.EnsureSheet("交付実績")
		setNote(s, "過去の交付実績", "該当なし")
	case "bank_confirmation.json":
		s := wb.EnsureSheet("資金調達")
		setNote(s, "金融機関名", in.Funding.BankName)
		setNote(s, "総投資額", yen(in.Funding.TotalInvestment)+"円")
		setNote(s, "補助金申請額", yen(in.Funding.SubsidyAmount)+"円")
		setNote(s, "自己資金", yen(in.Funding.SelfFunding)+"円")
		setNote(s, "事業実施期間", in.Funding.Period)
	case "salary_confirmation.json":
		s := wb.EnsureSheet("給与支給総額")
		s.SetRow("給与支給総額", projectSeries(float64(in.Baseline.Salary), in.Params.SalaryGrowthRate, config.ProjectionYears+1))
		setNote(s, "基準年度実績", yen(in.Baseline.Salary)+"円")
	case "wage_raise_workplace.json":
		s := wb.EnsureSheet("事業場内賃上げ")
		setNote(s, "引上げ対象", a.WageIncreaseTarget)
		setNote(s, "引上げ時期", a.WageIncreaseTiming)
		setNote(s, "引上げ率", fmt.Sprintf("年%.1f%%", a.WageIncreaseRate*100))
	case "wage_raise_regional.json":
		s := wb.EnsureSheet("地域別最低賃金")
		setNote(s, "都道府県", a.Prefecture)
		setNote(s, "引上げ時期", a.WageIncreaseTiming)
	default:
		return fmt.Errorf("unknown artifact %s", artifact)
	}

	return wb.Save(outPath)
}

// setNote writes a label/note pair, overwriting the existing row when the
// template already carries the label.
func setNote(s *docmodel.Sheet, label, note string) {
	for i := range s.Rows {
		if s.Rows[i].Label == label {
			s.Rows[i].Note = note
			return
		}
	}
	s.Rows = append(s.Rows, docmodel.WBRow{Label: label, Note: note})
}
