// Package ingest builds application records from the business survey workbook
// and supplements them from the applicant's public website.
package ingest

import (
	"fmt"
	"strings"

	"shoryoku/pkg/core/docmodel"
	"shoryoku/pkg/core/model"
)

// ReadSurvey loads the structured hearing-survey workbook and assembles the
// applicant, equipment and funding records. Sheet and row lookup is fuzzy:
// survey revisions rename labels, so matching is substring-based and a missing
// row simply leaves the field at its zero value.
func ReadSurvey(path string) (*model.ApplicantRecord, *model.EquipmentRecord, *model.FundingRecord, error) {
	wb, err := docmodel.LoadWorkbook(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read survey: %w", err)
	}

	applicant := &model.ApplicantRecord{}
	equipment := &model.EquipmentRecord{}
	funding := &model.FundingRecord{}

	if s := wb.FindSheet("会社", "基本情報", "事業者"); s != nil {
		applicant.Name = noteOf(s, "会社名", "事業者名", "法人名")
		applicant.Representative = normalizeName(noteOf(s, "代表者", "代表取締役"))
		applicant.Address = noteOf(s, "所在地", "住所")
		applicant.Prefecture = noteOf(s, "都道府県")
		applicant.Industry = noteOf(s, "業種")
		applicant.BusinessDesc = noteOf(s, "事業内容", "事業概要")
		applicant.URL = noteOf(s, "URL", "ホームページ", "ウェブサイト")
		applicant.FiscalPeriodLatest = noteOf(s, "直近決算期", "決算期")
		applicant.EmployeeCount = int(numOf(s, "従業員数"))
		applicant.OfficerCount = int(numOf(s, "役員数"))
	}

	if s := wb.FindSheet("決算", "実績", "財務"); s != nil {
		readSeries(s, &applicant.Revenue, "売上高", "売上")
		readSeries(s, &applicant.GrossProfit, "売上総利益", "粗利")
		readSeries(s, &applicant.OperatingProfit, "営業利益")
		applicant.LaborCost = int64(numOf(s, "人件費"))
		applicant.Depreciation = int64(numOf(s, "減価償却"))
		applicant.TotalSalary = int64(numOf(s, "給与支給総額", "給与総額"))
	}

	if s := wb.FindSheet("人手不足", "人材"); s != nil {
		applicant.LaborShortage = model.LaborShortage{
			ShortageTasks:     noteOf(s, "不足業務", "不足している業務"),
			RecruitmentPeriod: noteOf(s, "募集期間"),
			Applications:      int(numOf(s, "応募者数", "応募数")),
			Hired:             int(numOf(s, "採用数", "採用者数")),
			OvertimeHours:     numOf(s, "残業時間"),
			CurrentWorkers:    int(numOf(s, "現在の人員", "現在人員")),
			DesiredWorkers:    int(numOf(s, "必要な人員", "必要人員")),
		}
	}

	if s := wb.FindSheet("設備", "導入機器"); s != nil {
		equipment.Name = noteOf(s, "設備名", "機器名", "製品名")
		equipment.Category = noteOf(s, "カテゴリ", "分類")
		equipment.Manufacturer = noteOf(s, "メーカー", "製造元")
		equipment.Model = noteOf(s, "型式", "型番")
		equipment.Quantity = int(numOf(s, "数量", "台数"))
		equipment.TotalPrice = int64(numOf(s, "価格", "金額", "総額"))
		equipment.Vendor = noteOf(s, "販売店", "販売事業者")
		equipment.Features = noteOf(s, "主要機能", "機能")
	}

	if s := wb.FindSheet("省力化効果", "削減効果"); s != nil {
		applicant.LaborSaving = model.LaborSaving{
			TargetTasks:    noteOf(s, "対象業務"),
			CurrentHours:   numOf(s, "現状の作業時間", "現状時間"),
			TargetHours:    numOf(s, "導入後の作業時間", "導入後時間"),
			ReductionHours: numOf(s, "削減時間"),
			ReductionRate:  numOf(s, "削減率"),
		}
		if applicant.LaborSaving.ReductionHours == 0 &&
			applicant.LaborSaving.CurrentHours > applicant.LaborSaving.TargetHours {
			applicant.LaborSaving.ReductionHours =
				applicant.LaborSaving.CurrentHours - applicant.LaborSaving.TargetHours
		}
	}

	if s := wb.FindSheet("資金", "調達"); s != nil {
		funding.SubsidyAmount = int64(numOf(s, "補助金", "申請額"))
		funding.SelfFunding = int64(numOf(s, "自己資金"))
		funding.TotalInvestment = int64(numOf(s, "総投資額", "投資総額"))
		funding.BankName = noteOf(s, "金融機関", "銀行")
		funding.Period = noteOf(s, "実施期間")
	}
	if funding.TotalInvestment == 0 {
		funding.TotalInvestment = funding.SubsidyAmount + funding.SelfFunding
	}

	if s := wb.FindSheet("自由記述", "ヒアリング"); s != nil {
		applicant.MotivationBackground = noteOf(s, "導入の背景", "動機")
		applicant.TimeUtilizationPlan = noteOf(s, "創出時間", "時間の活用")
		// Surveys state the raise as a percentage; the record stores a ratio.
		if rate := numOf(s, "賃上げ率"); rate > 1 {
			applicant.WageIncreaseRate = rate / 100
		} else {
			applicant.WageIncreaseRate = rate
		}
		applicant.WageIncreaseTarget = noteOf(s, "賃上げ対象")
		applicant.WageIncreaseTiming = noteOf(s, "賃上げ時期")
	}

	applicant.Officers = readOfficers(wb.FindSheet("役員名簿", "役員"))
	applicant.Employees = readEmployees(wb.FindSheet("従業員名簿"))
	applicant.Shareholders = readShareholders(wb.FindSheet("株主名簿", "株主"))
	if applicant.OfficerCount == 0 {
		applicant.OfficerCount = len(applicant.Officers)
	}
	if applicant.EmployeeCount == 0 {
		applicant.EmployeeCount = len(applicant.Employees)
	}

	if applicant.Name == "" {
		return nil, nil, nil, fmt.Errorf("survey %s: applicant name missing", path)
	}
	return applicant, equipment, funding, nil
}

// readSeries fills a 3-year history from a row, end-aligned so that a survey
// with fewer than three years still lands the latest figure in the baseline
// slot.
func readSeries(s *docmodel.Sheet, dst *[3]int64, fragments ...string) {
	row := s.FindRow(fragments...)
	if row == nil {
		return
	}
	vals := row.Values
	if len(vals) > 3 {
		vals = vals[len(vals)-3:]
	}
	offset := 3 - len(vals)
	for i, v := range vals {
		dst[offset+i] = int64(v)
	}
}

func readOfficers(s *docmodel.Sheet) []model.Officer {
	if s == nil {
		return nil
	}
	var out []model.Officer
	for _, row := range s.Rows {
		if row.Label == "" {
			continue
		}
		o := model.Officer{Name: normalizeName(row.Label)}
		parts := splitNote(row.Note)
		if len(parts) > 0 {
			o.Position = parts[0]
		}
		if len(parts) > 1 {
			o.BirthDate = parts[1]
		}
		out = append(out, o)
	}
	return out
}

func readEmployees(s *docmodel.Sheet) []model.Employee {
	if s == nil {
		return nil
	}
	var out []model.Employee
	for _, row := range s.Rows {
		if row.Label == "" {
			continue
		}
		e := model.Employee{Name: normalizeName(row.Label)}
		parts := splitNote(row.Note)
		if len(parts) > 0 {
			e.BirthDate = parts[0]
		}
		if len(parts) > 1 {
			e.HireDate = parts[1]
		}
		out = append(out, e)
	}
	return out
}

func readShareholders(s *docmodel.Sheet) []model.Shareholder {
	if s == nil {
		return nil
	}
	var out []model.Shareholder
	for _, row := range s.Rows {
		if row.Label == "" {
			continue
		}
		sh := model.Shareholder{Name: normalizeName(row.Label)}
		if len(row.Values) > 0 {
			sh.Shares = int64(row.Values[0])
		}
		out = append(out, sh)
	}
	return out
}

// noteOf returns the Note of the first row matching any fragment.
func noteOf(s *docmodel.Sheet, fragments ...string) string {
	if row := s.FindRow(fragments...); row != nil {
		return strings.TrimSpace(row.Note)
	}
	return ""
}

// numOf returns Values[0] of the first matching row, falling back to parsing
// the Note when the figure was typed as text.
func numOf(s *docmodel.Sheet, fragments ...string) float64 {
	row := s.FindRow(fragments...)
	if row == nil {
		return 0
	}
	if len(row.Values) > 0 {
		return row.Values[0]
	}
	return parseNumber(row.Note)
}

var punctNormalizer = strings.NewReplacer("．", ".", "，", ",")

// parseNumber extracts the first numeric value from free text, tolerating
// full-width digits, comma grouping, surrounding words and trailing units.
func parseNumber(text string) float64 {
	text = punctNormalizer.Replace(docmodel.NormalizeDigits(strings.TrimSpace(text)))
	var (
		val     float64
		frac    float64
		scale   = 1.0
		started bool
		dotted  bool
		neg     bool
	)
	for _, r := range text {
		switch {
		case r == '-' && !started:
			neg = true
		case r >= '0' && r <= '9':
			started = true
			if dotted {
				scale /= 10
				frac += float64(r-'0') * scale
			} else {
				val = val*10 + float64(r-'0')
			}
		case r == ',' && started:
			continue
		case r == '.' && started && !dotted:
			dotted = true
		default:
			if started {
				val += frac
				if neg {
					val = -val
				}
				return val
			}
		}
	}
	if !started {
		return 0
	}
	val += frac
	if neg {
		val = -val
	}
	return val
}

// normalizeName collapses the full-width space used between family and given
// names into a single ASCII space.
func normalizeName(name string) string {
	name = strings.ReplaceAll(name, "　", " ")
	return strings.Join(strings.Fields(name), " ")
}

// splitNote splits a registry detail note on its separator.
func splitNote(note string) []string {
	if note == "" {
		return nil
	}
	parts := strings.Split(note, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
