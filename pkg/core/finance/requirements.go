package finance

import (
	"fmt"
	"math"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/model"
)

// =============================================================================
// CAGR
// =============================================================================

// CAGR computes the compound annual growth rate between a base and a final
// value. Returns 0 when base <= 0 or years <= 0: growth from a zero or
// negative base is undefined, and a silent zero is the deliberate policy here
// rather than an error.
func CAGR(base, final float64, years int) float64 {
	if base <= 0 || years <= 0 {
		return 0
	}
	return math.Pow(final/base, 1.0/float64(years)) - 1
}

// PerCapitaSalaryCAGR computes the CAGR of salary divided by headcount over
// the horizon, projecting the salary forward at the salary growth rate.
// Returns 0 when either input is non-positive.
func PerCapitaSalaryCAGR(baseSalary int64, params config.ProjectionParameters, employeeCount int, years int) float64 {
	if baseSalary <= 0 || employeeCount <= 0 {
		return 0
	}
	base := BaselineFinancials{Salary: baseSalary}
	final := ProjectSalary(base, params, years)
	perCapitaBase := float64(baseSalary) / float64(employeeCount)
	perCapitaFinal := float64(final) / float64(employeeCount)
	return CAGR(perCapitaBase, perCapitaFinal, years)
}

// SolveMinSalaryRate returns the minimal salary growth rate satisfying the
// required per-capita CAGR. With constant headcount the per-capita CAGR
// equals the underlying rate minus one, so the inverse is exact.
func SolveMinSalaryRate(required float64) float64 {
	if required <= 0 {
		return 0
	}
	return 1 + required
}

// SolveMinGrowthRate returns the minimal value-added growth rate (the rate
// the operating-profit component compounds at) that makes the projected added
// value satisfy the required CAGR over the horizon, holding the salary rate
// and flat depreciation fixed. Returns 0 when no positive solution exists
// (e.g. non-positive operating profit).
func SolveMinGrowthRate(base BaselineFinancials, params config.ProjectionParameters, required float64, years int) float64 {
	if years <= 0 || base.AddedValue <= 0 || base.OperatingProfit <= 0 {
		return 0
	}
	target := float64(base.AddedValue) * math.Pow(1+required, float64(years))
	laborPart := float64(base.LaborCost) * math.Pow(params.SalaryGrowthRate, float64(years))
	residual := target - laborPart - float64(base.Depreciation)
	if residual <= 0 {
		return 0
	}
	return math.Pow(residual/float64(base.OperatingProfit), 1.0/float64(years))
}

// =============================================================================
// REQUIREMENT CHECKS
// =============================================================================

// RequirementReport compares the projected CAGRs against the subsidy's fixed
// regulatory minimums.
type RequirementReport struct {
	AddedValueCAGR      float64  `json:"added_value_cagr"`
	AddedValueOK        bool     `json:"added_value_ok"`
	SalaryPerCapitaCAGR float64  `json:"salary_per_capita_cagr"`
	SalaryPerCapitaOK   bool     `json:"salary_per_capita_ok"`
	Warnings            []string `json:"warnings,omitempty"`
}

// CheckRequirements projects the baseline over the planning horizon and
// verifies the value-added and per-capita-salary growth requirements. It also
// flags any projected year whose operating profit would be negative.
func CheckRequirements(applicant *model.ApplicantRecord, equipment *model.EquipmentRecord, params config.ProjectionParameters) RequirementReport {
	base := ComputeBaseline(applicant, equipment, params)

	final := ProjectAddedValue(base, params, config.ProjectionYears)
	avCAGR := CAGR(float64(base.AddedValue), float64(final), config.ProjectionYears)

	spcCAGR := PerCapitaSalaryCAGR(base.Salary, params, applicant.EmployeeCount, config.ProjectionYears)

	report := RequirementReport{
		AddedValueCAGR:      avCAGR,
		AddedValueOK:        avCAGR >= config.MinAddedValueCAGR,
		SalaryPerCapitaCAGR: spcCAGR,
		SalaryPerCapitaOK:   spcCAGR >= config.MinSalaryPerCapitaCAGR,
	}

	if !report.AddedValueOK {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("付加価値額の年率 %.2f%% が基準 %.1f%% を下回る", avCAGR*100, config.MinAddedValueCAGR*100))
	}
	if !report.SalaryPerCapitaOK {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("1人当たり給与の年率 %.2f%% が基準 %.1f%% を下回る", spcCAGR*100, config.MinSalaryPerCapitaCAGR*100))
	}
	for year := 1; year <= config.ProjectionYears; year++ {
		if ProjectOperatingProfit(base, params, year) < 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%d年目の営業利益がマイナス", year))
		}
	}
	return report
}

// ValidateInputs runs pre-flight sanity checks on the ingested record.
// Warnings are advisory and never block generation.
func ValidateInputs(applicant *model.ApplicantRecord, equipment *model.EquipmentRecord) []string {
	var warnings []string

	revenue := applicant.LatestRevenue()
	if revenue <= 0 {
		warnings = append(warnings, "売上高が未入力（フォールバック推計が働かない）")
	}
	if applicant.LaborCost+applicant.Depreciation > revenue && revenue > 0 {
		warnings = append(warnings, "人件費+減価償却費が売上高を超えている")
	}
	if applicant.LatestOperatingProfit() < 0 {
		warnings = append(warnings, "営業利益がマイナス")
	}
	if equipment.TotalPrice <= 0 {
		warnings = append(warnings, "設備価格が未入力")
	}
	if applicant.EmployeeCount <= 0 {
		warnings = append(warnings, "従業員数が未入力")
	}
	return warnings
}
