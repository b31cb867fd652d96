// Package finance is the single source of truth for the added-value formula
// and its five-year projection.
//
//	added value = operating profit + labor cost + depreciation
//
// Every component prefers the applicant's reported actual and falls back to a
// fixed ratio of revenue (or to straight-line equipment depreciation) when the
// actual is missing. All functions here are pure: the growth rates arrive as
// an explicit ProjectionParameters value and nothing is cached.
package finance

import (
	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/model"
)

// BaselineFinancials is the year-0 snapshot every projection anchors on.
// Invariant: AddedValue == OperatingProfit + LaborCost + Depreciation,
// and Depreciation == ExistingDepreciation + NewDepreciation.
type BaselineFinancials struct {
	LaborCost            int64 `json:"labor_cost"`
	ExistingDepreciation int64 `json:"existing_depreciation"`
	NewDepreciation      int64 `json:"new_depreciation"`
	Depreciation         int64 `json:"depreciation"`
	Salary               int64 `json:"salary"`
	AddedValue           int64 `json:"added_value"`
	OperatingProfit      int64 `json:"operating_profit"`
	Revenue              int64 `json:"revenue"`
}

// ComputeBaseline derives the baseline components from the applicant's
// actuals, the equipment price and the fallback ratios.
//
// Depreciation is the sum of any pre-existing reported charge plus the new
// asset's straight-line charge: the new asset's depreciation is never
// suppressed by the presence of an existing figure.
func ComputeBaseline(applicant *model.ApplicantRecord, equipment *model.EquipmentRecord, params config.ProjectionParameters) BaselineFinancials {
	revenue := applicant.LatestRevenue()

	laborCost := applicant.LaborCost
	if laborCost <= 0 {
		laborCost = int64(float64(revenue) * config.LaborCostRatio)
	}

	existingDep := applicant.Depreciation
	if existingDep < 0 {
		existingDep = 0
	}
	var newDep int64
	if equipment.TotalPrice > 0 {
		newDep = equipment.TotalPrice / config.DepreciationYears
	}
	depreciation := existingDep + newDep

	salary := applicant.TotalSalary
	if salary <= 0 {
		salary = int64(float64(revenue) * config.SalaryRatio)
	}

	opProfit := applicant.LatestOperatingProfit()

	return BaselineFinancials{
		LaborCost:            laborCost,
		ExistingDepreciation: existingDep,
		NewDepreciation:      newDep,
		Depreciation:         depreciation,
		Salary:               salary,
		AddedValue:           opProfit + laborCost + depreciation,
		OperatingProfit:      opProfit,
		Revenue:              revenue,
	}
}

// ProjectAddedValue computes the added value in the given year. Each
// component moves on its own curve: operating profit compounds at the
// value-added growth rate, labor cost at the salary growth rate, and
// depreciation stays flat (straight-line, single-asset assumption).
// Year 0 reproduces the baseline exactly.
func ProjectAddedValue(base BaselineFinancials, params config.ProjectionParameters, year int) int64 {
	op := int64(float64(base.OperatingProfit) * pow(params.GrowthRate, year))
	lc := int64(float64(base.LaborCost) * pow(params.SalaryGrowthRate, year))
	return op + lc + base.Depreciation
}

// ProjectSalary compounds the total salary at the salary growth rate.
func ProjectSalary(base BaselineFinancials, params config.ProjectionParameters, year int) int64 {
	return int64(float64(base.Salary) * pow(params.SalaryGrowthRate, year))
}

// ProjectOperatingProfit compounds operating profit at the profit growth
// rate. Used for the projection workbook's profit row and the negative-profit
// checks.
func ProjectOperatingProfit(base BaselineFinancials, params config.ProjectionParameters, year int) int64 {
	return int64(float64(base.OperatingProfit) * pow(params.ProfitGrowthRate, year))
}

func pow(rate float64, year int) float64 {
	out := 1.0
	for i := 0; i < year; i++ {
		out *= rate
	}
	return out
}
