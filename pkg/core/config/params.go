// Package config holds the run configuration for the subsidy document
// pipeline: projection parameters, regulatory thresholds, scoring settings
// and the artifact manifest.
package config

// =============================================================================
// FIXED DOMAIN CONSTANTS
// =============================================================================

const (
	// Growth-rate defaults and ceilings. Rates are multiplicative:
	// 1.05 means +5% per year.
	DefaultGrowthRate       = 1.05 // value-added growth
	DefaultSalaryGrowthRate = 1.04 // total salary growth
	DefaultProfitGrowthRate = 1.05 // operating profit growth

	GrowthRateCeiling = 1.10
	SalaryRateCeiling = 1.05
	ProfitRateCeiling = 1.10

	// RateIncrement is the per-iteration nudge applied by the auto-fix loop.
	RateIncrement = 0.005

	// Fallback ratios used when the applicant did not report an actual value.
	LaborCostRatio = 0.35 // labor cost as a share of revenue
	SalaryRatio    = 0.30 // total salary as a share of revenue

	// Straight-line useful life of the subsidized asset.
	DepreciationYears = 5

	// ProjectionYears is the planning horizon.
	ProjectionYears = 5

	// Regulatory minimums for the subsidy's growth requirements.
	MinAddedValueCAGR      = 0.040 // 4.0%/yr
	MinSalaryPerCapitaCAGR = 0.035 // 3.5%/yr

	// SolveSafetyMargin is added on top of a solved minimal growth rate so the
	// projection clears the requirement with room for integer truncation.
	SolveSafetyMargin = 0.002
)

// ProjectionParameters are the growth rates threaded through every financial
// function. They are an explicit value owned by the auto-fix loop, never
// package-global, so one application's tuning cannot leak into another.
type ProjectionParameters struct {
	GrowthRate       float64 `json:"growth_rate"`        // value-added
	SalaryGrowthRate float64 `json:"salary_growth_rate"` // total salary
	ProfitGrowthRate float64 `json:"profit_growth_rate"` // operating profit
}

// DefaultParameters returns the fixed default growth rates.
func DefaultParameters() ProjectionParameters {
	return ProjectionParameters{
		GrowthRate:       DefaultGrowthRate,
		SalaryGrowthRate: DefaultSalaryGrowthRate,
		ProfitGrowthRate: DefaultProfitGrowthRate,
	}
}

// Reset restores the defaults in place. Calling it repeatedly is idempotent.
func (p *ProjectionParameters) Reset() {
	*p = DefaultParameters()
}

// RaiseGrowthRate bumps the value-added growth rate by one increment, capped
// at the ceiling. Reports whether the rate actually changed.
func (p *ProjectionParameters) RaiseGrowthRate() bool {
	old := p.GrowthRate
	p.GrowthRate = min(p.GrowthRate+RateIncrement, GrowthRateCeiling)
	return p.GrowthRate != old
}

// RaiseSalaryRate bumps the salary growth rate by one increment, capped at
// the ceiling. Reports whether the rate actually changed.
func (p *ProjectionParameters) RaiseSalaryRate() bool {
	old := p.SalaryGrowthRate
	p.SalaryGrowthRate = min(p.SalaryGrowthRate+RateIncrement, SalaryRateCeiling)
	return p.SalaryGrowthRate != old
}

// AdoptSalaryRate sets the salary growth rate directly (pre-flight solving),
// capped at the ceiling.
func (p *ProjectionParameters) AdoptSalaryRate(rate float64) {
	p.SalaryGrowthRate = min(rate, SalaryRateCeiling)
}

// AdoptGrowthRate sets the value-added growth rate directly (pre-flight
// solving), capped at the ceiling.
func (p *ProjectionParameters) AdoptGrowthRate(rate float64) {
	p.GrowthRate = min(rate, GrowthRateCeiling)
}
