// Package model defines the ingested application data: the applicant's
// identity and financial actuals, the subsidized equipment, and funding facts.
package model

// Officer is one entry in the officer registry.
type Officer struct {
	Name      string `json:"name"`
	Position  string `json:"position"`
	BirthDate string `json:"birth_date"`
}

// Employee is one entry in the employee registry.
type Employee struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	HireDate  string `json:"hire_date"`
}

// Shareholder is one entry in the shareholder registry.
type Shareholder struct {
	Name   string `json:"name"`
	Shares int64  `json:"shares"`
}

// LaborShortage captures the staffing-gap facts used by the narrative.
type LaborShortage struct {
	ShortageTasks     string  `json:"shortage_tasks"`
	RecruitmentPeriod string  `json:"recruitment_period"`
	Applications      int     `json:"applications"`
	Hired             int     `json:"hired"`
	OvertimeHours     float64 `json:"overtime_hours"`
	CurrentWorkers    int     `json:"current_workers"`
	DesiredWorkers    int     `json:"desired_workers"`
}

// LaborSaving captures the expected time-saving effect of the new equipment.
type LaborSaving struct {
	TargetTasks    string  `json:"target_tasks"`
	CurrentHours   float64 `json:"current_hours"`
	TargetHours    float64 `json:"target_hours"`
	ReductionHours float64 `json:"reduction_hours"`
	ReductionRate  float64 `json:"reduction_rate"`
}

// ApplicantRecord is the company side of one application. It is assembled
// once from survey ingestion, optionally overlaid by statement extraction,
// and treated as read-only for the rest of the run.
type ApplicantRecord struct {
	Name           string `json:"name"`
	Representative string `json:"representative"`
	Address        string `json:"address"`
	Prefecture     string `json:"prefecture"`
	Industry       string `json:"industry"`
	BusinessDesc   string `json:"business_description"`
	URL            string `json:"url"`

	// Three fiscal years of actuals, oldest first. The last entry is the
	// baseline year.
	Revenue         [3]int64 `json:"revenue"`
	GrossProfit     [3]int64 `json:"gross_profit"`
	OperatingProfit [3]int64 `json:"operating_profit"`

	// Latest-period figures for the added-value formula. Zero means "not
	// reported"; the projection engine falls back to revenue ratios.
	LaborCost    int64 `json:"labor_cost"`
	Depreciation int64 `json:"depreciation"`
	TotalSalary  int64 `json:"total_salary"`

	FiscalPeriodLatest string `json:"fiscal_period_latest"`

	EmployeeCount int `json:"employee_count"`
	OfficerCount  int `json:"officer_count"`

	Officers     []Officer     `json:"officers,omitempty"`
	Employees    []Employee    `json:"employees,omitempty"`
	Shareholders []Shareholder `json:"shareholders,omitempty"`

	LaborShortage LaborShortage `json:"labor_shortage"`
	LaborSaving   LaborSaving   `json:"labor_saving"`

	MotivationBackground string  `json:"motivation_background"`
	TimeUtilizationPlan  string  `json:"time_utilization_plan"`
	WageIncreaseRate     float64 `json:"wage_increase_rate"`
	WageIncreaseTarget   string  `json:"wage_increase_target"`
	WageIncreaseTiming   string  `json:"wage_increase_timing"`
}

// LatestRevenue returns the baseline-year revenue.
func (a *ApplicantRecord) LatestRevenue() int64 { return a.Revenue[2] }

// LatestOperatingProfit returns the baseline-year operating profit.
func (a *ApplicantRecord) LatestOperatingProfit() int64 { return a.OperatingProfit[2] }

// EquipmentRecord is the subsidized asset. Read-only once ingested.
type EquipmentRecord struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Quantity     int    `json:"quantity"`
	TotalPrice   int64  `json:"total_price"`
	Vendor       string `json:"vendor"`
	Features     string `json:"features"`
}

// FundingRecord holds the financing facts for the confirmation forms.
type FundingRecord struct {
	SubsidyAmount   int64  `json:"subsidy_amount"`
	SelfFunding     int64  `json:"self_funding"`
	TotalInvestment int64  `json:"total_investment"`
	BankName        string `json:"bank_name"`
	Period          string `json:"implementation_period"`
}
