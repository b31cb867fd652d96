// Package autofix drives the generate/score/fix loop. One Controller owns the
// projection parameters for the duration of a run: they start at the defaults,
// are nudged by issue dispatch between iterations, and are reset again when
// the run ends so no tuning leaks into the next application.
package autofix

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/docmodel"
	"shoryoku/pkg/core/finance"
	"shoryoku/pkg/core/model"
	"shoryoku/pkg/core/patch"
	"shoryoku/pkg/core/populate"
	"shoryoku/pkg/core/score"
)

// stagnationDelta is the score movement at or below which regeneration under
// the same parameters is considered pointless.
const stagnationDelta = 1.0

// Generator produces the full artifact set for one attempt.
type Generator interface {
	Generate(in populate.Inputs, outputDir string) error
}

// Scorer grades one output directory.
type Scorer interface {
	Score(outputDir string) *score.Report
}

// StopReason says why the loop ended.
type StopReason string

const (
	StopTargetReached   StopReason = "target_reached"
	StopBudgetExhausted StopReason = "budget_exhausted"
	StopStagnation      StopReason = "stagnation"
	StopNoActionableFix StopReason = "no_actionable_fix"
)

// IterationRecord is one loop pass for the run history.
type IterationRecord struct {
	Iteration int                         `json:"iteration"`
	Score     float64                     `json:"score"`
	Params    config.ProjectionParameters `json:"params"`
	Patches   int                         `json:"patches"`
	Actions   []score.ActionTag           `json:"actions,omitempty"`
}

// Result is one complete run.
type Result struct {
	RunID        string                    `json:"run_id"`
	FinalScore   float64                   `json:"final_score"`
	Reason       StopReason                `json:"reason"`
	Iterations   []IterationRecord         `json:"iterations"`
	Report       *score.Report             `json:"report"`
	Requirements finance.RequirementReport `json:"requirements"`
	Warnings     []string                  `json:"warnings,omitempty"`
}

// Controller wires the loop's collaborators together.
type Controller struct {
	applicant *model.ApplicantRecord
	equipment *model.EquipmentRecord
	funding   *model.FundingRecord
	manifest  *config.Manifest
	settings  config.Settings
	generator Generator
	scorer    Scorer
	outputDir string

	params config.ProjectionParameters
}

// NewController builds a Controller for one application.
func NewController(applicant *model.ApplicantRecord, equipment *model.EquipmentRecord, funding *model.FundingRecord,
	manifest *config.Manifest, settings config.Settings, generator Generator, scorer Scorer, outputDir string) *Controller {
	return &Controller{
		applicant: applicant,
		equipment: equipment,
		funding:   funding,
		manifest:  manifest,
		settings:  settings,
		generator: generator,
		scorer:    scorer,
		outputDir: outputDir,
		params:    config.DefaultParameters(),
	}
}

// Run executes pre-flight checks and the generate/score/fix loop until the
// target score is reached, the iteration budget runs out, the score stagnates,
// or no issue dispatch can change a parameter.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	c.params.Reset()
	defer c.params.Reset()

	result := &Result{RunID: uuid.NewString()}
	fmt.Printf("🚀 自動修正ループ開始 (run %s, 目標 %.0f点, 最大 %d回)\n",
		result.RunID[:8], c.settings.TargetScore, c.settings.MaxIterations)

	result.Warnings = finance.ValidateInputs(c.applicant, c.equipment)
	for _, w := range result.Warnings {
		fmt.Printf("⚠️ 入力チェック: %s\n", w)
	}
	c.solveMinimalRates()
	result.Requirements = finance.CheckRequirements(c.applicant, c.equipment, c.params)
	for _, w := range result.Requirements.Warnings {
		fmt.Printf("⚠️ 事前確認: %s\n", w)
	}

	prev := -1.0
	for iter := 1; iter <= c.settings.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		in := populate.Inputs{
			Applicant: c.applicant,
			Equipment: c.equipment,
			Funding:   c.funding,
			Baseline:  finance.ComputeBaseline(c.applicant, c.equipment, c.params),
			Params:    c.params,
		}
		if err := c.generator.Generate(in, c.outputDir); err != nil {
			return result, fmt.Errorf("iteration %d generation: %w", iter, err)
		}

		patches := c.applyPatches(in.Baseline)
		report := c.scorer.Score(c.outputDir)

		rec := IterationRecord{Iteration: iter, Score: report.Total, Params: c.params, Patches: patches}
		for _, is := range report.Issues {
			rec.Actions = append(rec.Actions, is.Action)
		}
		result.Iterations = append(result.Iterations, rec)
		result.Report = report
		result.FinalScore = report.Total
		fmt.Printf("📊 イテレーション %d/%d: %.1f点 (指摘 %d件, 補修 %d箇所)\n",
			iter, c.settings.MaxIterations, report.Total, len(report.Issues), patches)

		if report.Total >= c.settings.TargetScore {
			result.Reason = StopTargetReached
			fmt.Printf("✅ 目標スコア %.0f点に到達\n", c.settings.TargetScore)
			return result, nil
		}
		if iter == c.settings.MaxIterations {
			result.Reason = StopBudgetExhausted
			fmt.Printf("⚠️ 最大イテレーション数に到達 (最終 %.1f点)\n", report.Total)
			return result, nil
		}
		if prev >= 0 && math.Abs(report.Total-prev) <= stagnationDelta {
			result.Reason = StopStagnation
			fmt.Printf("⚠️ スコアが停滞 (%.1f → %.1f)、打ち切り\n", prev, report.Total)
			return result, nil
		}
		prev = report.Total

		if !c.dispatch(report.Issues) {
			result.Reason = StopNoActionableFix
			fmt.Println("⚠️ 打てる修正手がないため終了")
			return result, nil
		}
		c.clearArtifacts()
	}
	return result, nil
}

// solveMinimalRates adopts the minimal growth rates (plus a safety margin)
// needed to clear the regulatory CAGRs, so the loop starts from a feasible
// point instead of discovering infeasibility one increment at a time.
func (c *Controller) solveMinimalRates() {
	base := finance.ComputeBaseline(c.applicant, c.equipment, c.params)

	spc := finance.PerCapitaSalaryCAGR(base.Salary, c.params, c.applicant.EmployeeCount, config.ProjectionYears)
	if spc < config.MinSalaryPerCapitaCAGR {
		rate := finance.SolveMinSalaryRate(config.MinSalaryPerCapitaCAGR) + config.SolveSafetyMargin
		c.params.AdoptSalaryRate(rate)
		fmt.Printf("🔧 給与成長率を %.3f に引き上げ (基準充足のため)\n", c.params.SalaryGrowthRate)
	}

	final := finance.ProjectAddedValue(base, c.params, config.ProjectionYears)
	if finance.CAGR(float64(base.AddedValue), float64(final), config.ProjectionYears) < config.MinAddedValueCAGR {
		rate := finance.SolveMinGrowthRate(base, c.params, config.MinAddedValueCAGR, config.ProjectionYears)
		if rate > 0 {
			c.params.AdoptGrowthRate(rate + config.SolveSafetyMargin)
			fmt.Printf("🔧 付加価値成長率を %.3f に引き上げ (基準充足のため)\n", c.params.GrowthRate)
		}
	}
}

// applyPatches runs the in-place document repairs and reports how many were
// applied. A missing narrative is not fatal here; the scorer will zero the
// affected categories anyway.
func (c *Controller) applyPatches(base finance.BaselineFinancials) int {
	path := filepath.Join(c.outputDir, config.ArtifactBusinessPlan)
	doc, err := docmodel.LoadDocument(path)
	if err != nil {
		fmt.Printf("⚠️ 事業計画書が読めないため補修をスキップ: %v\n", err)
		return 0
	}
	n := patch.FillTextHoles(doc, c.equipment)
	n += patch.ReconcileAddedValue(doc, base, c.params)
	if n > 0 {
		if err := doc.Save(path); err != nil {
			fmt.Printf("⚠️ 補修結果の保存に失敗: %v\n", err)
			return 0
		}
	}
	return n
}

// dispatch maps issue actions to fixes and reports whether any fix was
// applied. Parameter actions mutate the projection rates; text shortfalls
// count as a fix too, because regeneration is the remedy and another pass
// under the same parameters can still lengthen the prose. The stagnation
// check keeps pure-regeneration retries from looping. Hole and consistency
// actions stay informational, the in-place patches already cover them.
func (c *Controller) dispatch(issues []score.Issue) bool {
	changed := false
	for _, is := range issues {
		switch is.Action {
		case score.ActionIncreaseGrowthRate, score.ActionFixNegativeProfit:
			if c.params.RaiseGrowthRate() {
				changed = true
				fmt.Printf("🔧 付加価値成長率 → %.3f\n", c.params.GrowthRate)
			}
		case score.ActionIncreaseSalaryRate:
			if c.params.RaiseSalaryRate() {
				changed = true
				fmt.Printf("🔧 給与成長率 → %.3f\n", c.params.SalaryGrowthRate)
			}
		case score.ActionIncreaseText, score.ActionIncreaseSectionText:
			changed = true
			fmt.Printf("🔧 テキスト再生成: %s\n", is.Detail)
		case score.ActionFixTextHoles, score.ActionFixValueInconsistency, score.ActionFixEmptySection:
			fmt.Printf("ℹ️ 補修対象: %s\n", is.Detail)
		}
	}
	return changed
}

// clearArtifacts removes the manifest's artifacts so the next iteration
// starts from a clean directory and a failed regeneration cannot pass on
// stale output.
func (c *Controller) clearArtifacts() {
	for _, artifact := range c.manifest.Artifacts {
		_ = os.Remove(filepath.Join(c.outputDir, artifact))
	}
}

// Params exposes the current projection parameters, for reporting.
func (c *Controller) Params() config.ProjectionParameters {
	return c.params
}
