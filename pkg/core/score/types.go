// Package score grades a generated artifact set on a 100-point scale across
// seven weighted categories. The scorer only reads the output directory:
// missing or unreadable artifacts never raise, they zero the category and
// emit an Issue the auto-fix loop can act on.
package score

// ActionTag is the closed set of remediations an Issue can request. The
// auto-fix loop dispatches on these; anything outside the set would silently
// fall through its dispatch table, so new tags must be added here first.
type ActionTag string

const (
	ActionRetryGeneration       ActionTag = "retry_generation"
	ActionRetryDiagrams         ActionTag = "retry_diagrams"
	ActionIncreaseText          ActionTag = "increase_text"
	ActionIncreaseSectionText   ActionTag = "increase_section_text"
	ActionFixTextHoles          ActionTag = "fix_text_holes"
	ActionFixEmptySection       ActionTag = "fix_empty_section"
	ActionFixValueInconsistency ActionTag = "fix_value_inconsistency"
	ActionFixNegativeProfit     ActionTag = "fix_negative_profit"
	ActionIncreaseGrowthRate    ActionTag = "increase_growth_rate"
	ActionIncreaseSalaryRate    ActionTag = "increase_salary_rate"
)

// Issue is one detected defect with its requested remediation.
type Issue struct {
	Category string    `json:"category"`
	Action   ActionTag `json:"action"`
	Detail   string    `json:"detail"`
}

// CategoryScore is one category's result.
type CategoryScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Max   float64 `json:"max"`
}

// Report is one full scoring pass.
// Invariant: Total equals the sum of the category scores exactly, and every
// category score lies in [0, Max].
type Report struct {
	Total      float64         `json:"total"`
	Categories []CategoryScore `json:"categories"`
	Issues     []Issue         `json:"issues"`
}

// Category weights. They sum to 100.
const (
	MaxFiles       = 10.0
	MaxDiagrams    = 5.0
	MaxTextTotal   = 5.0
	MaxSections    = 10.0
	MaxTextQuality = 25.0
	MaxConsistency = 25.0
	MaxValues      = 20.0
)

// Defect penalties for the text-quality and consistency categories, as a
// fraction of the category.
const (
	penaltyHole          = 0.1
	penaltyEmptySection  = 0.2
	penaltyInconsistency = 0.4
	penaltyNegProfit     = 0.3

	// inconsistencyTolerance is the relative spread above which the same
	// figure reported in two places counts as a contradiction.
	inconsistencyTolerance = 0.15
)

// Category returns the named category score, or nil.
func (r *Report) Category(name string) *CategoryScore {
	for i := range r.Categories {
		if r.Categories[i].Name == name {
			return &r.Categories[i]
		}
	}
	return nil
}

// HasAction reports whether any Issue carries the given tag.
func (r *Report) HasAction(tag ActionTag) bool {
	for _, is := range r.Issues {
		if is.Action == tag {
			return true
		}
	}
	return false
}
