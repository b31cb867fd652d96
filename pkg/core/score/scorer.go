package score

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/docmodel"
	"shoryoku/pkg/core/finance"
)

// Scorer grades one output directory against the manifest.
type Scorer struct {
	manifest     *config.Manifest
	skipDiagrams bool
}

// NewScorer returns a Scorer. With skipDiagrams the diagram category is
// granted in full, since an intentionally skipped step is not a defect.
func NewScorer(manifest *config.Manifest, skipDiagrams bool) *Scorer {
	return &Scorer{manifest: manifest, skipDiagrams: skipDiagrams}
}

// Score runs every category over outputDir. It never fails: whatever cannot
// be read scores zero and becomes an Issue.
func (s *Scorer) Score(outputDir string) *Report {
	r := &Report{}

	// The narrative plan and projection workbook feed several categories, so
	// they are loaded once. nil means missing or unreadable.
	plan, planErr := docmodel.LoadDocument(filepath.Join(outputDir, config.ArtifactBusinessPlan))
	if planErr != nil {
		plan = nil
	}
	wb, wbErr := docmodel.LoadWorkbook(filepath.Join(outputDir, config.ArtifactProjectionWB))
	if wbErr != nil {
		wb = nil
	}

	s.scoreFiles(r, outputDir)
	s.scoreDiagrams(r, outputDir)
	s.scoreTextTotal(r, plan)
	s.scoreSections(r, plan)
	s.scoreTextQuality(r, plan)
	s.scoreConsistency(r, plan, wb)
	s.scoreValues(r, wb)

	for _, c := range r.Categories {
		r.Total += c.Score
	}
	return r
}

func (s *Scorer) add(r *Report, name string, score, max float64) {
	score = math.Max(0, math.Min(score, max))
	r.Categories = append(r.Categories, CategoryScore{Name: name, Score: round1(score), Max: max})
}

func (s *Scorer) issue(r *Report, category string, action ActionTag, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{Category: category, Action: action, Detail: fmt.Sprintf(format, args...)})
}

// =============================================================================
// CATEGORY: FILES
// =============================================================================

func (s *Scorer) scoreFiles(r *Report, outputDir string) {
	present := 0
	var missing []string
	for _, artifact := range s.manifest.Artifacts {
		fi, err := os.Stat(filepath.Join(outputDir, artifact))
		if err == nil && fi.Size() > 0 {
			present++
		} else {
			missing = append(missing, artifact)
		}
	}
	total := len(s.manifest.Artifacts)
	if total == 0 {
		s.add(r, "files", MaxFiles, MaxFiles)
		return
	}
	s.add(r, "files", float64(present)/float64(total)*MaxFiles, MaxFiles)
	if len(missing) > 0 {
		s.issue(r, "files", ActionRetryGeneration, "%d/%d 様式が未生成: %s", len(missing), total, strings.Join(missing, ", "))
	}
}

// =============================================================================
// CATEGORY: DIAGRAMS
// =============================================================================

func (s *Scorer) scoreDiagrams(r *Report, outputDir string) {
	if s.skipDiagrams || s.manifest.DiagramCount == 0 {
		s.add(r, "diagrams", MaxDiagrams, MaxDiagrams)
		return
	}
	matches, _ := filepath.Glob(filepath.Join(outputDir, config.DiagramDirName, "*.png"))
	got := len(matches)
	want := s.manifest.DiagramCount
	if got > want {
		got = want
	}
	s.add(r, "diagrams", float64(got)/float64(want)*MaxDiagrams, MaxDiagrams)
	if got < want {
		s.issue(r, "diagrams", ActionRetryDiagrams, "図解 %d/%d 枚", got, want)
	}
}

// =============================================================================
// CATEGORY: TEXT TOTAL
// =============================================================================

func (s *Scorer) scoreTextTotal(r *Report, plan *docmodel.Document) {
	if plan == nil {
		s.add(r, "text_total", 0, MaxTextTotal)
		s.issue(r, "text_total", ActionRetryGeneration, "事業計画書が読み込めない")
		return
	}
	chars := docmodel.CountChars(plan.AllText())
	minChars := s.manifest.MinTotalChars
	if minChars <= 0 || chars >= minChars {
		s.add(r, "text_total", MaxTextTotal, MaxTextTotal)
		return
	}
	s.add(r, "text_total", float64(chars)/float64(minChars)*MaxTextTotal, MaxTextTotal)
	s.issue(r, "text_total", ActionIncreaseText, "総文字数 %d / %d", chars, minChars)
}

// =============================================================================
// CATEGORY: SECTIONS
// =============================================================================

func (s *Scorer) scoreSections(r *Report, plan *docmodel.Document) {
	if plan == nil {
		s.add(r, "sections", 0, MaxSections)
		s.issue(r, "sections", ActionRetryGeneration, "事業計画書が読み込めない")
		return
	}
	if len(s.manifest.Sections) == 0 {
		s.add(r, "sections", MaxSections, MaxSections)
		return
	}
	share := MaxSections / float64(len(s.manifest.Sections))
	total := 0.0
	for _, sec := range s.manifest.Sections {
		chars := docmodel.CountChars(plan.SectionText(sec.ID))
		switch {
		case chars == 0:
			s.issue(r, "sections", ActionFixEmptySection, "%s %s が空", sec.ID, sec.Title)
		case chars < sec.MinChars:
			total += float64(chars) / float64(sec.MinChars) * share
			s.issue(r, "sections", ActionIncreaseSectionText, "%s %s: %d / %d 文字", sec.ID, sec.Title, chars, sec.MinChars)
		default:
			total += share
		}
	}
	s.add(r, "sections", total, MaxSections)
}

// =============================================================================
// CATEGORY: TEXT QUALITY
// =============================================================================

// Textual defects the generator or an upstream extraction can leave behind.
var (
	// Interpolation of an empty value leaves a dangling particle.
	reDanglingHole = regexp.MustCompile(`として、が|、が挙げられる|は円|約円`)
	// Raw float artifacts from unrounded arithmetic.
	reUnroundedDecimal = regexp.MustCompile(`[0-9]+\.[0-9]{6,}`)
	// Literal null tokens leaked from extraction.
	reNoneToken = regexp.MustCompile(`\bNone\b|\bnull\b`)
	// A zero-yen financial figure in the narrative.
	reZeroYen = regexp.MustCompile(`[^0-9,.]0円`)
	// Leftover template tags.
	reTemplateTag = regexp.MustCompile(`\{\{[^}]*\}\}|%!\w?\(`)
)

func (s *Scorer) scoreTextQuality(r *Report, plan *docmodel.Document) {
	if plan == nil {
		s.add(r, "text_quality", 0, MaxTextQuality)
		s.issue(r, "text_quality", ActionRetryGeneration, "事業計画書が読み込めない")
		return
	}
	text := plan.AllText()

	holes := 0
	for _, re := range []*regexp.Regexp{reDanglingHole, reUnroundedDecimal, reNoneToken, reZeroYen, reTemplateTag} {
		holes += len(re.FindAllString(text, -1))
	}
	empty := 0
	for _, sec := range s.manifest.Sections {
		if docmodel.CountChars(plan.SectionText(sec.ID)) == 0 {
			empty++
		}
	}

	quality := 1.0 - float64(holes)*penaltyHole - float64(empty)*penaltyEmptySection
	s.add(r, "text_quality", quality*MaxTextQuality, MaxTextQuality)
	if holes > 0 {
		s.issue(r, "text_quality", ActionFixTextHoles, "文章中の欠落・体裁不備 %d 箇所", holes)
	}
	if empty > 0 {
		s.issue(r, "text_quality", ActionFixEmptySection, "空の必須セクション %d 件", empty)
	}
}

// =============================================================================
// CATEGORY: CONSISTENCY
// =============================================================================

// reNarrativeAddedValue pulls the first added-value figure stated in prose.
var reNarrativeAddedValue = regexp.MustCompile(`付加価値額[^0-9]*([0-9,]+)円`)

func (s *Scorer) scoreConsistency(r *Report, plan *docmodel.Document, wb *docmodel.Workbook) {
	if plan == nil && wb == nil {
		s.add(r, "consistency", 0, MaxConsistency)
		s.issue(r, "consistency", ActionRetryGeneration, "照合対象の様式が読み込めない")
		return
	}

	var figures []float64
	if plan != nil {
		if m := reNarrativeAddedValue.FindStringSubmatch(docmodel.NormalizeDigits(plan.AllText())); m != nil {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
				figures = append(figures, v)
			}
		}
	}
	if wb != nil {
		for _, patterns := range [][]string{{"指定様式"}, {"参考書式"}} {
			sheet := wb.FindSheet(patterns...)
			if sheet == nil {
				continue
			}
			if row := sheet.FindRow("付加価値額"); row != nil && len(row.Values) > 0 {
				figures = append(figures, row.Values[0])
			}
		}
	}

	penalty := 0.0
	if spread(figures) > inconsistencyTolerance {
		penalty += penaltyInconsistency
		s.issue(r, "consistency", ActionFixValueInconsistency,
			"付加価値額が様式間で %.0f%% 乖離", spread(figures)*100)
	}
	if wb != nil {
		if sheet := wb.FindSheet("指定様式"); sheet != nil {
			if row := sheet.FindRow("営業利益"); row != nil {
				for year := 1; year < len(row.Values); year++ {
					if row.Values[year] < 0 {
						penalty += penaltyNegProfit
						s.issue(r, "consistency", ActionFixNegativeProfit,
							"%d年目の営業利益がマイナス", year)
						break
					}
				}
			}
		}
	}

	s.add(r, "consistency", (1.0-penalty)*MaxConsistency, MaxConsistency)
}

// spread is the max relative disagreement among figures, 0 when fewer than
// two figures were found.
func spread(figures []float64) float64 {
	if len(figures) < 2 {
		return 0
	}
	lo, hi := figures[0], figures[0]
	for _, f := range figures[1:] {
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	if hi == 0 {
		return 0
	}
	return (hi - lo) / math.Abs(hi)
}

// =============================================================================
// CATEGORY: VALUES
// =============================================================================

func (s *Scorer) scoreValues(r *Report, wb *docmodel.Workbook) {
	if wb == nil {
		s.add(r, "values", 0, MaxValues)
		s.issue(r, "values", ActionRetryGeneration, "事業計画書（その3）が読み込めない")
		return
	}
	half := MaxValues / 2
	total := 0.0

	sheet := wb.FindSheet("指定様式", "参考書式")
	if sheet == nil {
		s.add(r, "values", 0, MaxValues)
		s.issue(r, "values", ActionRetryGeneration, "計画値シートが見当たらない")
		return
	}

	avCAGR := rowCAGR(sheet.FindRow("付加価値額"))
	if avCAGR >= config.MinAddedValueCAGR {
		total += half
	} else {
		total += math.Max(0, avCAGR/config.MinAddedValueCAGR) * half
		s.issue(r, "values", ActionIncreaseGrowthRate,
			"付加価値額の年平均成長率 %.2f%% < %.1f%%", avCAGR*100, config.MinAddedValueCAGR*100)
	}

	// Under constant headcount the per-capita salary CAGR equals the total
	// salary CAGR, which is what the sheet carries.
	salaryCAGR := rowCAGR(sheet.FindRow("給与支給総額"))
	if salaryCAGR >= config.MinSalaryPerCapitaCAGR {
		total += half
	} else {
		total += math.Max(0, salaryCAGR/config.MinSalaryPerCapitaCAGR) * half
		s.issue(r, "values", ActionIncreaseSalaryRate,
			"一人当たり給与支給総額の年平均成長率 %.2f%% < %.1f%%", salaryCAGR*100, config.MinSalaryPerCapitaCAGR*100)
	}

	s.add(r, "values", total, MaxValues)
}

// rowCAGR derives the compound annual growth rate from a projection row,
// 0 when the row is absent or too short.
func rowCAGR(row *docmodel.WBRow) float64 {
	if row == nil || len(row.Values) < 2 {
		return 0
	}
	years := len(row.Values) - 1
	return finance.CAGR(row.Values[0], row.Values[years], years)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
