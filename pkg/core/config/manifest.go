package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Canonical artifact names. The narrative business plan and the projection
// workbook are the two documents the scorer inspects in depth; the other nine
// are registries and confirmation forms.
const (
	ArtifactBusinessPlan  = "business_plan_part1_2.json"
	ArtifactProjectionWB  = "business_plan_part3.json"
	ArtifactRewrittenText = "business_plan_rewritten.txt"
	ArtifactScoreReport   = "score_report.md"
	ArtifactRunHistory    = "run_history.json"

	DiagramDirName = "diagrams"
)

// SectionSpec describes one narrative subsection: its stamp ID, display
// title, header keywords (used only for documents produced by older tooling)
// and the minimum stripped character count.
type SectionSpec struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Keywords []string `yaml:"keywords"`
	MinChars int      `yaml:"min_chars"`
}

// Manifest enumerates the expected output set.
type Manifest struct {
	Artifacts     []string      `yaml:"artifacts"`
	DiagramCount  int           `yaml:"diagram_count"`
	MinTotalChars int           `yaml:"min_total_chars"`
	Sections      []SectionSpec `yaml:"sections"`
}

// DefaultManifest returns the fixed set of 11 artifacts, 13 diagrams and six
// narrative sections with their individual character minimums.
func DefaultManifest() *Manifest {
	return &Manifest{
		Artifacts: []string{
			ArtifactBusinessPlan,
			ArtifactProjectionWB,
			"officer_registry.json",
			"employee_registry.json",
			"shareholder_registry.json",
			"site_list.json",
			"subsidy_history.json",
			"bank_confirmation.json",
			"salary_confirmation.json",
			"wage_raise_workplace.json",
			"wage_raise_regional.json",
		},
		DiagramCount:  13,
		MinTotalChars: 4700,
		Sections: []SectionSpec{
			{ID: "1-1", Title: "現状分析", Keywords: []string{"現状分析", "事業の現状"}, MinChars: 600},
			{ID: "1-2", Title: "経営課題", Keywords: []string{"経営課題", "人手不足", "経営上の課題"}, MinChars: 700},
			{ID: "1-3", Title: "動機目的", Keywords: []string{"動機", "なぜ今", "省力化補助金活用の動機"}, MinChars: 400},
			{ID: "2-1", Title: "ビフォーアフター", Keywords: []string{"導入前後", "省力化の内容", "業務プロセス"}, MinChars: 1000},
			{ID: "2-2", Title: "効果", Keywords: []string{"省力化効果", "期待される効果"}, MinChars: 600},
			{ID: "3-1", Title: "生産性向上", Keywords: []string{"生産性向上", "賃上げ", "付加価値額の向上"}, MinChars: 700},
		},
	}
}

// LoadManifest reads a YAML manifest if present, otherwise the default set.
func LoadManifest(path string) (*Manifest, error) {
	m := DefaultManifest()
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Section returns the SectionSpec for a section ID, or nil.
func (m *Manifest) Section(id string) *SectionSpec {
	for i := range m.Sections {
		if m.Sections[i].ID == id {
			return &m.Sections[i]
		}
	}
	return nil
}
