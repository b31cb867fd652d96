// Package populate fills the eleven application artifacts from the ingested
// records and the financial baseline. It is templating, not decision logic:
// each call fully overwrites the previous output set, and a missing template
// skips that artifact with a log line instead of aborting the run.
package populate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/docmodel"
	"shoryoku/pkg/core/finance"
	"shoryoku/pkg/core/model"
)

// Inputs bundles everything one generation attempt needs. Baseline is
// recomputed by the caller for every attempt so parameter changes always
// flow through.
type Inputs struct {
	Applicant *model.ApplicantRecord
	Equipment *model.EquipmentRecord
	Funding   *model.FundingRecord
	Baseline  finance.BaselineFinancials
	Params    config.ProjectionParameters
	Diagrams  map[string]string // diagram name -> generated file path
}

// Populator writes the artifact set described by the manifest.
type Populator struct {
	manifest *config.Manifest
}

// New returns a Populator for the given manifest.
func New(manifest *config.Manifest) *Populator {
	return &Populator{manifest: manifest}
}

// PopulateAll generates every artifact into outputDir. A wholly absent
// template directory is the one hard failure; individual template problems
// degrade to a skipped artifact.
func (p *Populator) PopulateAll(in Inputs, templateDir, outputDir string) error {
	if _, err := os.Stat(templateDir); err != nil {
		return fmt.Errorf("template directory unavailable: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, artifact := range p.manifest.Artifacts {
		var err error
		switch artifact {
		case config.ArtifactBusinessPlan:
			err = p.writeBusinessPlan(in, templateDir, filepath.Join(outputDir, artifact))
		case config.ArtifactProjectionWB:
			err = p.writeProjectionWorkbook(in, templateDir, filepath.Join(outputDir, artifact))
		default:
			err = p.writeForm(in, artifact, templateDir, filepath.Join(outputDir, artifact))
		}
		if err != nil {
			fmt.Printf("⚠️ %s の生成をスキップ: %v\n", artifact, err)
		}
	}
	return nil
}

// templatePath maps an artifact name to its template file.
func templatePath(templateDir, artifact string) string {
	base := strings.TrimSuffix(artifact, ".json")
	return filepath.Join(templateDir, base+"_template.json")
}

// loadDocumentTemplate loads the artifact's document template.
func loadDocumentTemplate(templateDir, artifact string) (*docmodel.Document, error) {
	return docmodel.LoadDocument(templatePath(templateDir, artifact))
}

// loadWorkbookTemplate loads the artifact's workbook template.
func loadWorkbookTemplate(templateDir, artifact string) (*docmodel.Workbook, error) {
	return docmodel.LoadWorkbook(templatePath(templateDir, artifact))
}

// yen renders an amount as a comma-grouped yen figure.
func yen(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return sign + strings.Join(parts, ",")
}
