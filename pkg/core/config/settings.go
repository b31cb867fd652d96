package config

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
)

// Settings controls one pipeline run: quality-loop and tone-loop budgets,
// diagram toggle, and directory layout. Loadable from an HJSON file so
// operators can keep a commented config next to the templates.
type Settings struct {
	TargetScore   float64 `json:"target_score"`
	MaxIterations int     `json:"max_iterations"`

	ToneTargetScore float64 `json:"tone_target_score"`
	MaxToneRounds   int     `json:"max_tone_rounds"`

	SkipDiagrams bool `json:"skip_diagrams"`

	TemplateDir string `json:"template_dir"`
	OutputDir   string `json:"output_dir"`
}

// DefaultSettings returns the compiled-in defaults.
func DefaultSettings() Settings {
	return Settings{
		TargetScore:     85,
		MaxIterations:   5,
		ToneTargetScore: 85,
		MaxToneRounds:   3,
		SkipDiagrams:    false,
		TemplateDir:     "templates",
		OutputDir:       "output",
	}
}

// LoadSettings reads an HJSON settings file over the defaults. A missing path
// returns the defaults unchanged.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := hjson.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}
