package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParametersResetIdempotent(t *testing.T) {
	p := DefaultParameters()
	for i := 0; i < 20; i++ {
		p.RaiseGrowthRate()
		p.RaiseSalaryRate()
	}
	if p.GrowthRate != GrowthRateCeiling || p.SalaryGrowthRate != SalaryRateCeiling {
		t.Fatalf("rates did not reach ceilings: %+v", p)
	}

	p.Reset()
	want := DefaultParameters()
	if p != want {
		t.Errorf("after Reset: %+v, want %+v", p, want)
	}
	p.Reset()
	if p != want {
		t.Errorf("second Reset changed values: %+v", p)
	}
}

func TestRaiseGrowthRateStopsAtCeiling(t *testing.T) {
	p := DefaultParameters()
	raises := 0
	for p.RaiseGrowthRate() {
		raises++
		if raises > 100 {
			t.Fatal("RaiseGrowthRate never reported the ceiling")
		}
	}
	// 1.05 -> 1.10 in 0.005 steps, allowing one extra for accumulated
	// rounding before the cap bites.
	if raises < 10 || raises > 11 {
		t.Errorf("raises = %d, want 10 or 11", raises)
	}
	if !(p.GrowthRate <= GrowthRateCeiling+1e-12) {
		t.Errorf("GrowthRate = %v exceeds ceiling", p.GrowthRate)
	}
}

func TestAdoptRatesCapped(t *testing.T) {
	p := DefaultParameters()
	p.AdoptGrowthRate(1.25)
	p.AdoptSalaryRate(1.20)
	if p.GrowthRate != GrowthRateCeiling {
		t.Errorf("GrowthRate = %v, want capped at %v", p.GrowthRate, GrowthRateCeiling)
	}
	if p.SalaryGrowthRate != SalaryRateCeiling {
		t.Errorf("SalaryGrowthRate = %v, want capped at %v", p.SalaryGrowthRate, SalaryRateCeiling)
	}

	p.AdoptGrowthRate(1.06)
	if p.GrowthRate != 1.06 {
		t.Errorf("GrowthRate = %v, want adopted below ceiling", p.GrowthRate)
	}
}

func TestDefaultManifestShape(t *testing.T) {
	m := DefaultManifest()
	if len(m.Artifacts) != 11 {
		t.Errorf("artifacts = %d, want 11", len(m.Artifacts))
	}
	if m.DiagramCount != 13 {
		t.Errorf("DiagramCount = %d", m.DiagramCount)
	}
	if len(m.Sections) != 6 {
		t.Fatalf("sections = %d, want 6", len(m.Sections))
	}

	total := 0
	for _, sec := range m.Sections {
		total += sec.MinChars
	}
	if total > m.MinTotalChars {
		t.Errorf("section minimums sum to %d, above the %d total floor", total, m.MinTotalChars)
	}

	if sec := m.Section("2-1"); sec == nil || sec.MinChars != 1000 {
		t.Errorf("Section(2-1) = %+v", sec)
	}
	if m.Section("9-9") != nil {
		t.Error("unknown section should be nil")
	}
}

func TestLoadManifestOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	content := "diagram_count: 4\nmin_total_chars: 2000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.DiagramCount != 4 || m.MinTotalChars != 2000 {
		t.Errorf("override not applied: %+v", m)
	}
	// Untouched keys keep their defaults.
	if len(m.Artifacts) != 11 {
		t.Errorf("artifacts = %d after partial override", len(m.Artifacts))
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.DiagramCount != 13 {
		t.Errorf("missing file should fall back to defaults, got %+v", m)
	}
}

func TestLoadSettingsHJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.hjson")
	content := `{
  # operators keep notes inline
  target_score: 90
  max_iterations: 3
  skip_diagrams: true
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.TargetScore != 90 || s.MaxIterations != 3 || !s.SkipDiagrams {
		t.Errorf("settings = %+v", s)
	}
	if s.ToneTargetScore != 85 {
		t.Errorf("ToneTargetScore = %v, want default preserved", s.ToneTargetScore)
	}
}

func TestLoadSettingsMissingPath(t *testing.T) {
	s, err := LoadSettings("")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s != DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", s)
	}
}
