package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shoryoku/pkg/core/autofix"
	"shoryoku/pkg/core/config"
)

func testResult(runID string, score float64) *autofix.Result {
	return &autofix.Result{
		RunID:      runID,
		FinalScore: score,
		Reason:     autofix.StopTargetReached,
		Iterations: []autofix.IterationRecord{
			{Iteration: 1, Score: score, Params: config.DefaultParameters()},
		},
	}
}

func TestSaveAndLoadHistory(t *testing.T) {
	repo := NewFileHistoryRepo(t.TempDir())
	repo.now = func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) }

	if err := repo.SaveRun("有限会社青葉製作所", testResult("run-1", 88.5)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := repo.SaveRun("有限会社青葉製作所", testResult("run-2", 91.0)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	history, err := repo.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Result.RunID != "run-1" || history[1].Result.FinalScore != 91.0 {
		t.Errorf("history = %+v", history)
	}
	if history[0].Applicant != "有限会社青葉製作所" {
		t.Errorf("Applicant = %q", history[0].Applicant)
	}
	if !history[0].SavedAt.Equal(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("SavedAt = %v", history[0].SavedAt)
	}
}

func TestSaveRunReplacesSameRunID(t *testing.T) {
	repo := NewFileHistoryRepo(t.TempDir())

	if err := repo.SaveRun("a", testResult("run-1", 70)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := repo.SaveRun("a", testResult("run-1", 85)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	history, err := repo.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1 after replace", len(history))
	}
	if history[0].Result.FinalScore != 85 {
		t.Errorf("FinalScore = %v, want replaced entry", history[0].Result.FinalScore)
	}
}

func TestLoadHistoryMissingFile(t *testing.T) {
	repo := NewFileHistoryRepo(t.TempDir())
	history, err := repo.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if history != nil {
		t.Errorf("history = %v, want empty", history)
	}
}

func TestSaveRunRecoversFromCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ArtifactRunHistory), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := NewFileHistoryRepo(dir)
	if err := repo.SaveRun("a", testResult("run-1", 60)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	history, err := repo.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history length = %d, want fresh file with 1 entry", len(history))
	}
}

func TestSaveRunNilResult(t *testing.T) {
	repo := NewFileHistoryRepo(t.TempDir())
	if err := repo.SaveRun("a", nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}
