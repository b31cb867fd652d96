// Package store persists run results for the audit trail. Persistence is
// file-based: each output directory carries its own run_history.json.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shoryoku/pkg/core/autofix"
	"shoryoku/pkg/core/config"
)

// HistoryEntry is one archived run.
type HistoryEntry struct {
	SavedAt   time.Time       `json:"saved_at"`
	Applicant string          `json:"applicant"`
	Result    *autofix.Result `json:"result"`
}

// RunHistoryRepository archives completed runs.
type RunHistoryRepository interface {
	SaveRun(applicant string, result *autofix.Result) error
	LoadHistory() ([]HistoryEntry, error)
}

// FileHistoryRepo appends runs to run_history.json in the output directory.
type FileHistoryRepo struct {
	dir string
	now func() time.Time
}

var _ RunHistoryRepository = (*FileHistoryRepo)(nil)

// NewFileHistoryRepo creates a repository rooted at outputDir.
func NewFileHistoryRepo(outputDir string) *FileHistoryRepo {
	return &FileHistoryRepo{dir: outputDir, now: time.Now}
}

func (r *FileHistoryRepo) path() string {
	return filepath.Join(r.dir, config.ArtifactRunHistory)
}

// SaveRun appends the result to the history file, creating it on first use.
// Entries with the same run ID are replaced rather than duplicated.
func (r *FileHistoryRepo) SaveRun(applicant string, result *autofix.Result) error {
	if result == nil {
		return fmt.Errorf("save run: nil result")
	}

	history, err := r.LoadHistory()
	if err != nil {
		// A corrupt history file must not block the run from being archived.
		fmt.Printf("⚠️ 履歴ファイルを読み直せないため新規作成します: %v\n", err)
		history = nil
	}

	entry := HistoryEntry{SavedAt: r.now(), Applicant: applicant, Result: result}
	replaced := false
	for i := range history {
		if history[i].Result != nil && history[i].Result.RunID == result.RunID {
			history[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		history = append(history, entry)
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run history: %w", err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(r.path(), data, 0o644)
}

// LoadHistory reads all archived runs. A missing file is an empty history.
func (r *FileHistoryRepo) LoadHistory() ([]HistoryEntry, error) {
	data, err := os.ReadFile(r.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var history []HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parse run history: %w", err)
	}
	return history, nil
}
