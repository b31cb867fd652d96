package docmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// WBRow is one labeled row of a sheet. Values are year-indexed for the
// projection sheets (index 0 = baseline year).
type WBRow struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values,omitempty"`
	Note   string    `json:"note,omitempty"`
}

// Sheet is a named list of rows.
type Sheet struct {
	Name string  `json:"name"`
	Rows []WBRow `json:"rows"`
}

// Workbook is one spreadsheet-like artifact.
type Workbook struct {
	Title  string  `json:"title"`
	Sheets []Sheet `json:"sheets"`
}

// LoadWorkbook reads a JSON workbook artifact.
func LoadWorkbook(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w Workbook
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse workbook %s: %w", path, err)
	}
	return &w, nil
}

// Save writes the workbook as indented JSON.
func (w *Workbook) Save(path string) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// FindSheet returns the first sheet whose name contains any of the patterns.
// Sheet names drift between template revisions, so lookup is substring-based.
func (w *Workbook) FindSheet(patterns ...string) *Sheet {
	for i := range w.Sheets {
		for _, p := range patterns {
			if p != "" && strings.Contains(w.Sheets[i].Name, p) {
				return &w.Sheets[i]
			}
		}
	}
	return nil
}

// EnsureSheet returns the sheet with the exact name, creating it if absent.
func (w *Workbook) EnsureSheet(name string) *Sheet {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i]
		}
	}
	w.Sheets = append(w.Sheets, Sheet{Name: name})
	return &w.Sheets[len(w.Sheets)-1]
}

// FindRow returns the first row whose label contains any of the fragments.
func (s *Sheet) FindRow(fragments ...string) *WBRow {
	for i := range s.Rows {
		for _, f := range fragments {
			if f != "" && strings.Contains(s.Rows[i].Label, f) {
				return &s.Rows[i]
			}
		}
	}
	return nil
}

// SetRow replaces the values of the row with the given label, appending the
// row when it does not exist yet.
func (s *Sheet) SetRow(label string, values []float64) {
	for i := range s.Rows {
		if s.Rows[i].Label == label {
			s.Rows[i].Values = values
			return
		}
	}
	s.Rows = append(s.Rows, WBRow{Label: label, Values: values})
}
