// Package docmodel is the structured artifact model the pipeline reads and
// writes: a narrative document of section-tagged blocks and a workbook of
// labeled sheets. Artifacts serialize to JSON in the run's output directory;
// the binary office formats are out of scope and handled by downstream
// tooling.
package docmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// BlockType discriminates narrative blocks.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockTable     BlockType = "table"
)

// Cell is one table cell. Narrative cells carry the section stamp applied at
// generation time so the scorer never has to re-infer section identity from
// rendered text.
type Cell struct {
	SectionID string `json:"section_id,omitempty"`
	Text      string `json:"text"`
}

// Block is a paragraph or a table of cell rows.
type Block struct {
	Type      BlockType `json:"type"`
	SectionID string    `json:"section_id,omitempty"`
	Text      string    `json:"text,omitempty"`
	Rows      [][]Cell  `json:"rows,omitempty"`
}

// Document is one narrative artifact.
type Document struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// LoadDocument reads a JSON document artifact.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}
	return &d, nil
}

// Save writes the document as indented JSON.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// AllText concatenates every paragraph and cell, newline-separated.
func (d *Document) AllText() string {
	var sb strings.Builder
	for i := range d.Blocks {
		b := &d.Blocks[i]
		if b.Type == BlockParagraph {
			if t := strings.TrimSpace(b.Text); t != "" {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
			continue
		}
		for _, row := range b.Rows {
			for _, cell := range row {
				if t := strings.TrimSpace(cell.Text); t != "" {
					sb.WriteString(t)
					sb.WriteString("\n")
				}
			}
		}
	}
	return sb.String()
}

// SectionText concatenates all text stamped with the given section ID.
func (d *Document) SectionText(id string) string {
	var sb strings.Builder
	for i := range d.Blocks {
		b := &d.Blocks[i]
		if b.Type == BlockParagraph {
			if b.SectionID == id {
				sb.WriteString(b.Text)
			}
			continue
		}
		for _, row := range b.Rows {
			for _, cell := range row {
				if cell.SectionID == id {
					sb.WriteString(cell.Text)
				}
			}
		}
	}
	return sb.String()
}

// VisitCells walks every table cell, allowing in-place mutation.
func (d *Document) VisitCells(fn func(c *Cell)) {
	for i := range d.Blocks {
		b := &d.Blocks[i]
		if b.Type != BlockTable {
			continue
		}
		for r := range b.Rows {
			for c := range b.Rows[r] {
				fn(&b.Rows[r][c])
			}
		}
	}
}

// VisitText walks every text span (paragraphs and cells), allowing in-place
// mutation through the setter.
func (d *Document) VisitText(fn func(text string) (string, bool)) {
	for i := range d.Blocks {
		b := &d.Blocks[i]
		if b.Type == BlockParagraph {
			if replaced, ok := fn(b.Text); ok {
				b.Text = replaced
			}
			continue
		}
		for r := range b.Rows {
			for c := range b.Rows[r] {
				if replaced, ok := fn(b.Rows[r][c].Text); ok {
					b.Rows[r][c].Text = replaced
				}
			}
		}
	}
}

// LargestCell returns the table cell with the most text, or nil when the
// document has no table cells.
func (d *Document) LargestCell() *Cell {
	var best *Cell
	for i := range d.Blocks {
		b := &d.Blocks[i]
		if b.Type != BlockTable {
			continue
		}
		for r := range b.Rows {
			for c := range b.Rows[r] {
				cell := &b.Rows[r][c]
				if best == nil || len(cell.Text) > len(best.Text) {
					best = cell
				}
			}
		}
	}
	return best
}

// ReplaceMatchingCell overwrites the first table cell that contains the marker
// and holds at least minLen bytes of text. Reports whether a cell was
// replaced.
func (d *Document) ReplaceMatchingCell(marker string, minLen int, text string) bool {
	replaced := false
	d.VisitCells(func(c *Cell) {
		if replaced {
			return
		}
		if len(c.Text) >= minLen && strings.Contains(c.Text, marker) {
			c.Text = text
			replaced = true
		}
	})
	return replaced
}
