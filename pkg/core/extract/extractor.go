// Package extract pulls the projection-relevant line items out of a financial
// statement PDF with an LLM and overlays them onto the ingested record.
// Extraction is optional: the survey figures stand wherever the statement has
// nothing better.
package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"shoryoku/pkg/core/model"
	"shoryoku/pkg/core/prompt"
	"shoryoku/pkg/core/utils"
)

// Caller is the narrow model-call surface the extractor needs.
type Caller interface {
	Call(ctx context.Context, userPrompt, systemPrompt string) (string, error)
}

// StatementFields are the line items the projection needs. A zero value means
// the statement did not yield that item.
type StatementFields struct {
	Revenue         []int64 `json:"revenue"`
	GrossProfit     []int64 `json:"gross_profit"`
	OperatingProfit []int64 `json:"operating_profit"`
	LaborCost       int64   `json:"labor_cost"`
	Depreciation    int64   `json:"depreciation"`
	TotalSalary     int64   `json:"total_salary"`
}

// StatementExtractor runs the extraction prompt over statement text.
type StatementExtractor struct {
	caller Caller
}

// NewStatementExtractor wraps a model caller.
func NewStatementExtractor(caller Caller) *StatementExtractor {
	return &StatementExtractor{caller: caller}
}

// ExtractFromPDF reads the PDF's plain text and extracts the fields.
func (e *StatementExtractor) ExtractFromPDF(ctx context.Context, path string) (*StatementFields, error) {
	text, err := readPDFText(path)
	if err != nil {
		return nil, fmt.Errorf("read statement pdf %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("statement pdf %s yielded no text", path)
	}
	return e.ExtractFromText(ctx, text)
}

// ExtractFromText runs the registered extraction prompt and parses the model
// response leniently.
func (e *StatementExtractor) ExtractFromText(ctx context.Context, text string) (*StatementFields, error) {
	tmpl, err := prompt.Get().GetPrompt(prompt.IDStatementExtract)
	if err != nil {
		return nil, err
	}
	userPrompt, err := prompt.RenderUserPrompt(tmpl, map[string]interface{}{"StatementText": text})
	if err != nil {
		return nil, err
	}

	resp, err := e.caller.Call(ctx, userPrompt, tmpl.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	var fields StatementFields
	if err := utils.SmartParse(utils.CleanText(resp), &fields); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}
	return &fields, nil
}

// Overlay writes the extracted actuals over the survey record. Statement
// figures win where present; zeros leave the survey value alone. Returns the
// number of fields overwritten.
func (f *StatementFields) Overlay(a *model.ApplicantRecord) int {
	n := 0
	n += overlaySeries(&a.Revenue, f.Revenue)
	n += overlaySeries(&a.GrossProfit, f.GrossProfit)
	n += overlaySeries(&a.OperatingProfit, f.OperatingProfit)
	if f.LaborCost != 0 {
		a.LaborCost = f.LaborCost
		n++
	}
	if f.Depreciation != 0 {
		a.Depreciation = f.Depreciation
		n++
	}
	if f.TotalSalary != 0 {
		a.TotalSalary = f.TotalSalary
		n++
	}
	return n
}

// overlaySeries aligns the extracted years to the end of the three-slot
// window, so a statement carrying only the latest period lands in the
// baseline slot.
func overlaySeries(dst *[3]int64, src []int64) int {
	if len(src) == 0 {
		return 0
	}
	if len(src) > 3 {
		src = src[len(src)-3:]
	}
	n := 0
	offset := 3 - len(src)
	for i, v := range src {
		if v != 0 {
			dst[offset+i] = v
			n++
		}
	}
	return n
}

func readPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, reader); err != nil {
		return "", err
	}
	return sb.String(), nil
}
