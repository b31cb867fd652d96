// Package diagram renders the explanatory illustrations that accompany the
// business plan. Generation talks to an image-capable model and is entirely
// optional: without an API key the pipeline runs diagram-free.
package diagram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/genai"

	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/model"
)

const (
	defaultImageModel = "gemini-2.0-flash-preview-image-generation"

	maxAttempts  = 3
	initialDelay = 2 * time.Second
	requestGap   = 1 * time.Second
)

// spec describes one illustration.
type spec struct {
	Name   string
	Prompt string
}

// Generator renders the illustration set into <outputDir>/diagrams.
type Generator struct {
	apiKey string
	model  string

	// render and sleep are swappable for tests.
	render func(ctx context.Context, prompt string) ([]byte, error)
	sleep  func(d time.Duration)
}

// NewGenerator reads DIAGRAM_API_KEY. A generator without a key is disabled
// and GenerateAll returns an empty map.
func NewGenerator() *Generator {
	g := &Generator{
		apiKey: os.Getenv("DIAGRAM_API_KEY"),
		model:  defaultImageModel,
		sleep:  time.Sleep,
	}
	g.render = g.renderRemote
	return g
}

// Enabled reports whether an API key is configured.
func (g *Generator) Enabled() bool { return g.apiKey != "" }

// GenerateAll renders every illustration, skipping individual failures. The
// returned map holds diagram name to written file path.
func (g *Generator) GenerateAll(ctx context.Context, applicant *model.ApplicantRecord, equipment *model.EquipmentRecord, outputDir string) (map[string]string, error) {
	if !g.Enabled() {
		fmt.Println("ℹ️ DIAGRAM_API_KEY 未設定のため図解生成をスキップします")
		return map[string]string{}, nil
	}

	dir := filepath.Join(outputDir, config.DiagramDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create diagram dir: %w", err)
	}

	specs := buildSpecs(applicant, equipment)
	out := make(map[string]string, len(specs))
	for i, sp := range specs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if i > 0 {
			g.sleep(requestGap)
		}

		data, err := g.renderWithRetry(ctx, sp.Prompt)
		if err != nil {
			fmt.Printf("⚠️ 図解 %s の生成をスキップ: %v\n", sp.Name, err)
			continue
		}

		path := filepath.Join(dir, sp.Name+".png")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Printf("⚠️ 図解 %s の保存に失敗: %v\n", sp.Name, err)
			continue
		}
		out[sp.Name] = path
	}

	fmt.Printf("📊 図解 %d/%d 枚を生成しました\n", len(out), len(specs))
	return out, nil
}

// renderWithRetry retries transient failures with doubling delays.
func (g *Generator) renderWithRetry(ctx context.Context, prompt string) ([]byte, error) {
	delay := initialDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		data, err := g.render(ctx, prompt)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if attempt < maxAttempts {
			g.sleep(delay)
			delay *= 2
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

// renderRemote asks the image model for a single PNG.
func (g *Generator) renderRemote(ctx context.Context, prompt string) ([]byte, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create image client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, fmt.Errorf("response carried no image data")
}

// buildSpecs derives the thirteen illustration prompts from the application.
func buildSpecs(a *model.ApplicantRecord, e *model.EquipmentRecord) []spec {
	styled := func(body string) string {
		return "日本の補助金申請書向けのシンプルなビジネス図解。白背景、フラットデザイン、日本語ラベル。" + body
	}
	return []spec{
		{"company_overview", styled(fmt.Sprintf("%s（%s）の会社概要図。所在地と主要事業を示す。", a.Name, a.Industry))},
		{"current_workflow", styled(fmt.Sprintf("%sにおける現状の業務フロー図。%sを人手で行っている工程を強調する。", a.Name, a.LaborShortage.ShortageTasks))},
		{"labor_shortage", styled(fmt.Sprintf("人手不足の状況図。募集期間%s、応募%d名に対し採用%d名を示す。", a.LaborShortage.RecruitmentPeriod, a.LaborShortage.Applications, a.LaborShortage.Hired))},
		{"overtime_burden", styled(fmt.Sprintf("月%.0f時間の残業負担を示す棒グラフ風の図解。", a.LaborShortage.OvertimeHours))},
		{"issue_structure", styled("人手不足が納期遅延と機会損失につながる経営課題の因果関係図。")},
		{"equipment_overview", styled(fmt.Sprintf("導入設備「%s」（%s製）の概要図。主要機能を箇条書きで示す。", e.Name, e.Manufacturer))},
		{"before_after_flow", styled(fmt.Sprintf("%s導入前後の業務フロー比較図。左に導入前、右に導入後を並べる。", e.Name))},
		{"time_saving", styled(fmt.Sprintf("%sの作業時間が%.0f時間から%.0f時間に短縮される効果の図解。", a.LaborSaving.TargetTasks, a.LaborSaving.CurrentHours, a.LaborSaving.TargetHours))},
		{"capacity_shift", styled(fmt.Sprintf("創出された時間を%sに振り向ける再配置のイメージ図。", a.TimeUtilizationPlan))},
		{"productivity_plan", styled("設備導入から付加価値額向上に至る生産性向上の道筋を示すステップ図。")},
		{"added_value_projection", styled("5年間の付加価値額の伸びを示す右肩上がりの折れ線グラフ風の図解。")},
		{"wage_raise_plan", styled(fmt.Sprintf("従業員%d名を対象とした賃上げ計画のイメージ図。", a.EmployeeCount))},
		{"implementation_schedule", styled("交付決定から設備導入、効果測定までの実施スケジュールのガントチャート風の図解。")},
	}
}
