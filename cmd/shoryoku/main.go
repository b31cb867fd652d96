// Command shoryoku generates a complete subsidy application package from a
// hearing-survey workbook: projected financials, the narrative business plan,
// registry forms, quality scoring with automatic fixes, and an optional tone
// rewrite pass.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"shoryoku/pkg/core/autofix"
	"shoryoku/pkg/core/config"
	"shoryoku/pkg/core/diagram"
	"shoryoku/pkg/core/extract"
	"shoryoku/pkg/core/ingest"
	"shoryoku/pkg/core/llm"
	"shoryoku/pkg/core/model"
	"shoryoku/pkg/core/populate"
	"shoryoku/pkg/core/report"
	"shoryoku/pkg/core/score"
	"shoryoku/pkg/core/store"
	"shoryoku/pkg/core/tone"
)

// pipelineGenerator adapts the populator to the auto-fix loop, carrying the
// diagram paths generated once up front into every attempt.
type pipelineGenerator struct {
	populator   *populate.Populator
	templateDir string
	diagrams    map[string]string
}

var _ autofix.Generator = (*pipelineGenerator)(nil)

func (g *pipelineGenerator) Generate(in populate.Inputs, outputDir string) error {
	in.Diagrams = g.diagrams
	return g.populator.PopulateAll(in, g.templateDir, outputDir)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	var (
		inputPath     = flag.String("input", "", "hearing-survey workbook (JSON)")
		statementPath = flag.String("statement", "", "financial statement PDF for figure overlay")
		outputDir     = flag.String("output", "", "output directory (default from settings)")
		templateDir   = flag.String("templates", "", "template directory (default from settings)")
		withDiagrams  = flag.Bool("diagrams", true, "generate illustration PNGs when DIAGRAM_API_KEY is set")
		withAutofix   = flag.Bool("autofix", true, "run the score-and-fix loop")
		target        = flag.Float64("target", 0, "target score override")
		maxIter       = flag.Int("max-iter", 0, "iteration budget override")
		withTone      = flag.Bool("tone", false, "run the tone-rewrite phase")
		toneTarget    = flag.Float64("tone-target", 0, "tone score target override")
		toneRounds    = flag.Int("tone-rounds", 0, "tone round budget override")
		configPath    = flag.String("config", "", "settings file (HJSON)")
		jsonOut       = flag.Bool("json", false, "print the run summary as JSON")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: shoryoku -input survey.json [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		log.Fatalf("設定ファイルを読み込めません: %v", err)
	}
	if *outputDir != "" {
		settings.OutputDir = *outputDir
	}
	if *templateDir != "" {
		settings.TemplateDir = *templateDir
	}
	if *target > 0 {
		settings.TargetScore = *target
	}
	if *maxIter > 0 {
		settings.MaxIterations = *maxIter
	}
	if *toneTarget > 0 {
		settings.ToneTargetScore = *toneTarget
	}
	if *toneRounds > 0 {
		settings.MaxToneRounds = *toneRounds
	}
	if !*withAutofix {
		settings.MaxIterations = 1
	}

	ctx := context.Background()
	manifest := config.DefaultManifest()

	applicant, equipment, funding, err := ingest.ReadSurvey(*inputPath)
	if err != nil {
		log.Fatalf("入力を読み込めません: %v", err)
	}
	fmt.Printf("🚀 %s の申請書類を作成します\n", applicant.Name)

	ingest.OverlayWebsite(ctx, applicant)

	if *statementPath != "" {
		overlayStatement(ctx, *statementPath, applicant)
	}

	gen := diagram.NewGenerator()
	var diagrams map[string]string
	runDiagrams := *withDiagrams && !settings.SkipDiagrams && gen.Enabled()
	if runDiagrams {
		diagrams, err = gen.GenerateAll(ctx, applicant, equipment, settings.OutputDir)
		if err != nil {
			fmt.Printf("⚠️ 図解生成を中断: %v\n", err)
		}
	}
	skipDiagrams := !runDiagrams

	generator := &pipelineGenerator{
		populator:   populate.New(manifest),
		templateDir: settings.TemplateDir,
		diagrams:    diagrams,
	}
	scorer := score.NewScorer(manifest, skipDiagrams)

	controller := autofix.NewController(applicant, equipment, funding, manifest, settings, generator, scorer, settings.OutputDir)
	result, err := controller.Run(ctx)
	if err != nil {
		log.Fatalf("書類生成に失敗しました: %v", err)
	}

	var toneResult *tone.Result
	if *withTone {
		var rewriter tone.TextRewriter
		if pr := tone.NewProviderRewriter(pickProvider()); pr != nil {
			rewriter = pr
		}
		phase := tone.NewPhase(&tone.HeuristicScorer{}, rewriter, settings)
		toneResult, err = phase.Run(ctx, settings.OutputDir)
		if err != nil {
			fmt.Printf("⚠️ 文体改善フェーズを中断: %v\n", err)
			toneResult = nil
		}
	}

	if err := store.NewFileHistoryRepo(settings.OutputDir).SaveRun(applicant.Name, result); err != nil {
		fmt.Printf("⚠️ 実行履歴を保存できません: %v\n", err)
	}

	summary := &report.Summary{Applicant: applicant.Name, Run: result, Tone: toneResult}
	if err := report.WriteMarkdownReport(settings.OutputDir, summary); err != nil {
		fmt.Printf("⚠️ レポートを書き出せません: %v\n", err)
	}

	if *jsonOut {
		data, err := report.RenderJSON(summary)
		if err != nil {
			log.Fatalf("サマリのJSON化に失敗: %v", err)
		}
		fmt.Println(string(data))
		return
	}
	report.PrintConsole(summary)
	fmt.Printf("✅ 完了: 出力先 %s\n", settings.OutputDir)
}

// overlayStatement replaces survey figures with values extracted from the
// financial statement PDF. Extraction needs GEMINI_API_KEY; anything that
// goes wrong leaves the survey figures in place.
func overlayStatement(ctx context.Context, path string, applicant *model.ApplicantRecord) {
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Println("ℹ️ GEMINI_API_KEY 未設定のため決算書の読み取りをスキップします")
		return
	}
	extractor := extract.NewStatementExtractor(extract.NewGeminiClient(""))
	fields, err := extractor.ExtractFromPDF(ctx, path)
	if err != nil {
		fmt.Printf("⚠️ 決算書の読み取りに失敗: %v\n", err)
		return
	}
	if n := fields.Overlay(applicant); n > 0 {
		fmt.Printf("📊 決算書から %d 項目を上書きしました\n", n)
	}
}

// pickProvider chooses the rewrite backend from available credentials.
func pickProvider() llm.Provider {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return &llm.GeminiProvider{}
	}
	if os.Getenv("DEEPSEEK_API_KEY") != "" {
		return &llm.DeepSeekProvider{}
	}
	fmt.Println("ℹ️ 文体改善に使えるAPIキーがないため書き換えをスキップします")
	return nil
}
