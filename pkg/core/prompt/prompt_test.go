package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinsRegistered(t *testing.T) {
	r := Get()
	if r.Count() < 2 {
		t.Fatalf("Count = %d, want the built-ins", r.Count())
	}

	sys, err := r.GetSystemPrompt(IDToneRewrite)
	if err != nil {
		t.Fatalf("GetSystemPrompt: %v", err)
	}
	if !strings.Contains(sys, "数値") || !strings.Contains(sys, "【") {
		t.Errorf("tone prompt missing core rules: %q", sys)
	}

	if _, err := r.GetSchema(SchemaStatement); err != nil {
		t.Errorf("GetSchema(%s): %v", SchemaStatement, err)
	}
	if _, err := r.GetPrompt("no.such.prompt"); err == nil {
		t.Error("unknown prompt should error")
	}
}

func TestRenderUserPrompt(t *testing.T) {
	tmpl, err := Get().GetPrompt(IDStatementExtract)
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	out, err := RenderUserPrompt(tmpl, map[string]interface{}{
		"StatementText": "売上高 19,180,852円",
	})
	if err != nil {
		t.Fatalf("RenderUserPrompt: %v", err)
	}
	if !strings.Contains(out, "売上高 19,180,852円") {
		t.Errorf("rendered prompt missing statement text: %q", out)
	}
}

func TestRenderUserPromptEmptyTemplate(t *testing.T) {
	out, err := RenderUserPrompt(&Template{ID: "x"}, nil)
	if err != nil || out != "" {
		t.Errorf("empty template = %q, %v", out, err)
	}
}

func TestLoadFromDirectoryOverride(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "prompts", "tone")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	// No explicit ID: tone/rewrite.json must resolve to tone.rewrite and
	// override the built-in.
	custom := `{"name": "override", "system_prompt": "上書きされた指示"}`
	if err := os.WriteFile(filepath.Join(dir, "rewrite.json"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadFromDirectory(base); err != nil {
		t.Fatalf("LoadFromDirectory: %v", err)
	}
	t.Cleanup(func() { registerBuiltins(Get()) })

	sys, err := Get().GetSystemPrompt(IDToneRewrite)
	if err != nil {
		t.Fatalf("GetSystemPrompt: %v", err)
	}
	if sys != "上書きされた指示" {
		t.Errorf("override not applied: %q", sys)
	}
}

func TestLoadFromDirectoryMissingPrompts(t *testing.T) {
	if err := LoadFromDirectory(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without prompts/")
	}
}

func TestIDFromPath(t *testing.T) {
	base := filepath.Join("some", "prompts")
	got := idFromPath(filepath.Join(base, "tone", "rewrite.json"), base)
	if got != "tone.rewrite" {
		t.Errorf("idFromPath = %q", got)
	}
}
