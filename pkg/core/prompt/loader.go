package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFromDirectory overlays prompts and schemas from a directory onto the
// built-ins. Layout:
//
//	baseDir/
//	  prompts/<category>/<name>.json
//	  schemas/<name>.json
//
// Prompt files missing an ID get one derived from their path
// (tone/rewrite.json becomes tone.rewrite), so an operator can override a
// built-in by matching its path.
func LoadFromDirectory(baseDir string) error {
	r := Get()

	promptDir := filepath.Join(baseDir, "prompts")
	if _, err := os.Stat(promptDir); err != nil {
		return fmt.Errorf("prompts directory unavailable: %w", err)
	}
	err := filepath.Walk(promptDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ".json" {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var t Template
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("parse prompt %s: %w", path, err)
		}
		if t.ID == "" {
			t.ID = idFromPath(path, promptDir)
		}
		if t.Category == "" {
			t.Category = strings.SplitN(t.ID, ".", 2)[0]
		}
		return r.Register(&t)
	})
	if err != nil {
		return err
	}

	schemaDir := filepath.Join(baseDir, "schemas")
	if _, err := os.Stat(schemaDir); err != nil {
		return nil // schemas are optional
	}
	return filepath.Walk(schemaDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ".json" {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(path), ".json")
		return r.RegisterSchema(&Schema{ID: name, Name: name, JSONSchema: string(data)})
	})
}

func idFromPath(path, baseDir string) string {
	rel, _ := filepath.Rel(baseDir, path)
	rel = strings.TrimSuffix(rel, ".json")
	return strings.ReplaceAll(rel, string(filepath.Separator), ".")
}
