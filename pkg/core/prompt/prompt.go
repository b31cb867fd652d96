// Package prompt is the pipeline's prompt library. The built-in prompts cover
// statement extraction and tone rewriting; operators can override or add
// prompts from JSON files without a rebuild.
package prompt

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"
)

// Template is one reusable prompt with metadata.
type Template struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	SystemPrompt   string `json:"system_prompt"`
	UserPromptTmpl string `json:"user_prompt_template"`
	SchemaID       string `json:"response_schema_ref"`
	Version        string `json:"version"`
}

// Schema is the expected JSON response shape for extraction prompts, stored
// as a JSON Schema string and handed to the parser as a repair hint.
type Schema struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	JSONSchema string `json:"json_schema"`
}

// Registry holds loaded prompts and schemas.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]*Template
	schemas map[string]*Schema
}

var (
	global *Registry
	once   sync.Once
)

// Get returns the global registry with the built-ins registered.
func Get() *Registry {
	once.Do(func() {
		global = &Registry{
			prompts: make(map[string]*Template),
			schemas: make(map[string]*Schema),
		}
		registerBuiltins(global)
	})
	return global
}

// Register adds or overrides a prompt.
func (r *Registry) Register(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[t.ID] = t
	return nil
}

// RegisterSchema adds or overrides a response schema.
func (r *Registry) RegisterSchema(s *Schema) error {
	if s.ID == "" {
		return fmt.Errorf("schema ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.ID] = s
	return nil
}

// GetPrompt retrieves a prompt by ID.
func (r *Registry) GetPrompt(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.prompts[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("prompt not found: %s", id)
}

// GetSystemPrompt returns only the system prompt string.
func (r *Registry) GetSystemPrompt(id string) (string, error) {
	t, err := r.GetPrompt(id)
	if err != nil {
		return "", err
	}
	return t.SystemPrompt, nil
}

// GetSchema retrieves a response schema by ID.
func (r *Registry) GetSchema(id string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.schemas[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("schema not found: %s", id)
}

// Count returns the number of registered prompts.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}

// RenderUserPrompt executes the prompt's user template with the given
// variables.
func RenderUserPrompt(t *Template, vars map[string]interface{}) (string, error) {
	if t.UserPromptTmpl == "" {
		return "", nil
	}
	tmpl, err := template.New(t.ID).Parse(t.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", t.ID, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("execute template %s: %w", t.ID, err)
	}
	return buf.String(), nil
}
