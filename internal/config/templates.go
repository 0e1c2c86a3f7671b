package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// PromptTemplates holds overrides for the two tier prompt templates.
// An empty field keeps the corresponding built-in template.
type PromptTemplates struct {
	// Orchestrator is the first-tier template; it must reference {task}.
	Orchestrator string `yaml:"orchestrator"`
	// Worker is the second-tier template, formatted once per subtask with
	// {original_task}, {task_type} and {task_description}.
	Worker string `yaml:"worker"`
}

// LoadPromptTemplates reads a prompt-templates YAML file.
func LoadPromptTemplates(path string) (*PromptTemplates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompts file: %w", err)
	}

	var templates PromptTemplates
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("parsing prompts file %s: %w", path, err)
	}

	return &templates, nil
}
