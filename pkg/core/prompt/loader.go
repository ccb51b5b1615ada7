package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// LoadFromDirectory loads all prompt JSON files from a directory tree.
// Expected structure:
//
//	baseDir/
//	  prompts/
//	    stages/
//	      identify_industry.json
//	      ...
func LoadFromDirectory(baseDir string) error {
	registry := Get()

	promptDir := filepath.Join(baseDir, "prompts")
	if _, err := os.Stat(promptDir); os.IsNotExist(err) {
		return fmt.Errorf("prompts directory not found: %s", promptDir)
	}

	return filepath.Walk(promptDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		if pt.ID == "" {
			pt.ID = idFromPath(path, promptDir)
		}
		if pt.Category == "" {
			pt.Category = categoryFromPath(path, promptDir)
		}

		if err := registry.Register(&pt); err != nil {
			return fmt.Errorf("failed to register %s: %w", pt.ID, err)
		}
		return nil
	})
}

// idFromPath derives a prompt ID from the file path,
// e.g. "prompts/stages/perform_swot.json" -> "stages.perform_swot".
func idFromPath(path string, baseDir string) string {
	relPath, _ := filepath.Rel(baseDir, path)
	relPath = strings.TrimSuffix(relPath, ".json")
	return strings.ReplaceAll(relPath, string(filepath.Separator), ".")
}

func categoryFromPath(path string, baseDir string) string {
	relPath, _ := filepath.Rel(baseDir, path)
	parts := strings.Split(relPath, string(filepath.Separator))
	if len(parts) > 1 {
		return parts[0]
	}
	return "default"
}

// RenderUserPrompt executes the user prompt template with the given context.
// A template-less entry is an error so callers fall back to their hardcoded
// prompts instead of sending an empty user prompt.
func RenderUserPrompt(pt *PromptTemplate, ctx *PromptExecutionContext) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", fmt.Errorf("prompt %s has no user prompt template", pt.ID)
	}

	tmpl, err := template.New(pt.ID).Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx.Variables); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
