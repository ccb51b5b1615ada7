package prompt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := Get()

	pt := &PromptTemplate{
		ID:           "test.register_get",
		SystemPrompt: "You are a test.",
	}
	if err := r.Register(pt); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := r.GetPrompt("test.register_get")
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if got.SystemPrompt != "You are a test." {
		t.Errorf("Unexpected system prompt: %q", got.SystemPrompt)
	}

	if _, err := r.GetPrompt("test.missing"); err == nil {
		t.Error("Expected error for unknown prompt ID")
	}

	if err := r.Register(&PromptTemplate{}); err == nil {
		t.Error("Expected error for empty prompt ID")
	}
}

func TestLoadFromDirectory(t *testing.T) {
	base := t.TempDir()
	stageDir := filepath.Join(base, "prompts", "stages")
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		t.Fatal(err)
	}

	content := `{
		"name": "Loader Test",
		"system_prompt": "You are a loader test.",
		"user_prompt_template": "Analyze {{.TargetCompany}}."
	}`
	if err := os.WriteFile(filepath.Join(stageDir, "loader_case.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadFromDirectory(base); err != nil {
		t.Fatalf("LoadFromDirectory failed: %v", err)
	}

	// ID and category derive from the file path when omitted.
	pt, err := Get().GetPrompt("stages.loader_case")
	if err != nil {
		t.Fatalf("Derived ID not registered: %v", err)
	}
	if pt.Category != "stages" {
		t.Errorf("Expected category stages, got %q", pt.Category)
	}
}

func TestLoadFromDirectoryMissing(t *testing.T) {
	if err := LoadFromDirectory(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error for missing prompts directory")
	}
}

func TestRenderUserPrompt(t *testing.T) {
	pt := &PromptTemplate{
		ID:             "test.render",
		UserPromptTmpl: "Analyze {{.TargetCompany}} in {{.Industry}}.",
	}

	ctx := NewContext().
		Set("TargetCompany", "Apple Inc.").
		Set("Industry", "Consumer Electronics")

	got, err := RenderUserPrompt(pt, ctx)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	expected := "Analyze Apple Inc. in Consumer Electronics."
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestRenderUserPromptRejectsEmptyTemplate(t *testing.T) {
	// A system-prompt-only entry must not render to an empty user prompt;
	// callers treat the error as "use the hardcoded prompt".
	pt := &PromptTemplate{ID: "test.no_template", SystemPrompt: "persona only"}

	if _, err := RenderUserPrompt(pt, NewContext()); err == nil {
		t.Error("Expected error for template-less prompt")
	}
}

func TestStagePromptIDs(t *testing.T) {
	if PromptIDs.IdentifyIndustry != "stages.identify_industry" {
		t.Errorf("Unexpected stage prompt ID: %s", PromptIDs.IdentifyIndustry)
	}
	if StagePromptID("generate_report") != "stages.generate_report" {
		t.Errorf("Unexpected derived ID: %s", StagePromptID("generate_report"))
	}
}
